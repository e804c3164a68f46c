package segment

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-srtsplit/internal/audio"
	"github.com/alnah/go-srtsplit/internal/sanitize"
	"github.com/alnah/go-srtsplit/internal/srt"
)

// Segmenter turns subtitle entries into clips of one timeline.
//
// Numbers are reserved from the shared Counter in entry order before an
// export starts, so file names are the same whatever the worker count.
type Segmenter struct {
	writer         Writer
	counter        *Counter
	padding        time.Duration
	workers        int
	policy         Policy
	keepDegenerate bool
	dirs           dirCreator
	logger         *slog.Logger
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithPadding widens every non-diarized clip by d on both sides.
// Negative values are treated as zero.
func WithPadding(d time.Duration) Option {
	return func(s *Segmenter) { s.padding = max(d, 0) }
}

// WithWorkers sets how many exports may run at once. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(s *Segmenter) { s.workers = max(n, 1) }
}

// WithPolicy sets the behavior on export failure.
func WithPolicy(p Policy) Option {
	return func(s *Segmenter) { s.policy = p }
}

// WithKeepDegenerate exports entries whose interval is empty after
// clamping instead of skipping them.
func WithKeepDegenerate(keep bool) Option {
	return func(s *Segmenter) { s.keepDegenerate = keep }
}

// WithLogger sets the logger for warnings about skipped entries.
func WithLogger(l *slog.Logger) Option {
	return func(s *Segmenter) { s.logger = l }
}

// WithDirCreator sets a custom directory creator (for testing).
func WithDirCreator(d dirCreator) Option {
	return func(s *Segmenter) { s.dirs = d }
}

// New creates a Segmenter writing through w and numbering from c.
func New(w Writer, c *Counter, opts ...Option) *Segmenter {
	s := &Segmenter{
		writer:  w,
		counter: c,
		workers: 1,
		policy:  PolicyAbort,
		dirs:    osDirCreator{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the configured error policy.
func (s *Segmenter) Policy() Policy { return s.policy }

// Segment writes one clip per entry into outputDir, padded on both sides
// and clamped to the timeline.
func (s *Segmenter) Segment(ctx context.Context, tl audio.Timeline, entries iter.Seq2[srt.Entry, error], outputDir string) ([]Result, error) {
	return s.run(ctx, tl, entries, outputDir, false)
}

// SegmentDiarized writes one clip per entry into outputDir/<speaker>, where
// speaker is the sanitized text before the first '|'. Padding is not applied.
// Labels that sanitize to the same name share a directory; an empty label
// writes into outputDir itself.
func (s *Segmenter) SegmentDiarized(ctx context.Context, tl audio.Timeline, entries iter.Seq2[srt.Entry, error], outputDir string) ([]Result, error) {
	return s.run(ctx, tl, entries, outputDir, true)
}

func (s *Segmenter) run(ctx context.Context, tl audio.Timeline, entries iter.Seq2[srt.Entry, error], outputDir string, diarize bool) ([]Result, error) {
	if err := s.mkdir(outputDir); err != nil {
		return nil, err
	}
	created := map[string]bool{outputDir: true}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	var (
		mu      sync.Mutex
		results []Result
		loopErr error
	)

	for entry, err := range entries {
		if err != nil {
			loopErr = fmt.Errorf("reading subtitles: %w", err)
			break
		}
		if gctx.Err() != nil {
			break
		}

		job := s.plan(tl, entry, outputDir, diarize)
		if job.Start >= job.End && !s.keepDegenerate {
			s.logger.Warn("skipping empty interval",
				"entry", entry.Index, "start", job.Start, "end", job.End)
			continue
		}
		if !created[job.Dir] {
			if err := s.mkdir(job.Dir); err != nil {
				loopErr = err
				break
			}
			created[job.Dir] = true
		}

		job.Number = s.counter.Next()
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res, err := s.writer.Write(gctx, tl, job)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if s.policy == PolicySkipEntry {
					s.logger.Warn("skipping entry", "entry", entry.Index, "segment", job.Number, "error", err)
					return nil
				}
				return fmt.Errorf("entry %d: %w", entry.Index, err)
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	waitErr := g.Wait()
	slices.SortFunc(results, func(a, b Result) int { return a.Number - b.Number })

	switch {
	case loopErr != nil:
		return results, loopErr
	case waitErr != nil:
		return results, waitErr
	case ctx.Err() != nil:
		return results, ctx.Err()
	}
	return results, nil
}

// plan computes the directory and bounds of the clip for entry.
func (s *Segmenter) plan(tl audio.Timeline, entry srt.Entry, outputDir string, diarize bool) Job {
	if diarize {
		safe := speakerDir(entry.Speaker())
		return Job{
			Start:   max(entry.Start, 0),
			End:     min(entry.End, tl.Duration()),
			Dir:     filepath.Join(outputDir, safe),
			Speaker: safe,
		}
	}
	return Job{
		Start: max(entry.Start-s.padding, 0),
		End:   min(entry.End+s.padding, tl.Duration()),
		Dir:   outputDir,
	}
}

// speakerDir is the folder name for a speaker label. "." and ".." would
// leave the per-source folder, so they become "_".
func speakerDir(label string) string {
	safe := sanitize.Filename(label)
	if safe == "." || safe == ".." {
		return "_"
	}
	return safe
}

func (s *Segmenter) mkdir(dir string) error {
	if err := s.dirs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCreateDir, dir, err)
	}
	return nil
}
