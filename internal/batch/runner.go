// Package batch drives segmentation over every audio file of a folder.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alnah/go-srtsplit/internal/segment"
	"github.com/alnah/go-srtsplit/internal/srt"
)

// Runner processes the audio files of a job's input folder one at a time.
// Reusing a Runner reuses its Segmenter, and with it the segment counter.
type Runner struct {
	transcoder Transcoder
	loader     Loader
	segmenter  Segmenter
	fs         fileSystem
	entries    func(path string) iter.Seq2[srt.Entry, error]
	stop       <-chan struct{}
	logger     *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for progress and skip notices.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithFileSystem sets a custom file system (for testing).
func WithFileSystem(fs fileSystem) Option {
	return func(r *Runner) { r.fs = fs }
}

// WithStop makes Run return context.Canceled before starting another file
// once stop is closed. The file in progress is finished first.
func WithStop(stop <-chan struct{}) Option {
	return func(r *Runner) { r.stop = stop }
}

// NewRunner creates a Runner.
func NewRunner(tc Transcoder, ld Loader, seg Segmenter, opts ...Option) *Runner {
	r := &Runner{
		transcoder: tc,
		loader:     ld,
		segmenter:  seg,
		fs:         osFileSystem{},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.entries == nil {
		logger := r.logger
		r.entries = func(path string) iter.Seq2[srt.Entry, error] {
			return srt.Entries(path, srt.WithLogger(logger))
		}
	}
	return r
}

// Run segments every supported file in job.InputDir, in lexical order, into
// <input>/output/<stem>/. A file that fails to transcode is skipped. A
// segmentation failure stops the batch under segment.PolicyAbort and skips
// the file otherwise. The returned Report covers every file visited.
func (r *Runner) Run(ctx context.Context, job Job) (Report, error) {
	var report Report
	if err := job.Validate(); err != nil {
		return report, err
	}
	if err := r.mkdir(job.OutputRoot()); err != nil {
		return report, err
	}

	dirEntries, err := r.fs.ReadDir(job.InputDir)
	if err != nil {
		return report, fmt.Errorf("%w: %s: %w", ErrListInput, job.InputDir, err)
	}

	// The listing is taken once, so WAV files produced by transcoding
	// below are not picked up as new sources.
	var names []string
	for _, de := range dirEntries {
		if IsSupported(de.Name()) && r.isRegular(job.InputDir, de) {
			names = append(names, de.Name())
		}
	}
	r.logger.Info("starting batch", "input", job.InputDir, "files", len(names), "diarize", job.Diarize)

	for _, name := range names {
		select {
		case <-r.stop:
			r.logger.Info("batch stopped", "files", len(report.Files), "remaining", len(names)-len(report.Files))
			return report, context.Canceled
		default:
		}
		fr, err := r.process(ctx, job, name)
		report.Files = append(report.Files, fr)
		if err != nil {
			return report, err
		}
	}

	r.logger.Info("batch complete",
		"files", len(report.Files), "segments", report.Segments(), "skipped", report.Skipped())
	return report, nil
}

// RunFile processes a single file of job.InputDir with the same rules as Run.
func (r *Runner) RunFile(ctx context.Context, job Job, name string) (FileReport, error) {
	if err := job.Validate(); err != nil {
		return FileReport{}, err
	}
	if !IsSupported(name) {
		return FileReport{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
	}
	if err := r.mkdir(job.OutputRoot()); err != nil {
		return FileReport{}, err
	}
	return r.process(ctx, job, filepath.Base(name))
}

// process handles one source file. A non-nil error stops the batch.
func (r *Runner) process(ctx context.Context, job Job, name string) (FileReport, error) {
	fr := FileReport{
		Source:    filepath.Join(job.InputDir, name),
		Working:   filepath.Join(job.InputDir, name),
		OutputDir: filepath.Join(job.OutputRoot(), stem(name)),
	}
	if err := ctx.Err(); err != nil {
		return fr, err
	}
	r.logger.Info("processing file", "file", fr.Source)

	if !isWAV(name) {
		fr.Working = filepath.Join(job.InputDir, WorkingName(name))
		if err := r.transcoder.ToWAV(ctx, fr.Source, fr.Working); err != nil {
			if ctx.Err() != nil {
				return fr, ctx.Err()
			}
			r.logger.Warn("skipping file: transcoding failed", "file", fr.Source, "error", err)
			fr.Skipped, fr.Err = true, err
			return fr, nil
		}
	}

	if err := r.mkdir(fr.OutputDir); err != nil {
		return fr, err
	}

	tl, err := r.loader.Load(ctx, fr.Working)
	if err != nil {
		return fr, r.fail(ctx, &fr, err)
	}

	entries := r.entries(job.SubtitlePath)
	if job.Diarize {
		fr.Segments, err = r.segmenter.SegmentDiarized(ctx, tl, entries, fr.OutputDir)
	} else {
		fr.Segments, err = r.segmenter.Segment(ctx, tl, entries, fr.OutputDir)
	}
	if err != nil {
		return fr, r.fail(ctx, &fr, err)
	}

	r.logger.Info("finished file", "file", fr.Source, "segments", len(fr.Segments))
	return fr, nil
}

// fail classifies a load or segmentation error. Cancellation, directory
// errors, and unreadable subtitles always stop the batch. Anything else
// stops it only under PolicyAbort.
func (r *Runner) fail(ctx context.Context, fr *FileReport, err error) error {
	fr.Skipped, fr.Err = true, err

	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, segment.ErrCreateDir),
		errors.Is(err, srt.ErrOpen),
		errors.Is(err, srt.ErrRead),
		errors.Is(err, srt.ErrMalformed):
		return err
	case r.segmenter.Policy() == segment.PolicyAbort:
		return fmt.Errorf("%w: %s: %w", ErrAborted, fr.Source, err)
	}

	r.logger.Warn("skipping file: segmentation failed", "file", fr.Source, "error", err)
	return nil
}

// isRegular reports whether de is a regular file, following symlinks.
// A dangling link is logged and left out.
func (r *Runner) isRegular(dir string, de os.DirEntry) bool {
	switch {
	case de.Type().IsRegular():
		return true
	case de.Type()&fs.ModeSymlink == 0:
		return false
	}
	info, err := r.fs.Stat(filepath.Join(dir, de.Name()))
	if err != nil {
		r.logger.Warn("skipping broken symlink", "file", filepath.Join(dir, de.Name()), "error", err)
		return false
	}
	return info.Mode().IsRegular()
}

func (r *Runner) mkdir(dir string) error {
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %w", segment.ErrCreateDir, dir, err)
	}
	return nil
}
