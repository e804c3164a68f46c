package segment

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/alnah/go-srtsplit/internal/audio"
)

// Job describes one clip to write.
type Job struct {
	Number  int
	Start   time.Duration
	End     time.Duration
	Dir     string
	Speaker string // sanitized label, empty when not diarizing
}

// Result describes a written clip. Start and End are the bounds actually
// exported, relative to the timeline passed to Write.
type Result struct {
	Number  int
	Path    string
	Start   time.Duration
	End     time.Duration
	Bytes   int64
	Speaker string
}

// Writer writes a single clip.
type Writer interface {
	Write(ctx context.Context, tl audio.Timeline, job Job) (Result, error)
}

// FileName returns the clip file name for a segment number.
func FileName(n int) string {
	return fmt.Sprintf("segment_%d.wav", n)
}

// FileWriter exports clips as Dir/segment_<Number>.wav.
type FileWriter struct {
	exporter Exporter
	stat     fileStatter
	logger   *slog.Logger
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithWriterLogger sets the logger receiving "Saved segment" notices.
func WithWriterLogger(l *slog.Logger) FileWriterOption {
	return func(w *FileWriter) { w.logger = l }
}

// WithWriterFileStatter sets the statter used to measure written clips.
func WithWriterFileStatter(s fileStatter) FileWriterOption {
	return func(w *FileWriter) { w.stat = s }
}

// NewFileWriter creates a FileWriter exporting through e.
func NewFileWriter(e Exporter, opts ...FileWriterOption) *FileWriter {
	w := &FileWriter{
		exporter: e,
		stat:     osFileStatter{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write slices tl to [job.Start, job.End) and exports it.
// The directory must already exist. Export errors are returned wrapped
// in ErrWriteFailed and never retried.
func (w *FileWriter) Write(ctx context.Context, tl audio.Timeline, job Job) (Result, error) {
	seg := tl.Slice(job.Start, job.End)
	path := filepath.Join(job.Dir, FileName(job.Number))

	if err := w.exporter.Export(ctx, seg, path); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w: segment %d: %w", ErrWriteFailed, job.Number, err)
	}

	var size int64
	if info, err := w.stat.Stat(path); err == nil {
		size = info.Size()
	}

	start := seg.Offset() - tl.Offset()
	w.logger.Info("Saved segment to "+path, "number", job.Number, "start", start, "end", start+seg.Duration())

	return Result{
		Number:  job.Number,
		Path:    path,
		Start:   start,
		End:     start + seg.Duration(),
		Bytes:   size,
		Speaker: job.Speaker,
	}, nil
}
