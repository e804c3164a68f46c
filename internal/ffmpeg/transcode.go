package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// maxDiagnosticLines bounds how much of ffmpeg's stderr ends up in an error.
// The reason for a failure is always printed last.
const maxDiagnosticLines = 12

// Transcoder converts any supported container to uncompressed WAV.
type Transcoder struct {
	ffmpegPath string
	executor   *Executor
	logger     *slog.Logger
}

// TranscoderOption configures a Transcoder.
type TranscoderOption func(*Transcoder)

// WithTranscoderExecutor sets the executor used to run ffmpeg.
func WithTranscoderExecutor(e *Executor) TranscoderOption {
	return func(t *Transcoder) { t.executor = e }
}

// WithTranscoderLogger sets the logger for command tracing.
func WithTranscoderLogger(l *slog.Logger) TranscoderOption {
	return func(t *Transcoder) { t.logger = l }
}

// NewTranscoder creates a Transcoder that runs the binary at ffmpegPath.
func NewTranscoder(ffmpegPath string, opts ...TranscoderOption) (*Transcoder, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ErrNotFound)
	}
	t := &Transcoder{
		ffmpegPath: ffmpegPath,
		executor:   NewExecutor(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// ToWAV runs `ffmpeg -y -i src dst`. dst must end in .wav so ffmpeg picks
// the PCM WAV muxer. An existing dst is overwritten.
func (t *Transcoder) ToWAV(ctx context.Context, src, dst string) error {
	args := []string{"-y", "-i", src, dst}
	t.logger.Debug("running ffmpeg", "args", strings.Join(args, " "))

	output, err := t.executor.RunOutput(ctx, t.ffmpegPath, args)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v\nOutput: %s", ErrTranscodeFailed, src, err, tail(output, maxDiagnosticLines))
	}
	return nil
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
