package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alnah/go-srtsplit/internal/audio"
	"github.com/alnah/go-srtsplit/internal/batch"
	"github.com/alnah/go-srtsplit/internal/config"
	"github.com/alnah/go-srtsplit/internal/ffmpeg"
	"github.com/alnah/go-srtsplit/internal/segment"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Getenv func(string) string
	Now    func() time.Time

	// Stop is closed on the first Ctrl+C. Batches finish the file in
	// progress, then return context.Canceled. Nil never fires.
	Stop <-chan struct{}

	// Factories for domain objects
	FFmpegResolver  FFmpegResolver
	ConfigLoader    ConfigLoader
	PipelineFactory PipelineFactory
}

// FFmpegResolver resolves the path to the FFmpeg binary.
type FFmpegResolver interface {
	// Resolve finds ffmpeg. A non-empty configured path wins over
	// FFMPEG_PATH and the system PATH.
	Resolve(ctx context.Context, configured string) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string)
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// Codec loads timelines and exports clips. *audio.Codec implements it.
type Codec interface {
	batch.Loader
	segment.Exporter
}

// PipelineFactory creates the ffmpeg-backed stages of a batch.
type PipelineFactory interface {
	NewTranscoder(ffmpegPath string, logger *slog.Logger) (batch.Transcoder, error)
	NewCodec(ffmpegPath string, logger *slog.Logger) (Codec, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the writer for command output meant to be piped.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithStdin sets the reader used by interactive prompts.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithStop sets the channel that asks running commands to wind down.
func WithStop(stop <-chan struct{}) EnvOption {
	return func(e *Env) {
		e.Stop = stop
	}
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) {
		e.FFmpegResolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithPipelineFactory sets the pipeline factory.
func WithPipelineFactory(f PipelineFactory) EnvOption {
	return func(e *Env) {
		e.PipelineFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Stdin:           os.Stdin,
		Getenv:          os.Getenv,
		Now:             time.Now,
		FFmpegResolver:  &defaultFFmpegResolver{},
		ConfigLoader:    &defaultConfigLoader{},
		PipelineFactory: &defaultPipelineFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultFFmpegResolver implements FFmpegResolver using the ffmpeg package.
type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve(ctx context.Context, configured string) (string, error) {
	return ffmpeg.NewResolver(ffmpeg.WithConfiguredPath(configured)).Resolve(ctx)
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	ffmpeg.NewVersionChecker().Check(ctx, ffmpegPath)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultPipelineFactory builds the ffmpeg transcoder and audio codec.
type defaultPipelineFactory struct{}

func (defaultPipelineFactory) NewTranscoder(ffmpegPath string, logger *slog.Logger) (batch.Transcoder, error) {
	tc, err := ffmpeg.NewTranscoder(ffmpegPath, ffmpeg.WithTranscoderLogger(logger))
	if err != nil {
		return nil, err
	}
	return tc, nil
}

func (defaultPipelineFactory) NewCodec(ffmpegPath string, logger *slog.Logger) (Codec, error) {
	c, err := audio.NewCodec(ffmpegPath, audio.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Compile-time interface verification.
var (
	_ FFmpegResolver  = (*defaultFFmpegResolver)(nil)
	_ ConfigLoader    = (*defaultConfigLoader)(nil)
	_ PipelineFactory = (*defaultPipelineFactory)(nil)
	_ Codec           = (*audio.Codec)(nil)
)
