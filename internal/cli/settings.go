package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/alnah/go-srtsplit/internal/batch"
	"github.com/alnah/go-srtsplit/internal/config"
	"github.com/alnah/go-srtsplit/internal/format"
	"github.com/alnah/go-srtsplit/internal/frontend"
	"github.com/alnah/go-srtsplit/internal/segment"
)

// Flag names shared by split and watch.
const (
	flagDiarize        = "diarize"
	flagPadding        = "padding"
	flagWorkers        = "workers"
	flagOnError        = "on-error"
	flagKeepDegenerate = "keep-degenerate"
	flagLogLevel       = "log-level"
)

// ---------------------------------------------------------------------------
// Custom flag values
// ---------------------------------------------------------------------------

// policyFlag parses --on-error.
type policyFlag struct {
	policy segment.Policy
}

func (f *policyFlag) String() string { return f.policy.String() }
func (f *policyFlag) Type() string   { return "policy" }

func (f *policyFlag) Set(s string) error {
	p, err := segment.ParsePolicy(s)
	if err != nil {
		return err
	}
	f.policy = p
	return nil
}

// paddingFlag parses --padding as a duration or bare milliseconds.
type paddingFlag struct {
	d time.Duration
}

func (f *paddingFlag) String() string { return f.d.String() }
func (f *paddingFlag) Type() string   { return "duration" }

func (f *paddingFlag) Set(s string) error {
	d, err := config.ParsePadding(s)
	if err != nil {
		return err
	}
	f.d = d
	return nil
}

var (
	_ pflag.Value = (*policyFlag)(nil)
	_ pflag.Value = (*paddingFlag)(nil)
)

// ---------------------------------------------------------------------------
// Segmentation options
// ---------------------------------------------------------------------------

// segmentOptions holds the raw flag values common to split and watch.
type segmentOptions struct {
	diarize        bool
	padding        paddingFlag
	workers        int
	onError        policyFlag
	keepDegenerate bool
	logLevel       string
}

func addSegmentFlags(fs *pflag.FlagSet, o *segmentOptions) {
	fs.BoolVarP(&o.diarize, flagDiarize, "d", false, "Group clips by the speaker label in each subtitle (\"Alice|text\")")
	fs.Var(&o.padding, flagPadding, "Widen each clip on both sides, e.g. 250ms or 250 (ignored with --diarize)")
	fs.IntVarP(&o.workers, flagWorkers, "w", 1, "Clips exported in parallel per file")
	o.onError.policy = segment.PolicyAbort
	fs.Var(&o.onError, flagOnError, "On a failed file or clip: abort, skip-file, skip-entry")
	fs.BoolVar(&o.keepDegenerate, flagKeepDegenerate, false, "Export clips whose start is not before their end")
	fs.StringVar(&o.logLevel, flagLogLevel, "", "Log level: debug, info, warn, error (default info)")
}

// settings are the effective segmentation settings after precedence:
// flag > job file > config file > environment > default.
type settings struct {
	ffmpegPath     string
	padding        time.Duration
	workers        int
	policy         segment.Policy
	keepDegenerate bool
	logLevel       slog.Level
}

// resolveSettings merges flags, the job file, and the loaded configuration.
// changed reports whether a flag was given on the command line.
func resolveSettings(o *segmentOptions, changed func(string) bool, jf frontend.JobFile, cfg config.Config) (settings, error) {
	s := settings{
		ffmpegPath:     cfg.FFmpegPath,
		workers:        1,
		policy:         segment.PolicyAbort,
		keepDegenerate: o.keepDegenerate,
		logLevel:       slog.LevelInfo,
	}

	switch {
	case changed(flagPadding):
		s.padding = o.padding.d
	case jf.Padding != "":
		d, err := config.ParsePadding(jf.Padding)
		if err != nil {
			return settings{}, fmt.Errorf("%w: job file padding: %w", ErrInvalidSetting, err)
		}
		s.padding = d
	case cfg.Padding != "":
		d, err := configured(config.KeyPadding, cfg.Padding, config.ParsePadding)
		if err != nil {
			return settings{}, err
		}
		s.padding = d
	}

	switch {
	case changed(flagWorkers):
		if o.workers < 1 {
			return settings{}, fmt.Errorf("%w: --workers must be at least 1, got %d", ErrInvalidSetting, o.workers)
		}
		s.workers = o.workers
	case jf.Workers > 0:
		s.workers = jf.Workers
	case cfg.Workers != "":
		n, err := configured(config.KeyWorkers, cfg.Workers, config.ParseWorkers)
		if err != nil {
			return settings{}, err
		}
		s.workers = n
	}

	switch {
	case changed(flagOnError):
		s.policy = o.onError.policy
	case jf.OnError != "":
		p, err := segment.ParsePolicy(jf.OnError)
		if err != nil {
			return settings{}, fmt.Errorf("%w: job file on-error: %w", ErrInvalidSetting, err)
		}
		s.policy = p
	case cfg.OnError != "":
		p, err := configured(config.KeyOnError, cfg.OnError, segment.ParsePolicy)
		if err != nil {
			return settings{}, err
		}
		s.policy = p
	}

	switch {
	case changed(flagLogLevel):
		level, err := config.ParseLogLevel(o.logLevel)
		if err != nil {
			return settings{}, fmt.Errorf("%w: %w", ErrInvalidSetting, err)
		}
		s.logLevel = level
	case cfg.LogLevel != "":
		level, err := configured(config.KeyLogLevel, cfg.LogLevel, config.ParseLogLevel)
		if err != nil {
			return settings{}, err
		}
		s.logLevel = level
	}

	return s, nil
}

// configured parses a value that came from the config file or environment.
func configured[T any](key, value string, parse func(string) (T, error)) (T, error) {
	v, err := parse(value)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w for %s (config or %s): %w", config.ErrInvalidValue, key, config.EnvFor(key), err)
	}
	return v, nil
}

// newLogger returns a text logger on w.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ---------------------------------------------------------------------------
// Pipeline assembly
// ---------------------------------------------------------------------------

// newRunner resolves ffmpeg and wires transcoder, codec, writer, and
// segmenter into a batch runner. The runner owns one segment counter, so
// every file it processes continues the same numbering.
func newRunner(ctx context.Context, env *Env, s settings, logger *slog.Logger) (*batch.Runner, error) {
	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx, s.ffmpegPath)
	if err != nil {
		return nil, err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)
	logger.Debug("using ffmpeg", "path", ffmpegPath)

	tc, err := env.PipelineFactory.NewTranscoder(ffmpegPath, logger)
	if err != nil {
		return nil, err
	}
	codec, err := env.PipelineFactory.NewCodec(ffmpegPath, logger)
	if err != nil {
		return nil, err
	}

	writer := segment.NewFileWriter(codec, segment.WithWriterLogger(logger))
	seg := segment.New(writer, segment.NewCounter(),
		segment.WithPadding(s.padding),
		segment.WithWorkers(s.workers),
		segment.WithPolicy(s.policy),
		segment.WithKeepDegenerate(s.keepDegenerate),
		segment.WithLogger(logger),
	)
	return batch.NewRunner(tc, codec, seg, batch.WithLogger(logger), batch.WithStop(env.Stop)), nil
}

// printSummary writes the end-of-run report.
func printSummary(w io.Writer, job batch.Job, report batch.Report, elapsed time.Duration) {
	var total int64
	for _, f := range report.Files {
		for _, r := range f.Segments {
			total += r.Bytes
		}
	}
	fmt.Fprintf(w, "Done: %d clips (%s) from %d files in %s\n",
		report.Segments(), format.Size(total), len(report.Files), format.Duration(elapsed))
	if n := report.Skipped(); n > 0 {
		fmt.Fprintf(w, "Skipped: %d files\n", n)
		for _, f := range report.Files {
			if f.Skipped {
				fmt.Fprintf(w, "  %s: %v\n", f.Source, f.Err)
			}
		}
	}
	fmt.Fprintf(w, "Output: %s\n", job.OutputRoot())
}
