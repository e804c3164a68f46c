package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-srtsplit/internal/batch"
	"github.com/alnah/go-srtsplit/internal/config"
	"github.com/alnah/go-srtsplit/internal/frontend"
	"github.com/alnah/go-srtsplit/internal/watch"
)

// watchOptions holds the flags of the watch command.
type watchOptions struct {
	segmentOptions
	settle          time.Duration
	processExisting bool
}

// WatchCmd creates the watch command.
func WatchCmd(env *Env) *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch <folder> <subtitles.srt>",
		Short: "Segment audio files as they appear in a folder",
		Long: `Watch a folder and segment every supported audio file dropped into it,
once the file has stopped changing for the settle delay.

Clips are numbered across the whole session. The WAV files produced by
converting other formats are not picked up again. Press Ctrl+C to stop.`,
		Example: `  srtsplit watch ./inbox talk.srt
  srtsplit watch ./inbox talk.srt --process-existing --settle 3s
  srtsplit watch ./inbox interview.srt --diarize --on-error skip-file`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), env, &opts, cmd.Flags().Changed, args[0], args[1])
		},
	}

	addSegmentFlags(cmd.Flags(), &opts.segmentOptions)
	cmd.Flags().DurationVar(&opts.settle, "settle", watch.DefaultSettleDelay, "How long a new file must stay unchanged before it is processed")
	cmd.Flags().BoolVar(&opts.processExisting, "process-existing", false, "Segment the files already in the folder before watching")

	return cmd
}

// runWatch runs until ctx is canceled or a file fails fatally.
func runWatch(ctx context.Context, env *Env, opts *watchOptions, changed func(string) bool, folder, subtitles string) error {
	if opts.settle <= 0 {
		return fmt.Errorf("%w: --settle must be positive, got %s", ErrInvalidSetting, opts.settle)
	}

	job, err := frontend.FlagSelector{Folder: folder, Subtitles: subtitles, Diarize: opts.diarize}.Select(ctx)
	if err != nil {
		return err
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	s, err := resolveSettings(&opts.segmentOptions, changed, frontend.JobFile{}, cfg)
	if err != nil {
		return err
	}
	logger := newLogger(env.Stderr, s.logLevel)

	if job.InputDir, err = config.EnsureInputDir(job.InputDir); err != nil {
		return err
	}

	runner, err := newRunner(ctx, env, s, logger)
	if err != nil {
		return err
	}

	if opts.processExisting {
		start := env.Now()
		report, err := runner.Run(ctx, job)
		printSummary(env.Stderr, job, report, env.Now().Sub(start))
		if err != nil {
			return err
		}
	}

	w := watch.New(job.InputDir,
		func(_ context.Context, name string) error {
			_, err := runner.RunFile(ctx, job, name)
			return err
		},
		watch.WithSettleDelay(opts.settle),
		watch.WithFilter(batch.IsSupported),
		watch.WithOutputs(transcodeOutputs),
		watch.WithLogger(logger),
	)

	fmt.Fprintf(env.Stderr, "Watching %s (Ctrl+C to stop)\n", job.InputDir)
	return w.Run(stopContext(ctx, env.Stop))
}

// stopContext derives a context that is also canceled once stop is closed.
// The watcher stops taking new files on it; the handler keeps running on
// the parent, so the file in progress is finished.
func stopContext(ctx context.Context, stop <-chan struct{}) context.Context {
	if stop == nil {
		return ctx
	}
	watchCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		select {
		case <-stop:
		case <-watchCtx.Done():
		}
	}()
	return watchCtx
}

// transcodeOutputs lists the files written next to name while it is
// processed: the converted WAV for anything that is not a WAV already.
func transcodeOutputs(name string) []string {
	if working := batch.WorkingName(name); working != name {
		return []string{working}
	}
	return nil
}
