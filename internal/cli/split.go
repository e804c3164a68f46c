package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-srtsplit/internal/config"
	"github.com/alnah/go-srtsplit/internal/frontend"
)

// splitOptions holds the flags of the split command.
type splitOptions struct {
	segmentOptions
	job         string
	interactive bool
}

// SplitCmd creates the split command.
// The env parameter provides injectable dependencies for testing.
func SplitCmd(env *Env) *cobra.Command {
	var opts splitOptions

	cmd := &cobra.Command{
		Use:   "split [folder] [subtitles.srt]",
		Short: "Cut every audio file of a folder into one clip per subtitle",
		Long: `Cut every audio file of a folder into one WAV clip per subtitle entry.

Files are processed in name order. Non-WAV files are first converted to
<name>.wav next to the original. Clips are written to
<folder>/output/<name>/segment_<n>.wav, numbered across the whole run.

With --diarize, each subtitle is read as "Speaker|text" and clips are grouped
into <folder>/output/<name>/<Speaker>/. Padding does not apply in that mode.

The folder and subtitle file come from the arguments, a YAML job file (--job),
or interactive prompts (--interactive).

Supported formats: wav, mp3, flac, ogg, m4a, opus, webm, mkv, mp4`,
		Example: `  srtsplit split ./recordings talk.srt
  srtsplit split ./recordings talk.srt --padding 250ms --workers 4
  srtsplit split ./interviews interview.srt --diarize
  srtsplit split ./recordings talk.srt --on-error skip-file
  srtsplit split --job session.yaml
  srtsplit split --interactive`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd.Context(), env, &opts, cmd.Flags().Changed, args)
		},
	}

	addSegmentFlags(cmd.Flags(), &opts.segmentOptions)
	cmd.Flags().StringVarP(&opts.job, "job", "j", "", "Read the folder, subtitles, and settings from a YAML job file")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for the folder and subtitle file")
	cmd.MarkFlagsMutuallyExclusive("job", "interactive")

	return cmd
}

// runSplit executes one batch.
// Order: selection -> settings -> input folder -> ffmpeg -> run -> summary.
func runSplit(ctx context.Context, env *Env, opts *splitOptions, changed func(string) bool, args []string) error {
	if (opts.job != "" || opts.interactive) && len(args) > 0 {
		return fmt.Errorf("%w: folder and subtitle arguments cannot be combined with --job or --interactive", ErrUsage)
	}

	var (
		sel     frontend.Selector
		fileSel *frontend.FileSelector
	)
	switch {
	case opts.job != "":
		fileSel = &frontend.FileSelector{Path: opts.job}
		sel = fileSel
	case opts.interactive:
		sel = frontend.PromptSelector{In: env.Stdin, Out: env.Stderr}
	default:
		fs := frontend.FlagSelector{Diarize: opts.diarize}
		if len(args) > 0 {
			fs.Folder = args[0]
		}
		if len(args) > 1 {
			fs.Subtitles = args[1]
		}
		sel = fs
	}

	job, err := sel.Select(ctx)
	if err != nil {
		return err
	}
	if changed(flagDiarize) {
		job.Diarize = opts.diarize
	}

	var jf frontend.JobFile
	if fileSel != nil {
		jf = fileSel.Settings()
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	s, err := resolveSettings(&opts.segmentOptions, changed, jf, cfg)
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

	start := env.Now()
	report, err := runner.Run(ctx, job)
	printSummary(env.Stderr, job, report, env.Now().Sub(start))
	return err
}
