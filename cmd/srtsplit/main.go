package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-srtsplit/internal/audio"
	"github.com/alnah/go-srtsplit/internal/batch"
	"github.com/alnah/go-srtsplit/internal/cli"
	"github.com/alnah/go-srtsplit/internal/config"
	"github.com/alnah/go-srtsplit/internal/ffmpeg"
	"github.com/alnah/go-srtsplit/internal/frontend"
	"github.com/alnah/go-srtsplit/internal/interrupt"
	"github.com/alnah/go-srtsplit/internal/segment"
	"github.com/alnah/go-srtsplit/internal/srt"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK           = 0
	ExitGeneral      = 1
	ExitUsage        = 2
	ExitSetup        = 3
	ExitValidation   = 4
	ExitSegmentation = 5
	ExitInterrupt    = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C closes stop, the second cancels work and exits.
	h, stop, work := interrupt.NewHandler(context.Background())

	rootCmd := newRootCmd(cli.NewEnv(cli.WithStop(stop.Done())))

	err := rootCmd.ExecuteContext(work)
	h.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// newRootCmd assembles the command tree.
func newRootCmd(env *cli.Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "srtsplit",
		Short: "Cut audio recordings into one clip per subtitle",
		Long: `Cut every audio file of a folder into WAV clips, one per subtitle entry,
optionally grouped by the speaker named in each subtitle.

FFmpeg must be installed, or its path set with FFMPEG_PATH or
"srtsplit config set ffmpeg-path".`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.SplitCmd(env))
	rootCmd.AddCommand(cli.WatchCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	return rootCmd
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2).
	if errors.Is(err, cli.ErrUsage) || isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, ffmpeg.ErrNotFound) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, batch.ErrMissingInput) || errors.Is(err, batch.ErrListInput) ||
		errors.Is(err, frontend.ErrJobFile) || errors.Is(err, cli.ErrInvalidSetting) ||
		errors.Is(err, config.ErrUnknownKey) || errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrDirNotFound) || errors.Is(err, config.ErrNotDirectory) ||
		errors.Is(err, config.ErrNotWritable) || errors.Is(err, segment.ErrInvalidPolicy) ||
		errors.Is(err, srt.ErrOpen) || errors.Is(err, srt.ErrRead) || errors.Is(err, srt.ErrMalformed) {
		return ExitValidation
	}

	// Segmentation errors (ExitSegmentation = 5).
	if errors.Is(err, batch.ErrAborted) || errors.Is(err, audio.ErrFileNotFound) ||
		errors.Is(err, audio.ErrLoadFailed) || errors.Is(err, audio.ErrExportFailed) ||
		errors.Is(err, segment.ErrWriteFailed) || errors.Is(err, segment.ErrCreateDir) {
		return ExitSegmentation
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 2 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
