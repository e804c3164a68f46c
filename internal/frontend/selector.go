// Package frontend collects a batch.Job from the user: command-line flags,
// a YAML job file, or interactive prompts.
package frontend

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-srtsplit/internal/batch"
	"github.com/alnah/go-srtsplit/internal/config"
)

// Selector produces the job to run. An empty folder or subtitle path is
// reported as batch.ErrMissingInput, before anything is processed.
type Selector interface {
	Select(ctx context.Context) (batch.Job, error)
}

// FlagSelector returns the job given on the command line.
type FlagSelector struct {
	Folder    string
	Subtitles string
	Diarize   bool
}

// Select implements Selector.
func (s FlagSelector) Select(ctx context.Context) (batch.Job, error) {
	if err := ctx.Err(); err != nil {
		return batch.Job{}, err
	}
	return finish(batch.Job{
		InputDir:     s.Folder,
		SubtitlePath: s.Subtitles,
		Diarize:      s.Diarize,
	})
}

// finish expands ~ in both paths and validates the job.
func finish(job batch.Job) (batch.Job, error) {
	job.InputDir = config.ExpandPath(strings.TrimSpace(job.InputDir))
	job.SubtitlePath = config.ExpandPath(strings.TrimSpace(job.SubtitlePath))
	if err := job.Validate(); err != nil {
		return batch.Job{}, fmt.Errorf("no selection made: %w", err)
	}
	return job, nil
}
