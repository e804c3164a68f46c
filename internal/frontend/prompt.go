package frontend

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-srtsplit/internal/batch"
)

// PromptSelector asks for the job on a terminal: audio folder, subtitle
// file, then whether to group clips by speaker. An empty answer or end of
// input for either path cancels the selection.
type PromptSelector struct {
	In  io.Reader
	Out io.Writer
}

// Select implements Selector.
func (s PromptSelector) Select(ctx context.Context) (batch.Job, error) {
	sc := bufio.NewScanner(s.In)
	ask := func(question string) (string, bool) {
		if ctx.Err() != nil {
			return "", false
		}
		fmt.Fprint(s.Out, question)
		if !sc.Scan() {
			fmt.Fprintln(s.Out)
			return "", false
		}
		return strings.TrimSpace(sc.Text()), true
	}

	var job batch.Job
	folder, ok := ask("Audio folder: ")
	if !ok || folder == "" {
		return s.cancel(ctx)
	}
	job.InputDir = folder

	subtitles, ok := ask("Subtitle file (.srt): ")
	if !ok || subtitles == "" {
		return s.cancel(ctx)
	}
	job.SubtitlePath = subtitles

	answer, _ := ask("Group clips by speaker? [y/N]: ")
	job.Diarize = isYes(answer)

	return finish(job)
}

func (s PromptSelector) cancel(ctx context.Context) (batch.Job, error) {
	if err := ctx.Err(); err != nil {
		return batch.Job{}, err
	}
	return finish(batch.Job{})
}

func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}
