package frontend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/alnah/go-srtsplit/internal/batch"
	"github.com/alnah/go-srtsplit/internal/config"
)

// JobFile is the YAML layout accepted by FileSelector:
//
//	input: ~/recordings/session-1
//	subtitles: session-1.srt
//	diarize: true
//	padding: 250ms
//	workers: 4
//	on-error: skip-file
//
// Relative paths are resolved against the job file's directory.
type JobFile struct {
	Input     string `yaml:"input"`
	Subtitles string `yaml:"subtitles"`
	Diarize   bool   `yaml:"diarize"`
	Padding   string `yaml:"padding,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
	OnError   string `yaml:"on-error,omitempty"`
}

// FileSelector reads the job from a YAML file.
type FileSelector struct {
	Path string

	settings JobFile
}

// Select implements Selector. Unknown keys are rejected so a misspelled
// option is not silently ignored.
func (s *FileSelector) Select(ctx context.Context) (batch.Job, error) {
	if err := ctx.Err(); err != nil {
		return batch.Job{}, err
	}

	f, err := os.Open(config.ExpandPath(s.Path)) // #nosec G304 -- job file path is chosen by the user
	if err != nil {
		return batch.Job{}, fmt.Errorf("%w: %w", ErrJobFile, err)
	}
	defer func() { _ = f.Close() }()

	jf, err := decodeJobFile(f)
	if err != nil {
		return batch.Job{}, fmt.Errorf("%w: %s: %w", ErrJobFile, s.Path, err)
	}
	s.settings = jf

	base := filepath.Dir(config.ExpandPath(s.Path))
	return finish(batch.Job{
		InputDir:     resolve(base, jf.Input),
		SubtitlePath: resolve(base, jf.Subtitles),
		Diarize:      jf.Diarize,
	})
}

// Settings returns the optional segmentation settings of the last file read.
func (s *FileSelector) Settings() JobFile {
	return s.settings
}

func decodeJobFile(r io.Reader) (JobFile, error) {
	var jf JobFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&jf); err != nil {
		if errors.Is(err, io.EOF) {
			return jf, nil
		}
		return jf, err
	}
	if jf.Workers < 0 {
		return jf, fmt.Errorf("workers must be positive, got %d", jf.Workers)
	}
	if jf.Padding != "" {
		if _, err := config.ParsePadding(jf.Padding); err != nil {
			return jf, err
		}
	}
	return jf, nil
}

// resolve joins a relative path to base; empty, absolute, and ~ paths are
// returned unchanged.
func resolve(base, p string) string {
	p = config.ExpandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
