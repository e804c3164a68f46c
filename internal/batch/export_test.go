package batch

import (
	"iter"

	"github.com/alnah/go-srtsplit/internal/srt"
)

// Export internals for testing.
// This file is only compiled during tests (suffix _test.go).

// FileSystem exports fileSystem interface for testing.
type FileSystem = fileSystem

// WithEntrySource replaces the subtitle reader (for testing).
func WithEntrySource(fn func(path string) iter.Seq2[srt.Entry, error]) Option {
	return func(r *Runner) { r.entries = fn }
}
