package batch

import (
	"context"
	"iter"
	"os"

	"github.com/alnah/go-srtsplit/internal/audio"
	"github.com/alnah/go-srtsplit/internal/segment"
	"github.com/alnah/go-srtsplit/internal/srt"
)

// Transcoder converts a source file to WAV. *ffmpeg.Transcoder implements it.
type Transcoder interface {
	ToWAV(ctx context.Context, src, dst string) error
}

// Loader opens a WAV file as a timeline. *audio.Codec implements it.
type Loader interface {
	Load(ctx context.Context, path string) (audio.Timeline, error)
}

// Segmenter writes clips for one timeline. *segment.Segmenter implements it.
type Segmenter interface {
	Segment(ctx context.Context, tl audio.Timeline, entries iter.Seq2[srt.Entry, error], outputDir string) ([]segment.Result, error)
	SegmentDiarized(ctx context.Context, tl audio.Timeline, entries iter.Seq2[srt.Entry, error], outputDir string) ([]segment.Result, error)
	Policy() segment.Policy
}

// fileSystem is the directory access the runner needs.
type fileSystem interface {
	ReadDir(name string) ([]os.DirEntry, error)
	MkdirAll(path string, perm os.FileMode) error
	Stat(name string) (os.FileInfo, error)
}

type osFileSystem struct{}

func (osFileSystem) ReadDir(name string) ([]os.DirEntry, error) {
	return os.ReadDir(name)
}

func (osFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}
