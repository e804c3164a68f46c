package segment

import (
	"context"
	"os"

	"github.com/alnah/go-srtsplit/internal/audio"
)

// Exporter writes a timeline window to a file. *audio.Codec implements it.
type Exporter interface {
	Export(ctx context.Context, tl audio.Timeline, dst string) error
}

// dirCreator creates directories.
type dirCreator interface {
	MkdirAll(path string, perm os.FileMode) error
}

// fileStatter retrieves file information.
type fileStatter interface {
	Stat(name string) (os.FileInfo, error)
}

// --- Default implementations using real OS functions ---

type osDirCreator struct{}

func (osDirCreator) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

type osFileStatter struct{}

func (osFileStatter) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}
