package batch

import "github.com/alnah/go-srtsplit/internal/segment"

// FileReport describes what happened to one source file.
type FileReport struct {
	Source    string           // File found in the input folder.
	Working   string           // File that was segmented (the transcoded .wav for non-WAV sources).
	OutputDir string           // <input>/output/<stem>.
	Segments  []segment.Result // Clips written, in number order.
	Skipped   bool             // True when the file was not (fully) segmented.
	Err       error            // Why the file was skipped, if it was.
}

// Report summarizes a batch run.
type Report struct {
	Files []FileReport
}

// Segments returns the number of clips written across all files.
func (r Report) Segments() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Segments)
	}
	return n
}

// Skipped returns the number of files that were skipped.
func (r Report) Skipped() int {
	n := 0
	for _, f := range r.Files {
		if f.Skipped {
			n++
		}
	}
	return n
}
