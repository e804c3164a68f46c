package batch

import (
	"path/filepath"
	"slices"
	"strings"
)

// OutputDirName is the folder created inside the input folder for clips.
const OutputDirName = "output"

// supportedExtensions is the audio allow-list, compared case-insensitively.
var supportedExtensions = []string{
	".wav", ".mp3", ".flac", ".ogg", ".m4a", ".opus", ".webm", ".mkv", ".mp4",
}

// Job selects what a batch run processes.
type Job struct {
	InputDir     string
	SubtitlePath string
	Diarize      bool
}

// Validate reports ErrMissingInput when either path is empty.
func (j Job) Validate() error {
	if strings.TrimSpace(j.InputDir) == "" || strings.TrimSpace(j.SubtitlePath) == "" {
		return ErrMissingInput
	}
	return nil
}

// OutputRoot returns <input>/output.
func (j Job) OutputRoot() string {
	return filepath.Join(j.InputDir, OutputDirName)
}

// IsSupported reports whether name carries an allow-listed audio extension.
func IsSupported(name string) bool {
	return slices.Contains(supportedExtensions, strings.ToLower(filepath.Ext(name)))
}

// SupportedExtensions returns a copy of the allow-list.
func SupportedExtensions() []string {
	return slices.Clone(supportedExtensions)
}

// WorkingName returns the file that gets segmented for source name: name
// itself for WAV files, <stem>.wav for anything transcoded first.
func WorkingName(name string) string {
	if isWAV(name) {
		return name
	}
	return stem(name) + ".wav"
}

// isWAV reports whether name can be segmented without transcoding.
func isWAV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".wav")
}

// stem returns name without its extension.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
