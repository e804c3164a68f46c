package audio

import "errors"

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrLoadFailed indicates ffmpeg could not read or probe a source file.
var ErrLoadFailed = errors.New("audio load failed")

// ErrExportFailed indicates ffmpeg failed to write a segment.
var ErrExportFailed = errors.New("audio export failed")
