package ffmpeg

import "errors"

// ErrNotFound indicates no usable FFmpeg binary could be located.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrTranscodeFailed indicates FFmpeg exited non-zero while converting a file.
var ErrTranscodeFailed = errors.New("transcoding failed")
