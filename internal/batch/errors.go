package batch

import "errors"

// ErrMissingInput indicates the job lacks an input folder or subtitle file.
var ErrMissingInput = errors.New("input folder and subtitle file are required")

// ErrListInput indicates the input folder could not be read.
var ErrListInput = errors.New("cannot list input folder")

// ErrUnsupportedFile indicates a file outside the audio allow-list.
var ErrUnsupportedFile = errors.New("unsupported audio file")

// ErrAborted indicates a segmentation failure stopped the batch.
var ErrAborted = errors.New("batch aborted")
