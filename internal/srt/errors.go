package srt

import "errors"

// ErrOpen indicates the subtitle file could not be opened.
var ErrOpen = errors.New("cannot open subtitle file")

// ErrRead indicates an I/O failure while reading subtitle content.
var ErrRead = errors.New("cannot read subtitle file")

// ErrMalformed indicates content that does not follow the SubRip block layout.
var ErrMalformed = errors.New("malformed subtitle file")
