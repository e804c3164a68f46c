package config

import "errors"

// ErrUnknownKey indicates a key that the config file does not support.
var ErrUnknownKey = errors.New("unknown config key")

// ErrInvalidValue indicates a value that cannot be parsed for its key.
var ErrInvalidValue = errors.New("invalid config value")

// ErrNotDirectory indicates a path that exists but is not a directory.
var ErrNotDirectory = errors.New("path is not a directory")

// ErrNotWritable indicates a directory where output cannot be created.
var ErrNotWritable = errors.New("directory is not writable")

// ErrDirNotFound indicates a directory that does not exist.
var ErrDirNotFound = errors.New("directory not found")
