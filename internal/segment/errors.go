package segment

import "errors"

// ErrCreateDir indicates an output or speaker directory could not be created.
// It is fatal regardless of the error policy.
var ErrCreateDir = errors.New("cannot create output directory")

// ErrWriteFailed indicates a segment could not be exported.
var ErrWriteFailed = errors.New("segment write failed")

// ErrInvalidPolicy indicates an unknown error-policy name.
var ErrInvalidPolicy = errors.New("invalid error policy")
