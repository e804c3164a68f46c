package frontend

import "errors"

// ErrJobFile indicates a job file that cannot be read or decoded.
var ErrJobFile = errors.New("invalid job file")
