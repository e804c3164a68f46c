package watch

import "errors"

// ErrWatch indicates the folder could not be watched.
var ErrWatch = errors.New("cannot watch folder")
