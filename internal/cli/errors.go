package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrUsage indicates arguments that cannot be combined.
	ErrUsage = errors.New("invalid usage")

	// ErrInvalidSetting indicates a job file or configured value that does not parse.
	ErrInvalidSetting = errors.New("invalid setting")
)
