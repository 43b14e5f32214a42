package backend

import "errors"

// Configuration errors returned while parsing backend options.
//
// They are always wrapped with the offending option key:
//
//	if errors.Is(err, backend.ErrMissingOption) {
//	    // abort startup
//	}
var (
	// ErrMissingOption is returned when a required option is absent or empty.
	ErrMissingOption = errors.New("backend: missing required option")

	// ErrInvalidOption is returned when an option cannot be parsed into its type.
	ErrInvalidOption = errors.New("backend: invalid option")
)
