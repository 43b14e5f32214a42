package perfdata

import "errors"

// Domain errors for the perfdata package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, perfdata.ErrInvalidRecord) {
//	    // reject the input file
//	}
var (
	// ErrInvalidRecord is returned when the input is not a valid record.
	ErrInvalidRecord = errors.New("perfdata: invalid record")

	// ErrMissingHost is returned when a record has no host name.
	ErrMissingHost = errors.New("perfdata: missing host name")

	// ErrMissingLabel is returned when a metric entry has an empty label.
	ErrMissingLabel = errors.New("perfdata: missing metric label")
)
