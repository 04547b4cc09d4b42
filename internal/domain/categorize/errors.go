package categorize

import "errors"

var (
	// ErrUpstream is returned when the classification call fails after
	// the credit has been reserved
	ErrUpstream = errors.New("classification failed")

	// ErrNotConfigured is returned when the classifier is missing
	// server-side configuration
	ErrNotConfigured = errors.New("classifier not configured")
)
