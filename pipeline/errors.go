package pipeline

import "errors"

var (
	// ErrSummarizerRequired is returned when no summarizer is provided.
	ErrSummarizerRequired = errors.New("summarizer required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
