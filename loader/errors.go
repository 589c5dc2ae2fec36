package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatchingFiles is returned when no file under the root matches any pattern.
	ErrNoMatchingFiles = errors.New("no matching files found")

	// ErrNotDirectory is returned when the root is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrInvalidPattern is returned for malformed glob patterns.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrBinaryFile marks a file whose content is not text.
	ErrBinaryFile = errors.New("binary content")

	// ErrInvalidEncoding marks a file that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid utf-8")

	// ErrFileTooLarge marks a file above the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrOutsideRoot marks a match that resolves outside the root, usually via a symlink.
	ErrOutsideRoot = errors.New("path escapes root")
)

// LoadError records why a single file was skipped.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
