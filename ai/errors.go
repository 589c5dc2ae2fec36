package ai

import "errors"

var (
	// ErrEmptySummary indicates the model returned no usable text.
	ErrEmptySummary = errors.New("model returned an empty summary")

	// ErrUnknownProvider indicates Config.Provider names no known backend.
	ErrUnknownProvider = errors.New("unknown provider")
)

// permanentError marks a failure that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent marks err so that callers do not retry it. A nil err stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	if IsPermanent(err) {
		return err
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err, or any error it wraps, was marked with
// Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
