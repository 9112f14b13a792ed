package errors

import (
	"errors"
	"fmt"
)

var (
	ErrMissingMoodleSettings = errors.New("one or more expected Moodle settings is not set")
	ErrDistrictNotFound      = errors.New("school district not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrBuildNotFound         = errors.New("course build not found")
	ErrInvalidSession        = errors.New("invalid or expired session")
	ErrMoodleAPIError        = errors.New("moodle API error")
)

// RetryableError marks a failure the queue should redeliver rather than
// treat as permanent, e.g. a build observed mid-flight by another worker.
type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}

// IsRetryable reports whether err or anything it wraps is a RetryableError.
func IsRetryable(err error) bool {
	var re RetryableError
	return errors.As(err, &re)
}
