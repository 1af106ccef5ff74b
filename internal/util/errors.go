package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCourseNotFound     = errors.New("course not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrRetryLimitReached  = errors.New("retry limit reached for this quiz")
)

// ValidationError marks malformed input rejected before any write.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
