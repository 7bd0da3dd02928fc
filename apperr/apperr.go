// Package apperr holds the error taxonomy shared by the stores and the HTTP layer.
// Stores wrap these sentinels with detail; callers classify with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation               = errors.New("validation failed")
	ErrNotFound                 = errors.New("not found")
	ErrForbidden                = errors.New("forbidden")
	ErrUnauthenticated          = errors.New("unauthenticated")
	ErrSurveyNotAvailable       = errors.New("survey is not available for responses")
	ErrInvalidQuestionReference = errors.New("invalid question ids provided")
	ErrEmptyReorderRequest      = errors.New("no question ids provided")
	ErrUnknownQuestionType      = fmt.Errorf("%w: unknown question type", ErrValidation)
)

// Validation wraps ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound reports a missing entity by kind and id.
func NotFound(kind string, id any) error {
	return fmt.Errorf("%s %v: %w", kind, id, ErrNotFound)
}
