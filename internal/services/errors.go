package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPDFNotGenerated is returned when a results sheet is needed but was never built.
	ErrPDFNotGenerated = errors.New("pdf not generated")
)

// ValidationError reports a malformed or incomplete request. Message is
// shown to the client as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// invalid builds a ValidationError.
func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError carries the client message of a missing resource and
// matches ErrNotFound.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(message string) error {
	return &NotFoundError{Message: message}
}

// RenderError wraps a failure while building a PDF.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("error building PDF: %v", e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// lookup converts gorm's missing-record error into a NotFoundError with
// message and wraps anything else.
func lookup(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(message)
	}
	return fmt.Errorf("%s: %w", message, err)
}
