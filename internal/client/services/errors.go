package services

import (
	"errors"

	"github.com/dmitrijs2005/ireporter/internal/client/client"
)

var ErrValidation = errors.New("validation failed")

// ValidationError is a form problem detected before any request was made.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// Message picks the text to show the user for err: the validation message,
// the backend's message, or fallback.
func Message(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return client.MessageFor(err, fallback)
}
