package domain

import (
	"errors"
	"fmt"
)

// ValidationReason classifies why a write was rejected.
type ValidationReason string

const (
	ReasonMissingField     ValidationReason = "MissingField"
	ReasonInvalidDateOrder ValidationReason = "InvalidDateOrder"
	ReasonOutOfRange       ValidationReason = "OutOfRange"
)

// ValidationError is returned when a PO fails validation. Nothing is written.
type ValidationError struct {
	Reason  ValidationReason
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed (%s): %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("validation failed (%s) on %s: %s", e.Reason, e.Field, e.Message)
}

// NotFoundError is returned when no PO exists with the given id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("purchase order %d not found", e.ID)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// AsValidation returns the wrapped ValidationError, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
