package webhook

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a subscription or delivery does not exist for the tenant
	ErrNotFound = errors.New("not found")

	// ErrValidation wraps every input validation failure
	ErrValidation = errors.New("validation failed")

	// ErrInvalidOperation is returned when an operation is not allowed in the current state
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrStatusConflict is returned by a conditional status update when the row moved on
	ErrStatusConflict = errors.New("delivery status changed concurrently")

	// ErrTransientDelivery classifies receiver failures worth retrying
	ErrTransientDelivery = errors.New("transient delivery failure")

	// ErrPermanentDelivery classifies receiver rejections that are never retried
	ErrPermanentDelivery = errors.New("permanent delivery failure")
)

// ValidationError describes one rejected input field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

/* DeliveryError is the classified outcome of a failed send
 * StatusCode is zero when no HTTP response was received
 */
type DeliveryError struct {
	Kind       error
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%v: receiver responded %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap exposes both the classification and the underlying cause
func (e *DeliveryError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Retryable reports whether the failure should be handed to the scheduler
func (e *DeliveryError) Retryable() bool {
	return errors.Is(e.Kind, ErrTransientDelivery)
}
