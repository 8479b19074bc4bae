package service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart is returned when checking out a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInsufficientPayment is returned when the tendered amount is below the total.
	ErrInsufficientPayment = errors.New("insufficient payment")
)

// ValidationError reports bad user input. The caller can show Message and
// keep the form open.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
