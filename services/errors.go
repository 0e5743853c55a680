// Package services implements the medstore business rules on top of the
// repository layer.
package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMobile      = errors.New("invalid mobile number, must be 10 digits")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrOTPNotSent         = errors.New("failed to send OTP")
	ErrPhoneAuthDisabled  = errors.New("phone verification method disabled")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrIdentityMismatch   = errors.New("mobile number does not match verified identity")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidLocation    = errors.New("invalid coordinates")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrEmptyOrder         = errors.New("order must have at least one item")
	ErrNoStore            = errors.New("store is required")
	ErrInvalidCategory    = errors.New("invalid category")
)

// NotFoundError names the kind and id of a missing document
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// InsufficientStockError is returned when an order line asks for more
// than the medicine has on hand.
type InsufficientStockError struct {
	MedicineID string
	Name       string
	Requested  int
	Available  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s", e.Name)
}

// ValidationError carries a client-facing message for a rejected input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
