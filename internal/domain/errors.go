package domain

import (
	"errors"
	"fmt"
)

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Transfer errors
	ErrSameAccount   = errors.New("cannot transfer to same account")
	ErrInvalidAmount = errors.New("amount must be positive")

	// Store errors
	ErrStoreFailure = errors.New("store failure")
)

// StoreError describes a failure of the underlying store that is not one of
// the expected business outcomes. It matches ErrStoreFailure with errors.Is.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError wraps err as a store failure for operation op.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrStoreFailure, e.Op)
	}

	return fmt.Sprintf("%s: %s: %v", ErrStoreFailure, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is makes every StoreError match ErrStoreFailure.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

// IsBusinessError reports whether err is an expected transfer outcome
// rather than a store failure.
func IsBusinessError(err error) bool {
	switch {
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrSameAccount),
		errors.Is(err, ErrInvalidAmount):
		return true
	default:
		return false
	}
}
