package domain

import (
	"errors"
	"fmt"
)

// Domain errors (no external dependencies).
var (
	ErrNotFound          = errors.New("resource not found")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicate         = errors.New("duplicate resource")
	ErrConflict          = errors.New("conflict with current state")
	ErrInvalidOperation  = errors.New("operation not allowed in current state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrIntegrityFault    = errors.New("ledger integrity fault")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// IntegrityFault reports a product whose cached quantity disagrees with the
// sum of its ledger deltas. It wraps ErrIntegrityFault so callers can match
// with errors.Is.
type IntegrityFault struct {
	ProductID string
	SKU       string
	Cached    int64
	Computed  int64
}

func (f *IntegrityFault) Error() string {
	return fmt.Sprintf("integrity fault on product %s (%s): cached quantity %d, ledger sum %d",
		f.SKU, f.ProductID, f.Cached, f.Computed)
}

func (f *IntegrityFault) Unwrap() error { return ErrIntegrityFault }
