package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals an unknown bill id or product code.
	ErrNotFound = errors.New("record not found")
	// ErrConflict signals a duplicate product code or display id.
	ErrConflict = errors.New("record already exists")
	// ErrForbidden signals an attempt to delete the reserved product.
	ErrForbidden = errors.New("operation not allowed")
)

// ValidationError reports input rejected before any write happened.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
