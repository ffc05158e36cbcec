package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks an unknown ticker or a ticker without a live price.
	ErrNotFound = errors.New("not found")
	// ErrData marks input that no degradation rule can absorb.
	ErrData = errors.New("data error")
	// ErrUnavailable is returned by a data source for an optional table it cannot provide.
	ErrUnavailable = errors.New("unavailable")
)

// NotFoundError is returned when a symbol is unknown or has no live price.
type NotFoundError struct {
	Symbol string
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("symbol %q not found", e.Symbol)
	}
	return fmt.Sprintf("symbol %q not found: %s", e.Symbol, e.Reason)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DataError is returned when a required field is missing or invalid.
type DataError struct {
	Field  string
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *DataError) Unwrap() error { return ErrData }

// NewDataError builds a DataError.
func NewDataError(field, format string, args ...interface{}) error {
	return &DataError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
