package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrBookNotFound      = errors.New("book not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStockConflict     = errors.New("stock conflict")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrOrderNotFound     = errors.New("order not found")
)

// BookError reports a planning or commit failure tied to a single book.
type BookError struct {
	Kind      error
	BookID    string
	Title     string
	Stock     int
	Requested int
}

func (e *BookError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrBookNotFound):
		return fmt.Sprintf("book %s not found", e.BookID)
	case errors.Is(e.Kind, ErrInsufficientStock):
		return fmt.Sprintf("not enough stock for %q (%s): requested %d, stock %d", e.Title, e.BookID, e.Requested, e.Stock)
	default:
		return fmt.Sprintf("%v: book %s", e.Kind, e.BookID)
	}
}

func (e *BookError) Unwrap() error { return e.Kind }

// Invalid wraps a caller-correctable input problem.
func Invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, reason)
}

// Unavailable wraps an infrastructure failure, keeping the cause inspectable.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
