package repositories

import "errors"

var (
	// ErrNotFound is wrapped by every repository when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrOutOfStock is returned when a stock adjustment would go below zero.
	ErrOutOfStock = errors.New("insufficient stock")
	// ErrConflict is returned when a conditional update finds the record no longer in the
	// state the caller read.
	ErrConflict = errors.New("record was modified concurrently")
)
