package store

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt marks a stored blob that could not be decoded. List and
	// ProfileStore.Load treat it as empty data and only log it.
	ErrCorrupt = errors.New("stored data is corrupt")

	// ErrRecordNotFound is returned by Get for unknown ids. Update and Delete
	// treat an unknown id as a no-op.
	ErrRecordNotFound = errors.New("saved document not found")

	// ErrIDGeneration is returned when no record id could be generated.
	ErrIDGeneration = errors.New("could not generate record id")
)

// StoreError wraps a persistence failure with the operation that hit it.
type StoreError struct {
	// Op is the operation that failed (e.g., "Create", "Update").
	Op string

	// Err is the underlying error.
	Err error

	// Key is the storage key being read or written.
	Key string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store: %s failed (key: %s): %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("store: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &StoreError{Op: op, Key: key, Err: err}
}
