package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references an id that does
	// not exist in its collection.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for input rejected before any storage
	// access (empty message text, blank names after trim).
	ErrValidation = errors.New("validation failed")

	// ErrSendInFlight is returned when a send is attempted on a chat that
	// is still waiting for its previous response. It is a synchronous
	// rejection, not a storage failure.
	ErrSendInFlight = errors.New("wait for the prior response before sending another message")
)

// StorageError wraps an adapter failure with the operation that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
