package newsletter

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError reports the first constraint a value violates.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError is returned when an operation references a newsletter or post
// that does not exist.
type NotFoundError struct {
	Kind string // "newsletter" or "post"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError wraps a failure of the underlying store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PartialOrderingError is returned when the second write of a position swap
// failed after the first one was already stored. Saved keeps its new
// position; Failed keeps its old one. Nothing is rolled back.
type PartialOrderingError struct {
	Saved  int64
	Failed int64
	Err    error
}

func (e *PartialOrderingError) Error() string {
	return fmt.Sprintf("position swap incomplete: post %d saved, post %d failed: %v", e.Saved, e.Failed, e.Err)
}

func (e *PartialOrderingError) Unwrap() error {
	return e.Err
}
