package store

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a referenced row does not exist.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

func notFound(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, Ref: fmt.Sprintf("%d", id)}
}

// ConflictError reports a uniqueness violation: duplicate word text,
// duplicate (word, version), or duplicate edge.
type ConflictError struct {
	Entity string
	Ref    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Entity, e.Ref)
}

// StateError reports an invalid task state transition. The store is left
// unchanged when it is returned.
type StateError struct {
	TaskID int64
	Status string
	Op     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s task %d in status %q", e.Op, e.TaskID, e.Status)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// IsState reports whether err is a StateError.
func IsState(err error) bool {
	var e *StateError
	return errors.As(err, &e)
}
