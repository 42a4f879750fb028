// Package apperr defines the error taxonomy shared by the graph engine, its
// stores and its callers.
//
// Every error returned across a package boundary unwraps to exactly one of the
// kind sentinels below, so callers branch with errors.Is. NotFound,
// Validation, Conflict and CircularDependency are expected conditions meant to
// be shown to the user. Storage wraps lower-layer failures and is opaque.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrCircularDependency = errors.New("circular dependency")
	ErrStorage            = errors.New("storage failure")
)

// Error pairs a kind sentinel with a human-readable message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

// NotFoundf builds an ErrNotFound error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Validationf builds an ErrValidation error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

// ConflictError reports that a prerequisite edge already exists.
type ConflictError struct {
	ExistingEdgeID string
	Dependent      string
	Prerequisite   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s already requires %s (edge %s)",
		ErrConflict.Error(), e.Dependent, e.Prerequisite, e.ExistingEdgeID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// CycleError reports that an edge would close a cycle. Path holds the
// human-readable labels of the nodes forming it, in traversal order.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return ErrCircularDependency.Error()
	}
	return fmt.Sprintf("%s: %s", ErrCircularDependency.Error(), strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCircularDependency }

// StorageError wraps a failure from the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

// Unwrap exposes both the storage kind and the underlying cause.
func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// Storage wraps err as a storage failure of the named operation. A nil err
// yields nil, and errors that already carry a kind are returned unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsKnown(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsKnown reports whether err already unwraps to one of the taxonomy kinds.
func IsKnown(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrCircularDependency, ErrStorage} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
