// Package source defines how events reach the occurrence engine. A Source
// hands out snapshots of its events and notifies subscribers when the
// collection changes.
package source

import (
	"errors"
	"fmt"

	"github.com/Tinnci/merkuro-github-fork/model"
)

// Source is a read-only event collection with change notifications.
type Source interface {
	// Events returns a snapshot of every event. Callers may keep and modify
	// the returned slice.
	Events() []model.Event
	// Subscribe registers fn for change notifications and returns a function
	// that removes it.
	Subscribe(fn func(Change)) (cancel func())
}

// ChangeKind describes what happened to the collection.
type ChangeKind int

const (
	Reset ChangeKind = iota
	Added
	Removed
	Updated
)

// String provides a human-readable representation of the ChangeKind.
func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "Added"
	case Removed:
		return "Removed"
	case Updated:
		return "Updated"
	default:
		return "Reset"
	}
}

// Change is delivered to subscribers after the collection changed.
type Change struct {
	Kind ChangeKind
	UIDs []string // empty for Reset
}

// Error types
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
)

// Error represents a source-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsType reports whether err is a *Error of type t.
func IsType(err error, t ErrorType) bool {
	var se *Error
	return errors.As(err, &se) && se.Type == t
}
