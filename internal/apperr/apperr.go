// Package apperr defines the request-scoped domain errors surfaced to the
// caller with a field name and message list. Infrastructure failures are
// wrapped with fmt.Errorf and stay opaque.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind discriminates the recoverable domain errors.
type Kind int

const (
	// KindInvalidRange means end_time <= start_time.
	KindInvalidRange Kind = iota
	// KindOverlapConflict means the entry collides with an existing one for
	// the same user and day.
	KindOverlapConflict
	// KindNotFound means a referenced task or entry does not exist.
	KindNotFound
)

// Error is a recoverable, request-scoped domain error.
type Error struct {
	Kind     Kind
	Field    string
	Messages []string
	// ConflictID references the colliding time entry for overlap conflicts.
	ConflictID uint
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, strings.Join(e.Messages, "; "))
}

// InvalidRange reports an entry whose end time is not after its start time.
func InvalidRange() *Error {
	return &Error{
		Kind:     KindInvalidRange,
		Field:    "end_time",
		Messages: []string{"start_time must be less than end_time"},
	}
}

// OverlapConflict reports a collision with the entry identified by conflictID.
func OverlapConflict(conflictID uint) *Error {
	return &Error{
		Kind:       KindOverlapConflict,
		Field:      "date",
		Messages:   []string{"This time slot overlaps with another for this day"},
		ConflictID: conflictID,
	}
}

// NotFound reports a missing referenced record, e.g. NotFound("task").
func NotFound(what string) *Error {
	return &Error{
		Kind:     KindNotFound,
		Field:    what,
		Messages: []string{fmt.Sprintf("%s does not exist", what)},
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func IsInvalidRange(err error) bool    { return IsKind(err, KindInvalidRange) }
func IsOverlapConflict(err error) bool { return IsKind(err, KindOverlapConflict) }
func IsNotFound(err error) bool        { return IsKind(err, KindNotFound) }
