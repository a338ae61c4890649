package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an expected business failure so the HTTP layer can map it
// to a status code without inspecting message strings.
type Kind int

const (
	// KindNotFound means the referenced entity does not resolve, or an
	// invitation is no longer in a respondable state.
	KindNotFound Kind = iota + 1
	// KindPermissionDenied means the actor's role or ownership is insufficient.
	KindPermissionDenied
	// KindConflict means the request collides with existing state (duplicate
	// name, existing member, pending invitation).
	KindConflict
	// KindExpired means an invitation was past its expiry when responded to.
	KindExpired
	// KindInvalidArgument means the request shape itself is invalid.
	KindInvalidArgument
)

// Error is a business failure returned by service operations. Infrastructure
// failures (store unavailable) are never wrapped in Error; they propagate as
// plain wrapped errors and surface as 500s.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with the given kind and message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func PermissionDenied(format string, args ...interface{}) *Error {
	return New(KindPermissionDenied, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

func Expired(format string, args ...interface{}) *Error {
	return New(KindExpired, format, args...)
}

func InvalidArgument(format string, args ...interface{}) *Error {
	return New(KindInvalidArgument, format, args...)
}

// KindOf returns the kind of err, or 0 if err is not a business failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err is a business failure of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
