package model

import (
	"errors"
	"fmt"
)

// Kind classifies an Error. Callers match kinds with errors.Is against the
// sentinel values below.
type Kind string

const (
	KindPuzzleGeneration Kind = "PuzzleGenerationError"
	KindGameplay         Kind = "GameplayError"
	KindInvalidMove      Kind = "InvalidMoveError" // a Gameplay subtype
	KindOutOfResources   Kind = "OutOfResourcesError"
	KindGameState        Kind = "GameStateError"
	KindRegistration     Kind = "RegistrationError"
	KindAuthentication   Kind = "AuthenticationError"
	KindProfile          Kind = "ProfileError"
	KindConfiguration    Kind = "ConfigurationError"
	KindValidation       Kind = "ValidationError"
)

// parent returns the kind this kind specialises, if any
func (k Kind) parent() (Kind, bool) {
	if k == KindInvalidMove {
		return KindGameplay, true
	}
	return "", false
}

// Error is the domain error type. Context carries free-form diagnostics and
// Cause the wrapped lower-level failure, if any.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind or of a parent kind.
// An InvalidMoveError therefore also matches ErrGameplay.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	for k, more := e.Kind, true; more; k, more = k.parent() {
		if k == t.Kind {
			return true
		}
	}
	return false
}

// With returns a copy of e with the key added to its context
func (e *Error) With(key string, value any) *Error {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Error{Kind: e.Kind, Message: e.Message, Context: ctx, Cause: e.Cause}
}

// String renders the error with its kind, used in logs
func (e *Error) String() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError creates an error of the given kind
func NewError(kind Kind, message string, context map[string]any) *Error {
	return &Error{Kind: kind, Message: message, Context: context}
}

// WrapError creates an error of the given kind wrapping cause
func WrapError(kind Kind, message string, cause error, context map[string]any) *Error {
	return &Error{Kind: kind, Message: message, Context: context, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Sentinels for errors.Is matching by kind
var (
	ErrPuzzleGeneration = &Error{Kind: KindPuzzleGeneration}
	ErrGameplay         = &Error{Kind: KindGameplay}
	ErrInvalidMove      = &Error{Kind: KindInvalidMove}
	ErrOutOfResources   = &Error{Kind: KindOutOfResources}
	ErrGameState        = &Error{Kind: KindGameState}
	ErrRegistration     = &Error{Kind: KindRegistration}
	ErrAuthentication   = &Error{Kind: KindAuthentication}
	ErrProfile          = &Error{Kind: KindProfile}
	ErrConfiguration    = &Error{Kind: KindConfiguration}
	ErrValidation       = &Error{Kind: KindValidation}
)

// Plain errors shared across packages
var (
	// ErrNotFound is returned by storage when a key does not exist
	ErrNotFound = errors.New("not found")

	// ErrLockTimeout is returned when a storage lock could not be acquired in time
	ErrLockTimeout = errors.New("lock acquisition timed out")
)
