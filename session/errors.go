package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for session operations.
var (
	// ErrNotConnected indicates a command was issued without an open link.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected indicates Connect was called while connected.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrReaderStopped is the cause recorded when the line reader ends
	// without reporting an I/O error.
	ErrReaderStopped = errors.New("line reader stopped")
)

// ConnectionError reports a port that could not be opened. The session
// stays disconnected.
type ConnectionError struct {
	Port  string
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Port, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// IOError reports a read or write failure on an open link. It always ends
// the session. Write failures are returned by the command that caused them;
// read failures are kept for Session.Err.
type IOError struct {
	Op      string // "read" or "write"
	Command string // the command being written, if any
	Cause   error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("serial %s failed for '%s': %v", e.Op, e.Command, e.Cause)
	}
	return fmt.Sprintf("serial %s failed: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *IOError) Unwrap() error {
	return e.Cause
}

// UserActionError reports an action the user cannot take in the current
// state, e.g. initiating a trade before marking a Pokémon. Nothing changes.
type UserActionError struct {
	Action string
	Reason string
}

// Error implements the error interface.
func (e *UserActionError) Error() string {
	return e.Reason
}

func newUserActionError(action, reason string) error {
	return &UserActionError{Action: action, Reason: reason}
}

// IsUserActionError reports whether err is, or wraps, a *UserActionError.
func IsUserActionError(err error) bool {
	var uae *UserActionError
	return errors.As(err, &uae)
}
