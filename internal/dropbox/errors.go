package dropbox

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested path does not exist.
// Gallery lookups treat this as an expected state, not a failure.
var ErrNotFound = errors.New("dropbox: path not found")

// AuthError indicates missing or rejected credentials. It is not retryable
// within a single user action.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "dropbox: authentication failed: " + e.Reason
}

// ConnectivityError wraps a transport-level failure (DNS, TLS, timeouts,
// unexpected server errors). Not retryable within a single user action.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("dropbox: %s failed: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// ConflictError is returned by Upload when an expected revision was supplied
// and the file changed underneath the writer.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return "dropbox: write conflict on " + e.Path
}

// IsNotFound returns true if the error indicates a missing path.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAuthError returns true if the error indicates bad or missing credentials.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsConflict returns true if the error indicates a revision mismatch on write.
func IsConflict(err error) bool {
	var conflictErr *ConflictError
	return errors.As(err, &conflictErr)
}
