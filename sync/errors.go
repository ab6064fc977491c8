// ABOUTME: Typed error values for the sync engine's failure taxonomy
// ABOUTME: Distinguishes auth expiry, remote API failures, and validation skips
package sync

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a referenced local record that has no mirror yet, e.g.
// a webhook for a project that was never synced. Reported, never fatal.
var ErrNotFound = errors.New("record not found")

// AuthExpiredError is raised by an API client collaborator when its
// credential is dead. The scheduler switches on this type (not on message
// substrings) and disables the owning job instead of retrying forever.
type AuthExpiredError struct {
	Source string
}

func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf("%s: authentication expired", e.Source)
}

// IsAuthExpired reports whether err or anything it wraps is an auth expiry.
func IsAuthExpired(err error) bool {
	var authErr *AuthExpiredError
	return errors.As(err, &authErr)
}

// RemoteAPIError is a non-2xx response from an external system. Caught
// per record inside a batch; a failed fetch phase aborts only that pass.
type RemoteAPIError struct {
	Source     string
	StatusCode int
	Message    string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("%s: remote API error %d: %s", e.Source, e.StatusCode, e.Message)
}

// ValidationError marks a record that cannot be written cross-system because
// a required field is missing. The record is skipped with the reason, not
// treated as a failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s (%s)", e.Reason, e.Field)
}
