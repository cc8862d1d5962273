package critique

import (
	"errors"
	"fmt"
)

// ErrNoAPIKey is returned by Client when it has no credentials to send.
var ErrNoAPIKey = errors.New("critique: no API key configured")

// HTTPError represents a non-200 response from the collaborator.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("critique: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for rate limits (429) and server errors (5xx).
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsAuth returns true when the key was rejected.
func (e *HTTPError) IsAuth() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// MalformedError means the collaborator answered, but not with something
// the game can use.
type MalformedError struct {
	Op     string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("critique: malformed %s response: %s", e.Op, e.Reason)
}

func malformed(op, format string, args ...any) error {
	return &MalformedError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
