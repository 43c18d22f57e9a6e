package errors

import (
	"errors"
	"fmt"
)

// Normalized error kinds surfaced by the gateway and navigation layers.
// The cache and session store never raise these; a miss or an absent session
// is an ordinary return value, not an error.
var (
	// Gateway errors
	ErrTimeout            = errors.New("request timed out")
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrSessionExpired     = errors.New("session expired")
	ErrMalformedResponse  = errors.New("malformed response")

	// Navigation errors
	ErrAccessDenied  = errors.New("access denied")
	ErrUnknownScreen = errors.New("unknown screen")

	// Session errors
	ErrNoSession = errors.New("no active session")
)

// RemoteError is returned when the remote service is reachable but rejects
// the request with a non-401 error status.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote error: HTTP %d", e.Status)
	}
	return fmt.Sprintf("remote error: HTTP %d: %s", e.Status, e.Message)
}

// ValidationError reports caller-supplied data failing a precondition before
// a gateway call is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
