package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/shini4i/gsbwifi/internal/preflight"
)

var (
	// ErrNetwork covers DNS, connect, timeout and unexpected HTTP status failures.
	ErrNetwork = errors.New("network error")
	// ErrPortalRejected is returned when the login page reappears after submitting.
	ErrPortalRejected = errors.New("portal rejected the login")
	// ErrConfig is returned for missing credentials or endpoints. It is never retried.
	ErrConfig = errors.New("configuration error")
	// ErrParseAmbiguous is returned when an expected action cannot be found on a page.
	ErrParseAmbiguous = errors.New("portal page not understood")
)

// AttemptError is the failure of a single login or logout attempt.
// Reason is the user-facing text; Kind is one of the sentinels above.
type AttemptError struct {
	Kind   error
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *AttemptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *AttemptError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newAttemptError(kind error, reason string, cause error) *AttemptError {
	return &AttemptError{Kind: kind, Reason: reason, Err: cause}
}

// ReasonOf returns the user-facing reason carried by err.
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	var attemptErr *AttemptError
	if errors.As(err, &attemptErr) {
		return attemptErr.Reason
	}
	var pfErr *preflight.Error
	if errors.As(err, &pfErr) {
		return pfErr.Reason
	}
	switch {
	case errors.Is(err, context.Canceled):
		return MsgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	}
	return fmt.Sprintf(MsgUnexpected, err)
}
