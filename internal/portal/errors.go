package portal

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors at the portal boundary.
var (
	// ErrPortalNotFound means a Discover probe did not recognize the agency.
	ErrPortalNotFound = errors.New("portal not found")
	// ErrAdapterNotFound means no registered adapter family claimed the
	// agency. Fatal for the request; never retried automatically.
	ErrAdapterNotFound = errors.New("no adapter for agency")
	// ErrRecordsNotReady means the portal has acknowledged delivery but the
	// blobs are not yet fetchable.
	ErrRecordsNotReady = errors.New("records not ready")
)

// TransientError wraps a network or timeout failure. Retried with backoff up
// to a configured cap, then escalated.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient portal error during %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// AuthError means the portal rejected the credentials or session. Triggers
// re-authentication; escalates after repeated consecutive failures.
type AuthError struct {
	AgencyID string
	Reason   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for agency %s: %s", e.AgencyID, e.Reason)
}

// SubmissionError is a non-retryable validation rejection from the portal.
// Surfaced for manual correction of scope or credentials.
type SubmissionError struct {
	Reason string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission rejected: %s", e.Reason)
}

// Wrap normalizes an adapter call error: context deadline and cancellation
// failures become TransientError, everything else passes through.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TransientError{Op: op, Err: err}
	}
	return err
}

// IsTransient reports whether an error should be retried with backoff.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
