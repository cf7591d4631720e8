package breaker

import (
	"errors"
	"fmt"
)

// The error taxonomy is closed: every error a Driver or Breaker raises is one
// of these sentinels, or wraps one of them so that errors.Is still matches.
var (
	// ErrBreakerException is the taxonomy root. It is never returned
	// directly; it exists so callers can group the whole family with a
	// single errors.Is check if they want to.
	ErrBreakerException = errors.New("breaker: circuit breaker error")

	// ErrBackendKeyNotFound is returned by a driver's Load, Delete, or
	// Failure when the key is absent and the backend has no
	// create-on-write semantics for that operation. The Breaker recovers
	// this on Load by calling New.
	ErrBackendKeyNotFound = fmt.Errorf("%w: key not found", ErrBreakerException)

	// ErrBackendKeyHasExpired is reserved for drivers that distinguish
	// expiry from plain absence. Semantically equivalent to
	// ErrBackendKeyNotFound.
	ErrBackendKeyHasExpired = fmt.Errorf("%w: key has expired", ErrBreakerException)

	// ErrCircuitBreakerOpen is returned when admission is denied: the
	// breaker is OPEN and the cooldown (plus jitter) has not elapsed.
	ErrCircuitBreakerOpen = fmt.Errorf("%w: circuit breaker is open", ErrBreakerException)

	// ErrInvalidArguments is returned by Update when none of failures,
	// status, or checkin were supplied, and by driver constructors when
	// required configuration is missing.
	ErrInvalidArguments = fmt.Errorf("%w: invalid arguments", ErrBreakerException)
)

// BackendError reports that the shared backing store itself is unhealthy
// (network failure, server error, and the like). It is deliberately a
// subtype of ErrCircuitBreakerOpen — by design, the library wants callers
// who handle "breaker refused the call" to also handle "the breaker's store
// is down" without a second error clause. errors.Is(err, ErrCircuitBreakerOpen)
// is true for any *BackendError.
type BackendError struct {
	// Driver names the backend that failed (e.g. "redis", "memory").
	Driver string
	// Err is the underlying error returned by the backend client.
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("breaker: distributed backend problem (%s): %v", e.Driver, e.Err)
}

// Unwrap exposes both the taxonomy parent and the underlying cause, so
// errors.Is(err, ErrCircuitBreakerOpen) and errors.Is(err, someRedisErr) both
// succeed against the same *BackendError.
func (e *BackendError) Unwrap() []error {
	return []error{ErrCircuitBreakerOpen, e.Err}
}

// NewBackendError wraps a transient backend failure as a
// DistributedBackendProblem. Drivers should funnel every client error
// through this at a single call site.
func NewBackendError(driver string, err error) error {
	return &BackendError{Driver: driver, Err: err}
}

// IsCircuitBreakerOpen reports whether err is ErrCircuitBreakerOpen or a
// *BackendError wrapping it — i.e. whether the caller should treat the
// downstream as unavailable right now.
func IsCircuitBreakerOpen(err error) bool {
	return errors.Is(err, ErrCircuitBreakerOpen)
}

// IsBackendKeyNotFound reports whether err is ErrBackendKeyNotFound. The
// Breaker's Load step uses this to decide whether to fall back to New.
func IsBackendKeyNotFound(err error) bool {
	return errors.Is(err, ErrBackendKeyNotFound)
}
