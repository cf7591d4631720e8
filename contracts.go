package breaker

import "context"

// Status is the persisted state of a breaker record. The integer encoding
// (0=OPEN, 1=CLOSED) is preserved verbatim from the reference implementation
// for wire compatibility with existing deployments — do not renumber.
type Status int

const (
	StatusOpen   Status = 0
	StatusClosed Status = 1
)

// String renders the status the way Breaker.String does: CLOSED, OPEN, or
// UNKNOWN for any out-of-range value (which only happens if a driver
// implementation corrupts the stored status).
func (s Status) String() string {
	switch s {
	case StatusClosed:
		return "CLOSED"
	case StatusOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// Record is the durable per-key state a Driver owns: a failure count, a
// status, and the wall-clock time (fractional seconds) it was last written.
type Record struct {
	Failures int
	Status   Status
	Checkin  float64
}

// Fields is a partial update: at least one of Failures, Status, or Checkin
// must be non-nil, or Update must fail with ErrInvalidArguments. Fields left
// nil are left unchanged by the driver.
type Fields struct {
	Failures *int
	Status   *Status
	Checkin  *float64
}

// IsZero reports whether no field was supplied.
func (f Fields) IsZero() bool {
	return f.Failures == nil && f.Status == nil && f.Checkin == nil
}

// Ptr is a small convenience for building Fields literals, e.g.
// Fields{Failures: breaker.Ptr(0), Status: breaker.Ptr(StatusClosed)}.
func Ptr[T any](v T) *T {
	return &v
}

// Driver is the pluggable shared-state backend contract. The Breaker depends
// only on this interface; drivers/memory and drivers/redis are the reference
// implementations.
//
// Any backend-transient condition (network failure, server error) MUST be
// surfaced as a *BackendError so it satisfies errors.Is(err,
// ErrCircuitBreakerOpen) — a broken breaker store behaves exactly like an
// OPEN breaker from the caller's point of view.
type Driver interface {
	// Load returns the current record for key, or ErrBackendKeyNotFound
	// if absent.
	Load(ctx context.Context, key string) (Record, error)

	// New persists and returns a default record (failures=0,
	// status=StatusClosed, checkin=Now()). If the driver has a
	// configured TTL it MUST be armed here.
	New(ctx context.Context, key string) (Record, error)

	// Update applies a partial write. fields must not be the zero value
	// or Update fails with ErrInvalidArguments. If key does not exist,
	// the driver creates it from defaults first.
	Update(ctx context.Context, key string, fields Fields) error

	// Failure atomically increments the failure counter for key and
	// returns the new value.
	Failure(ctx context.Context, key string) (int, error)

	// Open sets status=StatusOpen, checkin=Now().
	Open(ctx context.Context, key string) error

	// Close sets status=StatusClosed, failures=0, checkin=Now().
	Close(ctx context.Context, key string) error

	// Reset is equivalent to Close; if a TTL is configured it is
	// re-armed.
	Reset(ctx context.Context, key string) error

	// Delete removes the record for key.
	Delete(ctx context.Context, key string) error

	// Expire is an advisory expiry check: in backends without native
	// TTL, if Now()-checkin >= the configured TTL, the record is
	// deleted. In backends with native TTL this is a no-op, since the
	// store enforces expiry itself.
	Expire(ctx context.Context, key string, checkin float64) error

	// Now returns the current wall-clock time in fractional seconds.
	// Exposed so the Breaker reads time through the driver rather than
	// calling time.Now() itself.
	Now() float64
}
