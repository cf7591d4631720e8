// Package memory is the reference in-process Driver: a mutex-guarded map
// from key to breaker.Record. It is modeled on the teacher repository's
// drivers/memory cache driver (same mutex-protected map plus Config/Metrics
// shape), generalized from caching a value blob to owning a circuit
// breaker's three-field record.
package memory

import (
	"context"
	"sync"
	"time"

	breaker "github.com/donnigundala/dg-breaker"
	"github.com/rs/zerolog"
)

// Driver is an in-memory, single-process breaker.Driver. Every operation
// runs synchronously under an internal mutex — unlike the reference
// Python dict, Go gives no incidental thread-safety to map mutation, so one
// is added explicitly here (spec.md §5 flags this as a requirement for any
// reimplementation).
type Driver struct {
	mu      sync.Mutex
	state   map[string]breaker.Record
	expires time.Duration // 0 disables TTL
	logger  zerolog.Logger
	metrics *Metrics
}

// Config configures the in-memory driver.
type Config struct {
	// Expires is the TTL checked by Expire. 0 disables TTL; expiry is
	// then never enforced (matching the driver contract: Expire is only
	// advisory and only this backend needs it to do anything).
	Expires time.Duration

	// Logger overrides the default structured logger. Optional.
	Logger *zerolog.Logger
}

// NewDriver creates a new in-memory breaker driver.
func NewDriver(cfg Config) *Driver {
	return &Driver{
		state:   make(map[string]breaker.Record),
		expires: cfg.Expires,
		logger:  loggerFor(cfg.Logger),
		metrics: newMetrics(),
	}
}

func loggerFor(override *zerolog.Logger) zerolog.Logger {
	if override != nil {
		return *override
	}
	return zerolog.Nop()
}

// Now returns the current wall-clock time in fractional seconds.
func (d *Driver) Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func (d *Driver) defaultRecord() breaker.Record {
	return breaker.Record{Failures: 0, Status: breaker.StatusClosed, Checkin: d.Now()}
}

// Load returns the current record for key, or ErrBackendKeyNotFound if
// absent.
func (d *Driver) Load(ctx context.Context, key string) (breaker.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.state[key]
	if !ok {
		d.metrics.RecordMiss()
		d.logger.Debug().Str("key", key).Msg("load miss")
		return breaker.Record{}, breaker.ErrBackendKeyNotFound
	}
	d.metrics.RecordHit()
	return rec, nil
}

// New persists and returns a default record for key.
func (d *Driver) New(ctx context.Context, key string) (breaker.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec := d.defaultRecord()
	d.state[key] = rec
	d.metrics.RecordNew()
	d.logger.Debug().Str("key", key).Msg("created new record")
	return rec, nil
}

// Update applies a partial write, creating the record from defaults first
// if key is unknown.
func (d *Driver) Update(ctx context.Context, key string, fields breaker.Fields) error {
	if fields.IsZero() {
		return breaker.ErrInvalidArguments
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.state[key]
	if !ok {
		rec = d.defaultRecord()
	}

	if fields.Failures != nil {
		rec.Failures = *fields.Failures
	}
	if fields.Status != nil {
		rec.Status = *fields.Status
	}
	if fields.Checkin != nil {
		rec.Checkin = *fields.Checkin
	}

	d.state[key] = rec
	d.metrics.RecordUpdate()
	return nil
}

// Failure raises ErrBackendKeyNotFound on a missing key; it never creates a
// record. The Redis driver behaves the same way, and the breaker always
// calls Load (and New on a miss) before Failure, so this path is not hit in
// practice.
func (d *Driver) Failure(ctx context.Context, key string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.state[key]
	if !ok {
		return 0, breaker.ErrBackendKeyNotFound
	}
	rec.Failures++
	d.state[key] = rec
	d.metrics.RecordFailure()
	return rec.Failures, nil
}

// Open sets status=OPEN, checkin=now.
func (d *Driver) Open(ctx context.Context, key string) error {
	status := breaker.StatusOpen
	checkin := d.Now()
	d.metrics.RecordOpen()
	d.logger.Info().Str("key", key).Msg("opening")
	return d.Update(ctx, key, breaker.Fields{Status: &status, Checkin: &checkin})
}

// Close sets status=CLOSED, failures=0, checkin=now.
func (d *Driver) Close(ctx context.Context, key string) error {
	status := breaker.StatusClosed
	failures := 0
	checkin := d.Now()
	d.metrics.RecordClose()
	d.logger.Info().Str("key", key).Msg("closing")
	return d.Update(ctx, key, breaker.Fields{Status: &status, Failures: &failures, Checkin: &checkin})
}

// Reset is equivalent to Close for this backend.
func (d *Driver) Reset(ctx context.Context, key string) error {
	return d.Close(ctx, key)
}

// Delete removes the record for key, failing with ErrBackendKeyNotFound if
// absent.
func (d *Driver) Delete(ctx context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.state[key]; !ok {
		return breaker.ErrBackendKeyNotFound
	}
	delete(d.state, key)
	d.metrics.RecordDelete()
	return nil
}

// Expire deletes key if its checkin is older than the configured TTL. This
// is the one backend where Expire does real work — there is no native TTL
// to lean on (spec.md §4.1, §9).
func (d *Driver) Expire(ctx context.Context, key string, checkin float64) error {
	if d.expires <= 0 {
		return nil
	}
	if d.Now()-checkin < d.expires.Seconds() {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.state[key]; ok {
		delete(d.state, key)
		d.metrics.RecordExpire()
	}
	return nil
}

// Stats returns a snapshot of this driver's operation counters.
func (d *Driver) Stats() Stats {
	return d.metrics.Stats()
}

var _ breaker.Driver = (*Driver)(nil)
