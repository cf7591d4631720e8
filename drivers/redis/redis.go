// Package redis is the shared-state breaker.Driver backed by Redis: the
// record for a key lives in a Redis hash, so every process racing on the
// same key sees (and mutates) one authoritative copy. Modeled on the
// teacher repository's drivers/redis cache driver (same prefixing,
// client-wrapping, and constructor shape), generalized from caching
// arbitrary blobs to the breaker's three-field record, and fronted by a
// connGuard so a down Redis fails fast locally instead of timing out on
// every single call.
package redis

import (
	"context"
	"strconv"
	"time"

	breaker "github.com/donnigundala/dg-breaker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	fieldFailures = "failures"
	fieldStatus   = "status"
	fieldCheckin  = "checkin"
)

// Driver is a Redis-backed breaker.Driver.
type Driver struct {
	client  *redis.Client
	prefix  string
	expires time.Duration
	guard   *connGuard
	logger  zerolog.Logger
	metrics *metrics
}

// NewDriver creates a Redis breaker driver from a StoreConfig-style options
// map, the same entry point shape as the teacher's redis.NewDriver(cache.StoreConfig).
func NewDriver(options map[string]interface{}) (*Driver, error) {
	cfg, err := DecodeConfig(options)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewDriverWithClient(client, cfg), nil
}

// NewDriverWithClient builds a driver around an already-constructed Redis
// client, for callers that manage the client's lifecycle themselves (shared
// pools, test doubles such as miniredis).
func NewDriverWithClient(client *redis.Client, cfg Config) *Driver {
	return &Driver{
		client:  client,
		prefix:  cfg.Prefix,
		expires: cfg.Expires,
		guard:   newConnGuard(cfg.GuardThreshold, cfg.GuardCooldown),
		logger:  zerolog.Nop(),
		metrics: newMetrics(),
	}
}

// WithLogger overrides the driver's structured logger.
func (d *Driver) WithLogger(logger zerolog.Logger) *Driver {
	d.logger = logger
	return d
}

// prefixKey namespaces key under this driver's prefix. Per spec.md §4.3 the
// record lives at exactly prefix+key — no separator is inserted here, so a
// caller wanting "service:key" passes prefix "service:" (DefaultConfig's
// "rcb:" already carries its own trailing colon).
func (d *Driver) prefixKey(key string) string {
	return d.prefix + key
}

// catch funnels a Redis client error through the guard and wraps it as a
// breaker.BackendError, the single call site every method routes through
// (spec.md §4.1: "any network/backend failure surfaces as
// DistributedBackendProblem").
func (d *Driver) catch(err error) error {
	d.guard.report(err)
	if err == nil {
		return nil
	}
	d.logger.Error().Err(err).Msg("redis backend error")
	return breaker.NewBackendError("redis", err)
}

func (d *Driver) guardedOrFail() error {
	if !d.guard.allow() {
		return breaker.NewBackendError("redis", ErrGuardOpen)
	}
	return nil
}

// Now returns the current wall-clock time in fractional seconds, matching
// the memory driver's clock so either backend can be swapped under one
// Breaker.
func (d *Driver) Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// Load fetches the hash for key and decodes it into a Record.
// ErrBackendKeyNotFound is returned when the hash does not exist.
func (d *Driver) Load(ctx context.Context, key string) (breaker.Record, error) {
	if err := d.guardedOrFail(); err != nil {
		return breaker.Record{}, err
	}

	values, err := d.client.HGetAll(ctx, d.prefixKey(key)).Result()
	if err != nil {
		d.metrics.recordMiss()
		return breaker.Record{}, d.catch(err)
	}
	d.guard.report(nil)

	if len(values) == 0 {
		d.metrics.recordMiss()
		return breaker.Record{}, breaker.ErrBackendKeyNotFound
	}

	rec, err := decodeRecord(values)
	if err != nil {
		return breaker.Record{}, breaker.NewBackendError("redis", err)
	}
	d.metrics.recordHit()
	return rec, nil
}

// New persists and returns a default record for key.
func (d *Driver) New(ctx context.Context, key string) (breaker.Record, error) {
	if err := d.guardedOrFail(); err != nil {
		return breaker.Record{}, err
	}

	rec := breaker.Record{Failures: 0, Status: breaker.StatusClosed, Checkin: d.Now()}
	if err := d.writeRecord(ctx, key, rec); err != nil {
		return breaker.Record{}, err
	}
	d.metrics.recordNew()
	return rec, nil
}

// Update applies a partial write, creating the record from defaults first
// if key is unknown — the Redis hash's own HSet semantics merge fields in
// naturally, but a brand-new key still needs the untouched fields to carry
// sane defaults.
func (d *Driver) Update(ctx context.Context, key string, fields breaker.Fields) error {
	if fields.IsZero() {
		return breaker.ErrInvalidArguments
	}
	if err := d.guardedOrFail(); err != nil {
		return err
	}

	args := make([]interface{}, 0, 6)
	if fields.Failures != nil {
		args = append(args, fieldFailures, *fields.Failures)
	}
	if fields.Status != nil {
		args = append(args, fieldStatus, int(*fields.Status))
	}
	if fields.Checkin != nil {
		args = append(args, fieldCheckin, strconv.FormatFloat(*fields.Checkin, 'f', -1, 64))
	}

	pk := d.prefixKey(key)
	pipe := d.client.TxPipeline()
	pipe.HSetNX(ctx, pk, fieldFailures, 0)
	pipe.HSetNX(ctx, pk, fieldStatus, int(breaker.StatusClosed))
	pipe.HSetNX(ctx, pk, fieldCheckin, strconv.FormatFloat(d.Now(), 'f', -1, 64))
	pipe.HSet(ctx, pk, args...)
	// No Expire here: spec.md §4.3 arms the TTL only on New and Reset,
	// not on every write — Open/Close/a raw Update must not keep
	// resetting the clock, or a record that's repeatedly opened and
	// closed would never lapse.
	_, err := pipe.Exec(ctx)
	if err != nil {
		return d.catch(err)
	}
	d.guard.report(nil)
	d.metrics.recordUpdate()
	return nil
}

// armExpiry re-arms this key's TTL, the explicit step Reset needs since it
// otherwise only calls Update/Close which no longer touch expiry.
func (d *Driver) armExpiry(ctx context.Context, key string) error {
	if d.expires <= 0 {
		return nil
	}
	if err := d.client.Expire(ctx, d.prefixKey(key), d.expires).Err(); err != nil {
		return d.catch(err)
	}
	d.guard.report(nil)
	return nil
}

func (d *Driver) writeRecord(ctx context.Context, key string, rec breaker.Record) error {
	pk := d.prefixKey(key)
	pipe := d.client.TxPipeline()
	pipe.HSet(ctx, pk,
		fieldFailures, rec.Failures,
		fieldStatus, int(rec.Status),
		fieldCheckin, strconv.FormatFloat(rec.Checkin, 'f', -1, 64),
	)
	if d.expires > 0 {
		pipe.Expire(ctx, pk, d.expires)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return d.catch(err)
	}
	d.guard.report(nil)
	return nil
}

// Failure atomically increments the failures field via HINCRBY — the one
// operation this backend can do that the in-memory driver cannot: no
// read-modify-write race between concurrent processes incrementing the
// same key. A key whose hash does not exist yet is not created: Failure
// returns ErrBackendKeyNotFound, the same as the in-memory driver.
func (d *Driver) Failure(ctx context.Context, key string) (int, error) {
	if err := d.guardedOrFail(); err != nil {
		return 0, err
	}

	pk := d.prefixKey(key)
	exists, err := d.client.Exists(ctx, pk).Result()
	if err != nil {
		return 0, d.catch(err)
	}
	if exists == 0 {
		d.guard.report(nil)
		return 0, breaker.ErrBackendKeyNotFound
	}

	n, err := d.client.HIncrBy(ctx, pk, fieldFailures, 1).Result()
	if err != nil {
		return 0, d.catch(err)
	}
	d.guard.report(nil)
	d.metrics.recordFailure()
	return int(n), nil
}

// Open sets status=OPEN, checkin=now.
func (d *Driver) Open(ctx context.Context, key string) error {
	status := breaker.StatusOpen
	checkin := d.Now()
	if err := d.Update(ctx, key, breaker.Fields{Status: &status, Checkin: &checkin}); err != nil {
		return err
	}
	d.metrics.recordOpen()
	d.logger.Info().Str("key", key).Msg("opening")
	return nil
}

// Close sets status=CLOSED, failures=0, checkin=now.
func (d *Driver) Close(ctx context.Context, key string) error {
	status := breaker.StatusClosed
	failures := 0
	checkin := d.Now()
	if err := d.Update(ctx, key, breaker.Fields{Status: &status, Failures: &failures, Checkin: &checkin}); err != nil {
		return err
	}
	d.metrics.recordClose()
	d.logger.Info().Str("key", key).Msg("closing")
	return nil
}

// Reset is equivalent to Close, plus re-arming the TTL — the reference
// RedisDriver.reset calls Driver.reset(...) and then _set_expiry(...)
// explicitly, since reset (unlike a bare Open/Close/Update) is one of the
// two points (with New) spec.md §4.3 requires the TTL to be armed at.
func (d *Driver) Reset(ctx context.Context, key string) error {
	if err := d.Close(ctx, key); err != nil {
		return err
	}
	return d.armExpiry(ctx, key)
}

// Delete removes the hash for key. Unlike the in-memory driver, deleting an
// absent key is a silent no-op here — Redis's DEL already has that
// semantics natively, so there is nothing to special-case (spec.md §4.1).
func (d *Driver) Delete(ctx context.Context, key string) error {
	if err := d.guardedOrFail(); err != nil {
		return err
	}

	n, err := d.client.Del(ctx, d.prefixKey(key)).Result()
	if err != nil {
		return d.catch(err)
	}
	d.guard.report(nil)
	if n > 0 {
		d.metrics.recordDelete()
	}
	return nil
}

// Expire is a no-op: the TTL is attached natively via Redis EXPIRE, armed
// only by writeRecord (New) and armExpiry (Reset) per spec.md §4.3, so there
// is nothing left for the breaker's advisory expiry check to do here.
func (d *Driver) Expire(ctx context.Context, key string, checkin float64) error {
	return nil
}

// CloseClient releases the underlying Redis client's connections.
func (d *Driver) CloseClient() error {
	return d.client.Close()
}

func decodeRecord(values map[string]string) (breaker.Record, error) {
	failures, err := strconv.Atoi(values[fieldFailures])
	if err != nil {
		return breaker.Record{}, err
	}
	status, err := strconv.Atoi(values[fieldStatus])
	if err != nil {
		return breaker.Record{}, err
	}
	checkin, err := strconv.ParseFloat(values[fieldCheckin], 64)
	if err != nil {
		return breaker.Record{}, err
	}
	return breaker.Record{
		Failures: failures,
		Status:   breaker.Status(status),
		Checkin:  checkin,
	}, nil
}

var _ breaker.Driver = (*Driver)(nil)
