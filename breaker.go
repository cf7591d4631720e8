package breaker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/donnigundala/dg-breaker/diagnostics"
	"github.com/rs/zerolog"
)

// Subject is the wrapped operation a Breaker protects. All arguments the
// caller passes to Breaker.Call flow through verbatim; a failure raised
// here propagates to the caller unchanged once counted.
type Subject func(ctx context.Context, args ...any) (any, error)

// Config constructs a Breaker. Driver, Subject, and Key are required;
// Failures, Timeout, and Jitter fall back to the reference defaults
// (5 failures, 10s cooldown, uniform-in-[0,10] jitter) when zero.
type Config struct {
	Driver  Driver
	Subject Subject
	Key     string

	// Failures is the threshold at which CLOSED trips to OPEN. Default 5.
	Failures int

	// Timeout is the OPEN-state cooldown before a probe is admitted.
	// Default 10s.
	Timeout time.Duration

	// Jitter adds randomized seconds to the cooldown comparison on each
	// admission check. Default: DefaultJitter().
	Jitter Jitter

	// Logger overrides the default structured logger. Optional.
	Logger *zerolog.Logger

	// Recorder, if set, receives every state transition as a
	// diagnostics.Event in addition to the log line. Optional.
	Recorder *diagnostics.Recorder
}

// Breaker is the wrapping state machine: it holds a Driver, a key, a wrapped
// Subject, thresholds, and a jitter policy, and decides on every call
// whether to admit, probe, or reject.
//
// A Breaker's cached snapshot (failures/status/checkin) is never
// authoritative across processes — every Call begins with a fresh Load. The
// snapshot fields are not protected by a mutex; callers sharing one *Breaker
// across goroutines must synchronize externally, or construct one Breaker
// per goroutine. Correctness across processes never depends on the local
// snapshot, only on the driver's shared record.
type Breaker struct {
	driver      Driver
	subject     Subject
	key         string
	maxFailures int
	timeout     float64 // seconds
	jitter      Jitter
	logger      zerolog.Logger
	recorder    *diagnostics.Recorder

	lastJitter float64

	// cached snapshot
	failures int
	status   Status
	checkin  float64

	// counters observed by observability.BreakerCollector. Unlike the snapshot
	// fields above, these are safe to read from another goroutine.
	trips   int64
	probes  int64
	resets  int64
	rejects int64
}

// New constructs a Breaker from cfg. It fails with ErrInvalidArguments if
// Driver, Subject, or Key is missing.
func New(cfg Config) (*Breaker, error) {
	if cfg.Driver == nil || cfg.Subject == nil || cfg.Key == "" {
		return nil, fmt.Errorf("%w: driver, subject, and key are required", ErrInvalidArguments)
	}

	failures := cfg.Failures
	if failures <= 0 {
		failures = 5
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	jitter := cfg.Jitter
	if jitter == nil {
		jitter = DefaultJitter()
	}

	logger := newComponentLogger("breaker")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Breaker{
		driver:      cfg.Driver,
		subject:     cfg.Subject,
		key:         cfg.Key,
		maxFailures: failures,
		timeout:     timeout.Seconds(),
		jitter:      jitter,
		logger:      logger.With().Str("key", cfg.Key).Logger(),
		recorder:    cfg.Recorder,
		status:      StatusClosed,
		checkin:     cfg.Driver.Now(),
	}, nil
}

// sampleJitter draws one jitter value and records it as lastJitter for
// observability, per call as spec.md requires ("sampled exactly once per
// admission check").
func (b *Breaker) sampleJitter() float64 {
	j := b.jitter()
	b.lastJitter = j
	return j
}

// load refreshes the local snapshot from the driver, creating a default
// record on first use of an unknown key. This is the one step every Call
// performs before deciding admission.
func (b *Breaker) load(ctx context.Context) error {
	// Advisory expiry check; a no-op for native-TTL backends such as the
	// Redis driver (its Expire always returns nil immediately).
	if err := b.driver.Expire(ctx, b.key, b.checkin); err != nil {
		b.logger.Debug().Err(err).Msg("expire check failed, continuing")
	}

	b.logger.Debug().Msg("loading")
	rec, err := b.driver.Load(ctx, b.key)
	if err != nil {
		if !IsBackendKeyNotFound(err) {
			return err
		}
		b.logger.Debug().Msg("entry not found, creating a new one")
		rec, err = b.driver.New(ctx, b.key)
		if err != nil {
			return err
		}
	}

	b.failures = rec.Failures
	b.status = rec.Status
	b.checkin = rec.Checkin
	return nil
}

// Call executes the invocation contract: refresh snapshot, decide
// admission, invoke the subject if admitted, update the driver with the
// outcome, and return a result or raise a taxonomy error.
func (b *Breaker) Call(ctx context.Context, args ...any) (any, error) {
	if err := b.load(ctx); err != nil {
		return nil, err
	}

	switch b.status {
	case StatusOpen:
		return b.callOpen(ctx, args...)
	default:
		return b.callClosed(ctx, args...)
	}
}

func (b *Breaker) callOpen(ctx context.Context, args ...any) (any, error) {
	b.logger.Debug().Msg("breaker is OPEN")

	jitter := b.sampleJitter()
	if b.driver.Now()-b.checkin < b.timeout+jitter {
		atomic.AddInt64(&b.rejects, 1)
		return nil, ErrCircuitBreakerOpen
	}

	b.logger.Info().Float64("jitter", jitter).Msg("timeout reached, retrying as a probe")
	return b.tryOrOpen(ctx, args...)
}

func (b *Breaker) callClosed(ctx context.Context, args ...any) (any, error) {
	if b.failures >= b.maxFailures {
		b.logger.Debug().Int("max_failures", b.maxFailures).Msg("maximum failures exceeded")
		if err := b.openLocked(ctx); err != nil {
			return nil, err
		}
		atomic.AddInt64(&b.rejects, 1)
		return nil, ErrCircuitBreakerOpen
	}

	b.logger.Debug().Msg("breaker is CLOSED")
	return b.tryOrOpen(ctx, args...)
}

// tryOrOpen calls the subject. On success it closes the breaker if it was
// open (a successful probe) and returns the result. On failure it reports
// the failure to the driver and re-raises the original error, unless the
// driver's own failure-reporting call fails with a backend problem, in
// which case that error propagates instead (spec.md §4.4).
func (b *Breaker) tryOrOpen(ctx context.Context, args ...any) (any, error) {
	b.logger.Debug().Msg("invoking subject")

	wasOpen := b.status == StatusOpen

	result, err := b.subject(ctx, args...)
	if err == nil {
		if wasOpen {
			if cerr := b.closeLocked(ctx); cerr != nil {
				return nil, cerr
			}
			atomic.AddInt64(&b.probes, 1)
			b.recordEvent(ctx, "probe")
		}
		return result, nil
	}

	b.logger.Error().Err(err).Msg("error detected invoking subject")

	// The threshold is not checked here: the failure that reaches
	// maxFailures still returns the subject's error, and the next Call's
	// callClosed trips the breaker. Concurrent callers may therefore push
	// the shared count somewhat past the threshold before anyone trips it.
	newFailures, ferr := b.driver.Failure(ctx, b.key)
	if ferr != nil {
		return nil, ferr
	}
	b.failures = newFailures

	return nil, err
}

// Reset calls driver.Reset(key). It does not modify the local snapshot —
// the next Load will pick up the new state, matching the reference
// implementation.
func (b *Breaker) Reset(ctx context.Context) error {
	b.logger.Info().Msg("resetting")
	if err := b.driver.Reset(ctx, b.key); err != nil {
		return err
	}
	atomic.AddInt64(&b.resets, 1)
	b.recordEvent(ctx, "reset")
	return nil
}

// Open forces the breaker open if the local snapshot is currently closed.
func (b *Breaker) Open(ctx context.Context) error {
	if b.status != StatusClosed {
		return nil
	}
	return b.openLocked(ctx)
}

func (b *Breaker) openLocked(ctx context.Context) error {
	b.logger.Info().Msg("opening")
	if err := b.driver.Open(ctx, b.key); err != nil {
		return err
	}
	b.status = StatusOpen
	b.checkin = b.driver.Now()
	atomic.AddInt64(&b.trips, 1)
	b.recordEvent(ctx, "open")
	return nil
}

// Close forces the breaker closed if the local snapshot is currently open.
func (b *Breaker) Close(ctx context.Context) error {
	if b.status != StatusOpen {
		return nil
	}
	return b.closeLocked(ctx)
}

func (b *Breaker) closeLocked(ctx context.Context) error {
	b.logger.Info().Msg("closing")
	if err := b.driver.Close(ctx, b.key); err != nil {
		return err
	}
	b.status = StatusClosed
	b.failures = 0
	b.checkin = b.driver.Now()
	b.recordEvent(ctx, "close")
	return nil
}

func (b *Breaker) recordEvent(ctx context.Context, kind string) {
	if b.recorder == nil {
		return
	}
	event := diagnostics.Event{
		Key:       b.key,
		Kind:      kind,
		Failures:  b.failures,
		Status:    int(b.status),
		Jitter:    b.lastJitter,
		Timestamp: time.Unix(0, int64(b.driver.Now()*float64(time.Second))),
	}
	if err := b.recorder.Record(event); err != nil {
		b.logger.Debug().Err(err).Msg("failed to record diagnostics event")
	}
}

// Snapshot is the observable view of a Breaker's last-loaded state: key,
// status, failures, timeout, checkin, the most recent jitter sample, and the
// configured threshold.
type Snapshot struct {
	Key         string
	Status      Status
	Failures    int
	Timeout     time.Duration
	Checkin     float64
	Jitter      float64
	MaxFailures int

	// Trips counts CLOSED->OPEN transitions over this Breaker's lifetime.
	Trips int64
	// Probes counts successful OPEN-state probes that closed the breaker.
	Probes int64
	// Resets counts explicit Reset calls.
	Resets int64
	// Rejects counts calls denied admission while OPEN.
	Rejects int64
}

// Snapshot returns the breaker's last-loaded observable state, including
// lifetime counters read atomically for observability.BreakerCollector.
func (b *Breaker) Snapshot() Snapshot {
	return Snapshot{
		Key:         b.key,
		Status:      b.status,
		Failures:    b.failures,
		Timeout:     time.Duration(b.timeout * float64(time.Second)),
		Checkin:     b.checkin,
		Jitter:      b.lastJitter,
		MaxFailures: b.maxFailures,
		Trips:       atomic.LoadInt64(&b.trips),
		Probes:      atomic.LoadInt64(&b.probes),
		Resets:      atomic.LoadInt64(&b.resets),
		Rejects:     atomic.LoadInt64(&b.rejects),
	}
}

// String renders a diagnostic representation, e.g.
// "<Breaker [orders-api] status=OPEN failures=5 checkin=1700000000.5, jitter=3>".
func (b *Breaker) String() string {
	return fmt.Sprintf("<Breaker [%s] status=%s failures=%d checkin=%s, jitter=%v>",
		b.key, b.status, b.failures, strconv.FormatFloat(b.checkin, 'f', -1, 64), b.lastJitter)
}
