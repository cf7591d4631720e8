package redis

import (
	"errors"
	"sync"
	"time"
)

// ErrGuardOpen is returned locally by the driver when connGuard has tripped
// and the cooldown has not yet elapsed. It never reaches the caller as-is —
// the driver wraps it via breaker.NewBackendError so it still satisfies
// errors.Is(err, breaker.ErrCircuitBreakerOpen).
var ErrGuardOpen = errors.New("redis: connection guard is open, backend assumed unavailable")

// connGuard is a process-local fast-fail gate in front of the Redis client,
// adapted from the teacher repository's reliability.ThresholdBreaker. It is
// deliberately NOT a health checker: it never polls the backend on its own,
// it only reacts to errors the driver itself already observed while serving
// real calls (spec.md's Non-goals exclude active probing/health checks).
// Its only job is to stop hammering a Redis that is already timing out:
// once tripped, it rejects calls locally with ErrGuardOpen until the
// cooldown elapses, then lets exactly one call through as a probe.
type connGuard struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration

	failures  int
	tripped   bool
	trippedAt time.Time
	probing   bool
}

// newConnGuard builds a guard. threshold <= 0 disables the guard: allow
// always reports true and report is a no-op.
func newConnGuard(threshold int, cooldown time.Duration) *connGuard {
	return &connGuard{threshold: threshold, cooldown: cooldown}
}

// allow reports whether a call should reach the network. Once the cooldown
// elapses past a trip, exactly one caller is allowed through as a probe;
// the guard stays "tripped" for everyone else until that probe reports in.
func (g *connGuard) allow() bool {
	if g.threshold <= 0 {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.tripped {
		return true
	}
	if !g.probing && time.Since(g.trippedAt) > g.cooldown {
		g.probing = true
		return true
	}
	return false
}

// report records the outcome of a call that was allowed through.
func (g *connGuard) report(err error) {
	if g.threshold <= 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.probing = false
	if err == nil {
		g.failures = 0
		g.tripped = false
		return
	}

	g.failures++
	if g.failures >= g.threshold {
		g.tripped = true
		g.trippedAt = time.Now()
	}
}
