package breaker

import (
	"math/rand"
	"sync"
	"time"
)

// Jitter produces the extra seconds added to the OPEN-state cooldown on each
// admission check. It is sampled independently by each caller so that
// concurrent probes spread across a window instead of arriving at once —
// the anti-stampede mechanism spec.md calls for.
type Jitter func() float64

// DefaultJitter returns a Jitter that yields a uniformly distributed integer
// in [0, 10], matching the reference implementation's rand_int_jitter. It
// wraps its own *rand.Rand rather than the global generator, per design note
// in SPEC_FULL.md §9 — process-wide random state must not be an implicit
// dependency of breaker behavior.
func DefaultJitter() Jitter {
	return NewSeededJitter(time.Now().UnixNano())
}

// NewSeededJitter returns a uniform-in-[0,10] Jitter seeded deterministically,
// so tests can assert a reproducible sample sequence (SPEC_FULL.md §8
// scenario 6).
func NewSeededJitter(seed int64) Jitter {
	rng := rand.New(rand.NewSource(seed))
	var mu sync.Mutex
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return float64(rng.Intn(11))
	}
}

// ConstantJitter returns a Jitter that always yields v, for tests or
// deployments that want a fixed cooldown pad instead of randomization.
func ConstantJitter(v float64) Jitter {
	return func() float64 { return v }
}
