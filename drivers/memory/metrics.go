package memory

import "sync"

// Metrics tracks per-driver operation counters, mirroring the teacher
// repository's drivers/memory/metrics.go shape (mutex-guarded counters with
// a Stats() snapshot) generalized from cache hit/miss/set/evict counters to
// breaker-record operation counters.
type Metrics struct {
	mu sync.Mutex

	hits    int64
	misses  int64
	news    int64
	updates int64
	failure int64
	opens   int64
	closes  int64
	deletes int64
	expires int64
}

func newMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordHit()     { m.mu.Lock(); m.hits++; m.mu.Unlock() }
func (m *Metrics) RecordMiss()    { m.mu.Lock(); m.misses++; m.mu.Unlock() }
func (m *Metrics) RecordNew()     { m.mu.Lock(); m.news++; m.mu.Unlock() }
func (m *Metrics) RecordUpdate()  { m.mu.Lock(); m.updates++; m.mu.Unlock() }
func (m *Metrics) RecordFailure() { m.mu.Lock(); m.failure++; m.mu.Unlock() }
func (m *Metrics) RecordOpen()    { m.mu.Lock(); m.opens++; m.mu.Unlock() }
func (m *Metrics) RecordClose()   { m.mu.Lock(); m.closes++; m.mu.Unlock() }
func (m *Metrics) RecordDelete()  { m.mu.Lock(); m.deletes++; m.mu.Unlock() }
func (m *Metrics) RecordExpire()  { m.mu.Lock(); m.expires++; m.mu.Unlock() }

// Stats is a point-in-time snapshot of a memory driver's operation counts.
type Stats struct {
	Hits    int64
	Misses  int64
	News    int64
	Updates int64
	Failure int64
	Opens   int64
	Closes  int64
	Deletes int64
	Expires int64
}

// Stats returns a snapshot of the current counters.
func (m *Metrics) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Hits:    m.hits,
		Misses:  m.misses,
		News:    m.news,
		Updates: m.updates,
		Failure: m.failure,
		Opens:   m.opens,
		Closes:  m.closes,
		Deletes: m.deletes,
		Expires: m.expires,
	}
}
