package redis

import "sync/atomic"

// metrics holds the Redis driver's atomic operation counters, the same
// shape as the teacher's redis_instrumentation.go (int64 fields updated
// through sync/atomic instead of a mutex, since the driver already has no other exclusive
// critical section to piggyback on).
type metrics struct {
	hits     int64
	misses   int64
	news     int64
	updates  int64
	failures int64
	opens    int64
	closes   int64
	deletes  int64
}

func newMetrics() *metrics {
	return &metrics{}
}

func (m *metrics) recordHit()     { atomic.AddInt64(&m.hits, 1) }
func (m *metrics) recordMiss()    { atomic.AddInt64(&m.misses, 1) }
func (m *metrics) recordNew()     { atomic.AddInt64(&m.news, 1) }
func (m *metrics) recordUpdate()  { atomic.AddInt64(&m.updates, 1) }
func (m *metrics) recordFailure() { atomic.AddInt64(&m.failures, 1) }
func (m *metrics) recordOpen()    { atomic.AddInt64(&m.opens, 1) }
func (m *metrics) recordClose()   { atomic.AddInt64(&m.closes, 1) }
func (m *metrics) recordDelete()  { atomic.AddInt64(&m.deletes, 1) }

// Stats is a point-in-time snapshot of a Redis driver's operation counts.
type Stats struct {
	Hits     int64
	Misses   int64
	News     int64
	Updates  int64
	Failures int64
	Opens    int64
	Closes   int64
	Deletes  int64
}

// Stats returns the current operation statistics.
func (d *Driver) Stats() Stats {
	return Stats{
		Hits:     atomic.LoadInt64(&d.metrics.hits),
		Misses:   atomic.LoadInt64(&d.metrics.misses),
		News:     atomic.LoadInt64(&d.metrics.news),
		Updates:  atomic.LoadInt64(&d.metrics.updates),
		Failures: atomic.LoadInt64(&d.metrics.failures),
		Opens:    atomic.LoadInt64(&d.metrics.opens),
		Closes:   atomic.LoadInt64(&d.metrics.closes),
		Deletes:  atomic.LoadInt64(&d.metrics.deletes),
	}
}
