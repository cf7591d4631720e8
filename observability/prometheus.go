// Package observability exports breaker.Breaker state to Prometheus,
// modeled on the teacher repository's observability/prometheus.go
// (same Describe/Collect shape around a single Desc per metric), swapped
// from cache hit/miss/eviction counters to breaker status/failures/trip
// counters.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	breaker "github.com/donnigundala/dg-breaker"
)

// Observable is satisfied by *breaker.Breaker. It is declared here,
// rather than imported, so the collector can be exercised against a
// test double without constructing a real Breaker.
type Observable interface {
	Snapshot() breaker.Snapshot
}

// BreakerCollector exports one Breaker's state as Prometheus metrics. It
// implements prometheus.Collector so a host process can register it
// directly with a prometheus.Registry; it never probes the breaker or its
// backend on its own, it only reads the last-loaded snapshot (§6 addition).
type BreakerCollector struct {
	breaker  Observable
	status   *prometheus.Desc
	failures *prometheus.Desc
	trips    *prometheus.Desc
	probes   *prometheus.Desc
	resets   *prometheus.Desc
	rejects  *prometheus.Desc
}

// NewBreakerCollector creates a new BreakerCollector. Namespace and
// subsystem are optional but recommended (e.g. "myapp", "breaker").
func NewBreakerCollector(b Observable, namespace, subsystem string) *BreakerCollector {
	labels := []string{"key"}

	return &BreakerCollector{
		breaker: b,
		status: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "status"),
			"Current breaker status (0=open, 1=closed)",
			labels, nil,
		),
		failures: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "failures"),
			"Current consecutive failure count",
			labels, nil,
		),
		trips: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "trips_total"),
			"Total number of CLOSED to OPEN transitions",
			labels, nil,
		),
		probes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "probes_total"),
			"Total number of successful OPEN-state probes",
			labels, nil,
		),
		resets: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "resets_total"),
			"Total number of explicit resets",
			labels, nil,
		),
		rejects: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "rejects_total"),
			"Total number of calls rejected while OPEN",
			labels, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *BreakerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.status
	ch <- c.failures
	ch <- c.trips
	ch <- c.probes
	ch <- c.resets
	ch <- c.rejects
}

// Collect implements prometheus.Collector.
func (c *BreakerCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.breaker.Snapshot()
	labelValues := []string{snap.Key}

	ch <- prometheus.MustNewConstMetric(c.status, prometheus.GaugeValue, float64(snap.Status), labelValues...)
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.GaugeValue, float64(snap.Failures), labelValues...)
	ch <- prometheus.MustNewConstMetric(c.trips, prometheus.CounterValue, float64(snap.Trips), labelValues...)
	ch <- prometheus.MustNewConstMetric(c.probes, prometheus.CounterValue, float64(snap.Probes), labelValues...)
	ch <- prometheus.MustNewConstMetric(c.resets, prometheus.CounterValue, float64(snap.Resets), labelValues...)
	ch <- prometheus.MustNewConstMetric(c.rejects, prometheus.CounterValue, float64(snap.Rejects), labelValues...)
}
