package observability

import (
	"strings"
	"testing"

	breaker "github.com/donnigundala/dg-breaker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// mockObservable implements Observable for testing.
type mockObservable struct {
	snap breaker.Snapshot
}

func (m *mockObservable) Snapshot() breaker.Snapshot {
	return m.snap
}

func TestBreakerCollector(t *testing.T) {
	mock := &mockObservable{
		snap: breaker.Snapshot{
			Key:      "orders-api",
			Status:   breaker.StatusClosed,
			Failures: 2,
			Trips:    1,
			Probes:   1,
			Resets:   0,
			Rejects:  4,
		},
	}

	collector := NewBreakerCollector(mock, "myapp", "breaker")

	reg := prometheus.NewPedanticRegistry()
	err := reg.Register(collector)
	assert.NoError(t, err)

	metrics, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, metrics)

	expected := `
		# HELP myapp_breaker_failures Current consecutive failure count
		# TYPE myapp_breaker_failures gauge
		myapp_breaker_failures{key="orders-api"} 2
	`
	err = testutil.CollectAndCompare(collector, strings.NewReader(expected), "myapp_breaker_failures")
	assert.NoError(t, err)
}
