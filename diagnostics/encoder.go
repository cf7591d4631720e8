// Package diagnostics encodes breaker transition events for structured
// audit logging. It is adapted from the teacher repository's serializer
// package: the same pluggable Encoder shape, now carrying Event values
// instead of arbitrary cache payloads.
package diagnostics

import "time"

// Event records one breaker state transition, for sinks that want a
// structured audit trail beyond the zerolog line emitted at the same call
// site (see SPEC_FULL.md §2.2).
type Event struct {
	Key       string    `json:"key" msgpack:"key"`
	Kind      string    `json:"kind" msgpack:"kind"` // "open", "close", "reset", "probe"
	Failures  int       `json:"failures" msgpack:"failures"`
	Status    int       `json:"status" msgpack:"status"`
	Jitter    float64   `json:"jitter" msgpack:"jitter"`
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
}

// Encoder handles marshaling of Events. Implementations must be
// thread-safe — a Recorder may be shared across goroutines driving the same
// key from different callers.
type Encoder interface {
	// Marshal converts an Event to bytes for a sink (log line, message
	// queue, file).
	Marshal(e Event) ([]byte, error)

	// Name returns the encoder name (e.g. "json", "msgpack").
	Name() string
}
