package diagnostics

import (
	"io"
	"sync"
)

// Recorder encodes and writes breaker transition events to a sink. A
// *Breaker with a Recorder configured hands it every Open/Close/Reset/probe
// transition in addition to its own zerolog line, so a host that wants a
// durable audit trail doesn't have to scrape logs for it.
type Recorder struct {
	mu      sync.Mutex
	encoder Encoder
	sink    io.Writer
}

// NewRecorder builds a Recorder that encodes events with enc and appends
// them, newline-delimited, to sink.
func NewRecorder(enc Encoder, sink io.Writer) *Recorder {
	return &Recorder{encoder: enc, sink: sink}
}

// Record encodes and writes e. Errors are returned so callers can decide
// whether a broken audit sink should be fatal; the Breaker itself treats a
// Record failure as non-fatal to the call it's instrumenting (see
// breaker.go) since the audit trail is a diagnostic convenience, not part of
// the state machine's correctness.
func (r *Recorder) Record(e Event) error {
	data, err := r.encoder.Marshal(e)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.sink.Write(data); err != nil {
		return err
	}
	_, err = r.sink.Write([]byte("\n"))
	return err
}
