package diagnostics

import "encoding/json"

// JSONEncoder implements Encoder with plain, human-diffable JSON. Good
// default for developer-facing logs and ad hoc debugging.
type JSONEncoder struct{}

// NewJSONEncoder creates a new JSON event encoder.
func NewJSONEncoder() *JSONEncoder {
	return &JSONEncoder{}
}

// Marshal converts an Event to JSON bytes.
func (e *JSONEncoder) Marshal(event Event) ([]byte, error) {
	return json.Marshal(event)
}

// Name returns the encoder name.
func (e *JSONEncoder) Name() string {
	return "json"
}
