package diagnostics

import "github.com/vmihailenco/msgpack/v5"

// MsgpackEncoder implements Encoder with MessagePack, for high-volume audit
// sinks where JSON's verbosity matters (one Event per state transition on a
// flapping key adds up).
type MsgpackEncoder struct{}

// NewMsgpackEncoder creates a new msgpack event encoder.
func NewMsgpackEncoder() *MsgpackEncoder {
	return &MsgpackEncoder{}
}

// Marshal converts an Event to msgpack bytes.
func (e *MsgpackEncoder) Marshal(event Event) ([]byte, error) {
	return msgpack.Marshal(event)
}

// Name returns the encoder name.
func (e *MsgpackEncoder) Name() string {
	return "msgpack"
}
