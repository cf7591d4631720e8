package breaker

import (
	"os"

	"github.com/rs/zerolog"
)

// newComponentLogger builds the default structured logger for a Breaker
// (component "breaker") when the caller does not supply one of their own.
// The drivers default to a no-op logger instead. Every log call site in this module
// mirrors a logging.getLogger(...).debug/info/error call in the reference
// implementation.
func newComponentLogger(component string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
