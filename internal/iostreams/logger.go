package iostreams

import "github.com/rs/zerolog"

// Logger provides diagnostic logging for the command layer.
// *zerolog.Logger satisfies this interface directly.
// The factory sets &logger.Log; tests use loggertest.New() or loggertest.NewNop().
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}
