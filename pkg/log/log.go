package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide root logger. Before Setup runs it writes
// console-formatted lines to stderr at the info level, so early failures
// and tests are never silent.
var Logger = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}).Level(zerolog.InfoLevel).With().Timestamp().Logger()

// Setup configures the root logger. The level string is one of zerolog's
// level names (debug, info, warn, error, ...); an unknown name is an
// error rather than a silent fallback. JSON output is meant for log
// aggregation; the console format is the default since the daemon
// normally runs under a user session. A nil output selects stderr.
func Setup(level string, jsonOutput bool, output io.Writer) error {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("unknown log level %q", level)
		}
		lvl = parsed
	}

	if output == nil {
		output = os.Stderr
	}
	if !jsonOutput {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	Logger = zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	return nil
}

// Component returns a child logger for one of the daemon's moving parts
// (broker, scheduler, api, ...). Every line it emits carries the
// component name.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// ForContext returns a child logger for a registered context, keyed by
// its registration name so context log lines line up with topic prefixes.
func ForContext(name string) zerolog.Logger {
	return Logger.With().Str("context", name).Logger()
}

// ForConnection returns a child logger for one client connection. The
// socket name says which endpoint the peer is on and the sink id ties
// subscription requests, deliveries and drops of the same connection
// together across goroutines.
func ForConnection(socket string, sinkID string) zerolog.Logger {
	return Logger.With().
		Str("socket", socket).
		Str("sink_id", sinkID).
		Logger()
}
