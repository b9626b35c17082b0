package scope

import (
	"log/slog"

	"github.com/tphakala/go-audio-scope/internal/logging"
)

// SetLogger sets the logger for the scope and its internal packages. By
// default nothing is logged. Pass nil to restore silence.
//
// Levels used:
//   - Debug: source changes, transport events, snapshot captures
//   - Info: reconfiguration, signal restored
//   - Warn: no signal
//   - Error: failures that leave the previous configuration in place
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logging.Logger()
}
