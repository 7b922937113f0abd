package mixer

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var (
	logger = log.WithPrefix("mixer")

	logOutput  io.Writer = os.Stderr
	logOptions           = log.Options{Level: log.InfoLevel, TimeFormat: time.TimeOnly}
)

// SetLogger replaces the logger used by the mixer.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	logger = l
}

// InitializeLogging sets the level of the standard and mixer loggers and
// sends mixer logs to w, or stderr when w is nil. Debug mode also stamps
// each line with the time.
func InitializeLogging(debugMode bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	level := log.InfoLevel
	if debugMode {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	logOutput = w
	logOptions = log.Options{
		Level:           level,
		ReportTimestamp: debugMode,
		TimeFormat:      time.TimeOnly,
	}
	SetLogger(NewLogger("mixer"))
	logger.Debug("Mixer logging initialized", "level", "DEBUG")
}

// NewLogger returns a prefixed logger sharing the output and level chosen by
// InitializeLogging. Packages built on the mixer use it so all lines match.
func NewLogger(prefix string) *log.Logger {
	opts := logOptions
	opts.Prefix = prefix
	return log.NewWithOptions(logOutput, opts)
}
