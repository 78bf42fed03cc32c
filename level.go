package logx

import (
	"fmt"
	"strings"
)

// Level indicates the severity of a log event and gates whether the event is
// emitted at all.
type Level int8

const (
	// TraceLevel logs are the most voluminous and carry flow notifications.
	TraceLevel Level = iota - 2
	// DebugLevel logs are typically voluminous, and are usually disabled in production.
	DebugLevel
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual
	// human review.
	WarnLevel
	// ErrorLevel logs are high-priority. If an application is running smoothly,
	// it shouldn't generate any error-level logs.
	ErrorLevel
	// FatalLevel logs report unrecoverable failures. Engines terminate the
	// process after emitting a fatal event.
	FatalLevel
	// Disabled turns all logging off.
	Disabled
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "trace"
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case FatalLevel:
		return "fatal"
	case Disabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name into a Level. It accepts the values
// returned by Level.String plus the aliases "warning" and "off", ignoring
// case and surrounding whitespace. An empty string parses to InfoLevel.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel, nil
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	case "disabled", "off":
		return Disabled, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %q", s)
	}
}
