package log

import (
	"strconv"
	"strings"
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}

	// Offsets from a named level render like slog, e.g. "info+2".
	base, name := LevelError, "error"

	for _, l0 := range []Level{LevelWarn, LevelInfo, LevelDebug, LevelTrace} {
		if l < base {
			base, name = l0, l0.String()
		}
	}

	d := int(l) - int(base)
	if d >= 0 {
		return name + "+" + strconv.Itoa(d)
	}

	return name + strconv.Itoa(d)
}

// UnmarshalText implements encoding.TextUnmarshaler so a Level can be used
// directly as a flag or config value.
func (l *Level) UnmarshalText(text []byte) error {
	*l = ParseLevel(strings.TrimSpace(string(text)))

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	*f = ParseFormat(string(text))

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
