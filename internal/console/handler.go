// Package console builds the slog loggers used by the smithy CLI.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Output formats accepted by NewLogger. FormatAuto is resolved by ResolveFormat.
const (
	FormatAuto   = "auto"
	FormatPretty = "pretty"
	FormatJSON   = "json"
	FormatText   = "text"
)

// ErrUnknownFormat is returned when an unrecognized log format is requested.
var ErrUnknownFormat = errors.New("unknown log format")

// ErrUnknownLevel is returned by ParseLevel for names slog does not know.
var ErrUnknownLevel = errors.New("unknown log level")

var _ slog.Handler = (*PrettyHandler)(nil)

// _highlighted are the record attributes PrettyHandler prints after the
// message. Anything else is only visible in the json and text formats.
var _highlighted = []string{"file", "blueprint", "component", "error"}

// PrettyHandler writes one coloured line per record. Attributes added through
// WithAttrs and groups added through WithGroup form a prefix shown on every
// line; of the record's own attributes only the highlighted keys are printed.
type PrettyHandler struct {
	out    io.Writer
	level  slog.Leveler
	mu     *sync.Mutex
	prefix string
	group  string
}

// NewPrettyHandler returns a PrettyHandler that writes to out at the given level.
func NewPrettyHandler(out io.Writer, level slog.Leveler) *PrettyHandler {
	return &PrettyHandler{out: out, level: level, mu: &sync.Mutex{}}
}

var (
	_warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	_errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	_debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // dim
	_attrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan
)

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record's message, coloured by level.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(h.prefix)
	sb.WriteString(r.Message)

	r.Attrs(func(a slog.Attr) bool {
		if slices.Contains(_highlighted, a.Key) {
			sb.WriteByte(' ')
			sb.WriteString(_attrStyle.Render(h.group + a.Key + "=" + a.Value.String()))
		}
		return true
	})

	msg := sb.String()
	switch {
	case r.Level >= slog.LevelError:
		msg = _errorStyle.Render(msg)
	case r.Level >= slog.LevelWarn:
		msg = _warnStyle.Render(msg)
	case r.Level < slog.LevelInfo:
		msg = _debugStyle.Render(msg)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, msg+"\n")
	return err
}

// WithAttrs returns a handler whose prefix includes attrs as "key=val".
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var sb strings.Builder
	sb.WriteString(h.prefix)
	for _, a := range attrs {
		fmt.Fprintf(&sb, "%s%s=%s ", h.group, a.Key, a.Value)
	}
	next := *h
	next.prefix = sb.String()
	return &next
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.group + name + "."
	return &next
}

// ResolveFormat maps FormatAuto to pretty on a terminal and text otherwise.
// Other formats are validated and returned unchanged.
func ResolveFormat(format string, isTTY bool) (string, error) {
	switch format {
	case FormatAuto:
		if isTTY {
			return FormatPretty, nil
		}
		return FormatText, nil
	case FormatPretty, FormatJSON, FormatText:
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q: %w", format, ErrUnknownFormat)
	}
}

// ParseLevel parses a slog level name such as "debug" or "warn+2".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("%w %q", ErrUnknownLevel, s)
	}
	return level, nil
}

// NewLogger creates a logger for the given format and level.
// Supported formats: "pretty", "json", "text".
func NewLogger(out io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case FormatText:
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	case FormatPretty:
		handler = NewPrettyHandler(out, level)
	default:
		return nil, fmt.Errorf("unknown format %q: %w", format, ErrUnknownFormat)
	}
	return slog.New(handler), nil
}
