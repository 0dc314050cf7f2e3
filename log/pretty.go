package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// prettyStyles are the lipgloss styles used by a prettyHandler. They are
// bound to the handler's writer, so they render plain text unless the
// writer is a color terminal.
type prettyStyles struct {
	key     lipgloss.Style
	message lipgloss.Style
	source  lipgloss.Style
	str     lipgloss.Style
	number  lipgloss.Style
	literal lipgloss.Style
	level   map[slog.Level]lipgloss.Style
}

func makePrettyStyles(w io.Writer) prettyStyles {
	r := lipgloss.NewRenderer(w)
	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return prettyStyles{
		key:     color("8"),
		message: r.NewStyle().Bold(true),
		source:  color("6"),
		str:     color("2"),
		number:  color("4"),
		literal: color("5"),
		level: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): color("8").Bold(true),
			slog.Level(LevelDebug): color("4").Bold(true),
			slog.Level(LevelInfo):  color("2").Bold(true),
			slog.Level(LevelWarn):  color("3").Bold(true),
			slog.Level(LevelError): color("1").Bold(true),
		},
	}
}

// levelStyle returns the style of the nearest named level at or below l.
func (s prettyStyles) levelStyle(l slog.Level) lipgloss.Style {
	for _, named := range []Level{LevelError, LevelWarn, LevelInfo, LevelDebug} {
		if l >= slog.Level(named) {
			return s.level[slog.Level(named)]
		}
	}

	return s.level[slog.Level(LevelTrace)]
}

// prettyHandler is a [slog.Handler] for reading logs in a terminal. Text
// records are written on one line as colored key=value pairs; JSON records
// are written as an indented object with one attribute per line. Groups
// are flattened into dotted keys.
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	styles prettyStyles

	mu *sync.Mutex
	w  io.Writer

	groups []string
	attrs  []slog.Attr
}

func newPrettyHandler(w io.Writer, format Format, opts *slog.HandlerOptions) slog.Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	return &prettyHandler{
		opts:   *opts,
		format: format,
		styles: makePrettyStyles(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = h.flatten(h.attrs[:len(h.attrs):len(h.attrs)], h.groups, attrs)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = h.builtin(fields, slog.Time(slog.TimeKey, r.Time))
	}

	fields = h.builtin(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = h.builtin(fields,
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	fields = h.builtin(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.flatten(fields, h.groups, []slog.Attr{a})

		return true
	})

	var buf bytes.Buffer

	if h.format == FormatJSON {
		h.writeJSON(&buf, r.Level, fields)
	} else {
		h.writeText(&buf, r.Level, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// builtin appends a record field after passing it through ReplaceAttr.
func (h *prettyHandler) builtin(dst []slog.Attr, a slog.Attr) []slog.Attr {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Equal(slog.Attr{}) {
		return dst
	}

	return append(dst, a)
}

// flatten appends attrs to dst with group members expanded into dotted
// keys. Values are resolved and passed through ReplaceAttr.
func (h *prettyHandler) flatten(dst []slog.Attr, groups []string, attrs []slog.Attr) []slog.Attr {
	for _, a := range attrs {
		a.Value = a.Value.Resolve()

		if a.Value.Kind() == slog.KindGroup {
			members := a.Value.Group()
			if len(members) == 0 {
				continue
			}

			sub := groups
			if a.Key != "" {
				sub = append(groups[:len(groups):len(groups)], a.Key)
			}

			dst = h.flatten(dst, sub, members)

			continue
		}

		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(groups, a)
			a.Value = a.Value.Resolve()
		}

		if a.Equal(slog.Attr{}) {
			continue
		}

		if len(groups) > 0 {
			a.Key = strings.Join(groups, ".") + "." + a.Key
		}

		dst = append(dst, a)
	}

	return dst
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, level slog.Level, fields []slog.Attr) {
	for i, a := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		switch a.Key {
		case slog.LevelKey:
			buf.WriteString(h.styles.levelStyle(level).Render(a.Value.String()))

			continue
		case slog.MessageKey:
			buf.WriteString(h.styles.message.Render(a.Value.String()))

			continue
		}

		buf.WriteString(h.styles.key.Render(a.Key + "="))
		buf.WriteString(h.textValue(a))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) textValue(a slog.Attr) string {
	switch a.Value.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		return h.styles.number.Render(a.Value.String())
	case slog.KindBool:
		return h.styles.literal.Render(a.Value.String())
	}

	if a.Key == slog.SourceKey {
		return h.styles.source.Render(a.Value.String())
	}

	s := a.Value.String()
	if needsQuote(s) {
		s = strconv.Quote(s)
	}

	return h.styles.str.Render(s)
}

func (h *prettyHandler) writeJSON(buf *bytes.Buffer, level slog.Level, fields []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range fields {
		buf.WriteString("  ")
		buf.WriteString(h.styles.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")

		if a.Key == slog.LevelKey {
			buf.WriteString(h.styles.levelStyle(level).Render(strconv.Quote(a.Value.String())))
		} else {
			buf.WriteString(h.jsonValue(a))
		}

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
}

func (h *prettyHandler) jsonValue(a slog.Attr) string {
	v := a.Value

	switch v.Kind() {
	case slog.KindString:
		if a.Key == slog.MessageKey {
			return h.styles.message.Render(strconv.Quote(v.String()))
		}

		return h.styles.str.Render(strconv.Quote(v.String()))
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return h.styles.number.Render(v.String())
	case slog.KindDuration:
		return h.styles.number.Render(strconv.FormatInt(int64(v.Duration()), 10))
	case slog.KindBool:
		return h.styles.literal.Render(v.String())
	case slog.KindTime:
		return h.styles.str.Render(strconv.Quote(v.Time().Format(time.RFC3339Nano)))
	}

	if err, ok := v.Any().(error); ok {
		return h.styles.str.Render(strconv.Quote(err.Error()))
	}

	data, err := json.Marshal(v.Any())
	if err != nil {
		return h.styles.str.Render(strconv.Quote(fmt.Sprint(v.Any())))
	}

	return h.styles.literal.Render(string(data))
}

// needsQuote reports whether a text value must be quoted to stay a single
// key=value token.
func needsQuote(s string) bool {
	if s == "" {
		return true
	}

	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' || r == 0x7f {
			return true
		}
	}

	return false
}
