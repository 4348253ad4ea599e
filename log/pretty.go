package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of one output. Styles render plain text when the
// output is not a terminal.
type palette struct {
	key, str, num, time, ok, bad lipgloss.Style
	level                        map[slog.Level]lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		time: fg("4"),
		ok:   fg("2"),
		bad:  fg("1"),
		level: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): fg("5"),
			slog.LevelDebug:        fg("4"),
			slog.LevelInfo:         fg("2"),
			slog.LevelWarn:         fg("3").Bold(true),
			slog.LevelError:        fg("1").Bold(true),
		},
	}
}

// levelStyle returns the style of the nearest named level at or below l.
func (p palette) levelStyle(l slog.Level) lipgloss.Style {
	for _, n := range []slog.Level{
		slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug,
	} {
		if l >= n {
			return p.level[n]
		}
	}

	return p.level[slog.Level(LevelTrace)]
}

// prettyHandler writes colorized records as single key=value lines or as
// indented JSON objects. Groups are flattened into dotted keys.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	json   bool
	pal    palette
	prefix string
	attrs  []slog.Attr
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	json bool,
) *prettyHandler {
	return &prettyHandler{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
		json: json,
		pal:  makePalette(w),
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
	c := *h
	c.attrs = append(c.attrs[:len(c.attrs):len(c.attrs)], h.flatten(h.prefix, attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	builtin := func(a slog.Attr) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key != "" {
			fields = append(fields, a)
		}
	}

	if !r.Time.IsZero() {
		builtin(slog.Time(slog.TimeKey, r.Time))
	}

	fields = append(fields, slog.Any(slog.LevelKey, r.Level))
	if h.opts.ReplaceAttr != nil {
		fields[len(fields)-1] = h.opts.ReplaceAttr(nil, fields[len(fields)-1])
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			builtin(slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	builtin(slog.String(slog.MessageKey, r.Message))

	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, h.flatten(h.prefix, []slog.Attr{a})...)

		return true
	})

	var buf bytes.Buffer

	if h.json {
		h.writeJSON(&buf, r.Level, fields)
	} else {
		h.writeText(&buf, r.Level, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// flatten resolves attrs and expands groups into dotted keys.
func (h *prettyHandler) flatten(prefix string, attrs []slog.Attr) []slog.Attr {
	var out []slog.Attr

	for _, a := range attrs {
		a.Value = a.Value.Resolve()

		if a.Value.Kind() == slog.KindGroup {
			p := prefix
			if a.Key != "" {
				p += a.Key + "."
			}

			out = append(out, h.flatten(p, a.Value.Group())...)

			continue
		}

		if a.Equal(slog.Attr{}) {
			continue
		}

		a.Key = prefix + a.Key
		out = append(out, a)
	}

	return out
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, level slog.Level, fields []slog.Attr) {
	for i, a := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.pal.key.Render(a.Key + "="))
		buf.WriteString(h.value(level, a, false))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeJSON(buf *bytes.Buffer, level slog.Level, fields []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range fields {
		buf.WriteString("  ")
		buf.WriteString(h.pal.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")
		buf.WriteString(h.value(level, a, true))

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
}

// value renders the value of a, quoting strings in JSON mode.
func (h *prettyHandler) value(level slog.Level, a slog.Attr, quote bool) string {
	str := func(s string) string {
		if quote {
			return strconv.Quote(s)
		}

		return s
	}

	v := a.Value

	switch {
	case a.Key == slog.LevelKey:
		return h.pal.levelStyle(level).Render(str(v.String()))

	case a.Key == slog.TimeKey && v.Kind() == slog.KindString:
		return h.pal.time.Render(str(v.String()))
	}

	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return h.pal.num.Render(v.String())

	case slog.KindBool:
		if v.Bool() {
			return h.pal.ok.Render("true")
		}

		return h.pal.bad.Render("false")

	case slog.KindDuration:
		return h.pal.num.Render(str(v.Duration().String()))

	case slog.KindTime:
		return h.pal.time.Render(str(v.Time().Format(DefaultTimeLayout)))

	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return h.pal.bad.Render(str(err.Error()))
		}

		return h.pal.str.Render(str(fmt.Sprint(v.Any())))

	default:
		return h.pal.str.Render(str(v.String()))
	}
}
