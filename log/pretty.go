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

// palette holds the styles of the pretty handlers. Styles come from a
// renderer bound to the handler's writer, so they degrade to plain text
// when the writer is not a terminal.
type palette struct {
	key, str, num, yes, no, span, stamp, null, source lipgloss.Style
	levels                                            [4]lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	color := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return palette{
		key:    color("8"),
		str:    color("6"),
		num:    color("3"),
		yes:    color("2"),
		no:     color("1"),
		span:   color("5"),
		stamp:  color("4"),
		null:   color("8"),
		source: color("8").Italic(true),
		levels: [4]lipgloss.Style{
			color("4"),            // trace, debug
			color("2"),            // info
			color("3").Bold(true), // warn
			color("1").Bold(true), // error
		},
	}
}

// level renders the name of l padded to a fixed width.
func (p palette) level(l slog.Level) string {
	return p.levelStyle(l).Render(fmt.Sprintf("%-5s", levelName(l)))
}

func levelName(l slog.Level) string { return strings.ToUpper(Level(l).String()) }

func (p palette) levelStyle(l slog.Level) lipgloss.Style {
	style := p.levels[0]

	switch {
	case l >= slog.LevelError:
		style = p.levels[3]
	case l >= slog.LevelWarn:
		style = p.levels[2]
	case l >= slog.LevelInfo:
		style = p.levels[1]
	}

	return style
}

// value renders v with the style of its kind.
func (p palette) value(v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return p.num.Render(v.String())
	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")
	case slog.KindDuration:
		return p.span.Render(v.Duration().String())
	case slog.KindTime:
		return p.stamp.Render(v.Time().Format(time.RFC3339Nano))
	case slog.KindAny:
		if v.Any() == nil {
			return p.null.Render("null")
		}

		if err, ok := v.Any().(error); ok {
			return p.no.Render(err.Error())
		}
	}

	return p.str.Render(v.String())
}

// pretty carries the state shared by both pretty handlers and their
// derivations.
type pretty struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	palette    palette
	mu         *sync.Mutex
	w          io.Writer
	attrs      []slog.Attr
	group      string
}

func makePretty(w io.Writer, opts *slog.HandlerOptions, formatTime FormatTime) pretty {
	return pretty{
		opts:       *opts,
		formatTime: formatTime,
		palette:    makePalette(w),
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (p pretty) enabled(level slog.Level) bool {
	threshold := slog.LevelInfo
	if p.opts.Level != nil {
		threshold = p.opts.Level.Level()
	}

	return level >= threshold
}

// withAttrs returns p with attrs qualified by the open group and appended.
func (p pretty) withAttrs(attrs []slog.Attr) pretty {
	out := make([]slog.Attr, 0, len(p.attrs)+len(attrs))
	out = append(out, p.attrs...)

	for _, a := range attrs {
		if p.group != "" {
			a.Key = p.group + "." + a.Key
		}

		out = append(out, a)
	}

	p.attrs = out

	return p
}

func (p pretty) withGroup(name string) pretty {
	if name == "" {
		return p
	}

	if p.group != "" {
		name = p.group + "." + name
	}

	p.group = name

	return p
}

// fields flattens the record's attributes, expanding groups into dotted
// keys.
func (p pretty) fields(r slog.Record) []slog.Attr {
	out := append([]slog.Attr(nil), p.attrs...)

	var add func(prefix string, a slog.Attr)

	add = func(prefix string, a slog.Attr) {
		a.Value = a.Value.Resolve()
		if a.Equal(slog.Attr{}) {
			return
		}

		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}

		if a.Value.Kind() == slog.KindGroup {
			for _, ga := range a.Value.Group() {
				add(key, ga)
			}

			return
		}

		a.Key = key
		out = append(out, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		add(p.group, a)

		return true
	})

	return out
}

func (p pretty) source(r slog.Record) string {
	if !p.opts.AddSource || r.PC == 0 {
		return ""
	}

	src := r.Source()
	if src == nil {
		return ""
	}

	return src.File + ":" + strconv.Itoa(src.Line)
}

func (p pretty) write(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.w.Write(b)

	return err
}

// prettyTextHandler writes one aligned line per record:
//
//	TIME LEVEL source message key=value ...
type prettyTextHandler struct{ pretty }

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions, formatTime FormatTime) *prettyTextHandler {
	return &prettyTextHandler{makePretty(w, opts, formatTime)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		if s := h.formatTime(r.Time); s != "" {
			buf.WriteString(h.palette.stamp.Render(s))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(h.palette.level(r.Level))

	if src := h.source(r); src != "" {
		buf.WriteByte(' ')
		buf.WriteString(h.palette.source.Render(src))
	}

	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	for _, a := range h.fields(r) {
		buf.WriteByte(' ')
		buf.WriteString(h.palette.key.Render(a.Key + "="))
		buf.WriteString(h.palette.value(a.Value))
	}

	buf.WriteByte('\n')

	return h.write(buf.Bytes())
}

// prettyJSONHandler writes each record as an indented JSON object whose
// values are styled by kind.
type prettyJSONHandler struct{ pretty }

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions, formatTime FormatTime) *prettyJSONHandler {
	return &prettyJSONHandler{makePretty(w, opts, formatTime)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString("{")

	first := true
	field := func(key, rendered string) {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		buf.WriteString("\n  ")
		buf.WriteString(h.palette.key.Render(strconv.Quote(key)))
		buf.WriteString(": ")
		buf.WriteString(rendered)
	}

	if !r.Time.IsZero() {
		if s := h.formatTime(r.Time); s != "" {
			field(slog.TimeKey, h.palette.stamp.Render(strconv.Quote(s)))
		}
	}

	field(slog.LevelKey, h.palette.levelStyle(r.Level).Render(strconv.Quote(levelName(r.Level))))

	if src := h.source(r); src != "" {
		field(slog.SourceKey, h.palette.source.Render(strconv.Quote(src)))
	}

	field(slog.MessageKey, h.palette.str.Render(strconv.Quote(r.Message)))

	for _, a := range h.fields(r) {
		field(a.Key, h.jsonValue(a.Value))
	}

	buf.WriteString("\n}\n")

	return h.write(buf.Bytes())
}

// jsonValue renders v as a styled JSON literal.
func (h *prettyJSONHandler) jsonValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.palette.str.Render(strconv.Quote(v.String()))
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindBool:
		return h.palette.value(v)
	case slog.KindDuration:
		return h.palette.span.Render(strconv.Quote(v.Duration().String()))
	case slog.KindTime:
		return h.palette.stamp.Render(strconv.Quote(v.Time().Format(time.RFC3339Nano)))
	}

	if err, ok := v.Any().(error); ok {
		return h.palette.no.Render(strconv.Quote(err.Error()))
	}

	data, err := json.Marshal(v.Any())
	if err != nil {
		return h.palette.str.Render(strconv.Quote(v.String()))
	}

	if v.Any() == nil {
		return h.palette.null.Render(string(data))
	}

	return h.palette.str.Render(string(data))
}
