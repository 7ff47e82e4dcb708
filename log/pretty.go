package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// palette holds the colors used by the pretty handlers.
type palette struct {
	key, str, num, yes, no, dur, when *color.Color

	levels map[slog.Level]*color.Color
}

func newPalette(enable bool) palette {
	p := palette{
		key:  color.New(color.FgHiBlack),
		str:  color.New(color.FgCyan),
		num:  color.New(color.FgYellow),
		yes:  color.New(color.FgGreen),
		no:   color.New(color.FgRed),
		dur:  color.New(color.FgMagenta),
		when: color.New(color.FgBlue),
		levels: map[slog.Level]*color.Color{
			slog.Level(LevelTrace): color.New(color.FgHiBlack),
			slog.Level(LevelDebug): color.New(color.FgBlue),
			slog.Level(LevelInfo):  color.New(color.FgGreen),
			slog.Level(LevelWarn):  color.New(color.FgYellow),
			slog.Level(LevelError): color.New(color.FgRed, color.Bold),
		},
	}

	for _, c := range p.all() {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

func (p palette) all() []*color.Color {
	all := []*color.Color{p.key, p.str, p.num, p.yes, p.no, p.dur, p.when}
	for _, c := range p.levels {
		all = append(all, c)
	}

	return all
}

// level returns the color of the nearest named level at or below l.
func (p palette) level(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return p.levels[slog.LevelError]
	case l >= slog.LevelWarn:
		return p.levels[slog.LevelWarn]
	case l >= slog.LevelInfo:
		return p.levels[slog.LevelInfo]
	case l >= slog.LevelDebug:
		return p.levels[slog.LevelDebug]
	default:
		return p.levels[slog.Level(LevelTrace)]
	}
}

// scalar renders v with its type color. Groups are flattened by the
// caller.
func (p palette) scalar(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		p.str.Fprint(buf, v.String())

	case slog.KindInt64:
		p.num.Fprint(buf, strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		p.num.Fprint(buf, strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		p.num.Fprint(buf, strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			p.yes.Fprint(buf, "true")
		} else {
			p.no.Fprint(buf, "false")
		}

	case slog.KindDuration:
		p.dur.Fprint(buf, v.Duration().String())

	case slog.KindTime:
		p.when.Fprint(buf, v.Time().Format(time.RFC3339))

	default:
		if v.Any() == nil {
			p.key.Fprint(buf, "null")

			return
		}

		p.str.Fprint(buf, fmt.Sprint(v.Any()))
	}
}

// prettyState is shared by the text and JSON handlers: it accumulates
// attributes added with WithAttrs and the current group prefix.
type prettyState struct {
	opts   slog.HandlerOptions
	colors palette
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

func (s *prettyState) Enabled(_ context.Context, level slog.Level) bool {
	return level >= s.opts.Level.Level()
}

// fields returns every attribute of r, including those bound with
// WithAttrs, with the replacer applied and groups flattened into dotted
// keys.
func (s *prettyState) fields(r slog.Record) []slog.Attr {
	out := make([]slog.Attr, 0, len(s.attrs)+r.NumAttrs()+4)

	builtin := func(a slog.Attr) {
		if s.opts.ReplaceAttr != nil {
			a = s.opts.ReplaceAttr(nil, a)
		}

		if !a.Equal(slog.Attr{}) {
			out = append(out, a)
		}
	}

	if !r.Time.IsZero() {
		builtin(slog.Time(slog.TimeKey, r.Time))
	}

	builtin(slog.Any(slog.LevelKey, r.Level))

	if s.opts.AddSource {
		if src := r.Source(); src != nil {
			builtin(slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	builtin(slog.String(slog.MessageKey, r.Message))

	out = append(out, s.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		out = s.flatten(out, s.groups, a)

		return true
	})

	return out
}

func (s *prettyState) flatten(out []slog.Attr, groups []string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		sub := groups
		if a.Key != "" {
			sub = append(groups[:len(groups):len(groups)], a.Key)
		}

		for _, g := range a.Value.Group() {
			out = s.flatten(out, sub, g)
		}

		return out
	}

	if s.opts.ReplaceAttr != nil {
		a = s.opts.ReplaceAttr(groups, a)
	}

	if a.Equal(slog.Attr{}) {
		return out
	}

	if len(groups) > 0 {
		a.Key = strings.Join(groups, ".") + "." + a.Key
	}

	return append(out, a)
}

func (s *prettyState) withAttrs(attrs []slog.Attr) prettyState {
	c := *s

	c.attrs = s.attrs[:len(s.attrs):len(s.attrs)]
	for _, a := range attrs {
		c.attrs = s.flatten(c.attrs, s.groups, a)
	}

	return c
}

func (s *prettyState) withGroup(name string) prettyState {
	c := *s

	if name != "" {
		c.groups = append(s.groups[:len(s.groups):len(s.groups)], name)
	}

	return c
}

func (s *prettyState) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.w.Write(buf.Bytes())

	return err
}

// value renders a field value, coloring the level by severity.
func (s *prettyState) value(buf *bytes.Buffer, a slog.Attr, level slog.Level) {
	if a.Key == slog.LevelKey {
		s.colors.level(level).Fprint(buf, a.Value.String())

		return
	}

	s.colors.scalar(buf, a.Value)
}

// prettyTextHandler implements a colorized key=value handler.
type prettyTextHandler struct {
	prettyState
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	colors palette,
) *prettyTextHandler {
	return &prettyTextHandler{prettyState{
		opts:   *opts,
		colors: colors,
		mu:     &sync.Mutex{},
		w:      w,
	}}
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	for i, a := range h.fields(r) {
		if i > 0 {
			buf.WriteByte(' ')
		}

		h.colors.key.Fprint(buf, a.Key)
		buf.WriteByte('=')
		h.value(buf, a, r.Level)
	}

	return h.write(buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler implements an indented, colorized JSON-like handler.
// String values are written unquoted.
type prettyJSONHandler struct {
	prettyState
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	colors palette,
) *prettyJSONHandler {
	return &prettyJSONHandler{prettyState{
		opts:   *opts,
		colors: colors,
		mu:     &sync.Mutex{},
		w:      w,
	}}
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	buf.WriteString("{")

	for i, a := range h.fields(r) {
		if i > 0 {
			buf.WriteByte(',')
		}

		buf.WriteString("\n  ")
		h.colors.key.Fprint(buf, a.Key)
		buf.WriteString(": ")
		h.value(buf, a, r.Level)
	}

	buf.WriteString("\n}")

	return h.write(buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
