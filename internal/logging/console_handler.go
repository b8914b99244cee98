package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders a record as a header line followed by one indented
// line per field:
//
//	2024-03-09 14:05:07 INFO [convert] – conversion finished
//	    - file: export.json
//	    - records: 2
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	addSource bool

	prefix    string
	component string
	fields    fieldList
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	fields := h.fields.clone()
	component := h.component
	r.Attrs(func(a slog.Attr) bool {
		component = h.collect(&fields, h.prefix, a, component)
		return true
	})

	var buf bytes.Buffer
	h.writeHeader(&buf, r, component)
	for _, f := range fields {
		buf.WriteString("    - ")
		buf.WriteString(f.key)
		buf.WriteString(": ")
		buf.WriteString(fieldValue(f.value))
		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = h.fields.clone()
	for _, a := range attrs {
		next.component = h.collect(&next.fields, h.prefix, a, next.component)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.fields = h.fields.clone()
	next.prefix = h.prefix + name + "."
	return &next
}

// collect flattens a into fields under prefix and returns the component tag,
// which is taken from the first top-level component attribute.
func (h *consoleHandler) collect(fields *fieldList, prefix string, a slog.Attr, component string) string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return component
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, member := range a.Value.Group() {
			component = h.collect(fields, inner, member, component)
		}
		return component
	}

	key := prefix + a.Key
	if a.Key == "" {
		key = strings.TrimSuffix(prefix, ".")
	}
	switch {
	case key == "":
		return component
	case key == FieldComponent:
		if component == "" {
			component = plainValue(a.Value)
		}
		return component
	case key == FieldRunID && !h.addSource:
		// hidden on an interactive terminal; the run log keeps it
		return component
	}
	fields.set(key, a.Value)
	return component
}

func (h *consoleHandler) writeHeader(buf *bytes.Buffer, r slog.Record, component string) {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.WriteString(consoleTime(ts))
	buf.WriteByte(' ')
	buf.WriteString(levelName(r.Level))
	if component != "" {
		fmt.Fprintf(buf, " [%s]", component)
	}
	buf.WriteString(" – ")
	if msg := strings.TrimSpace(r.Message); msg != "" {
		buf.WriteString(msg)
	} else {
		buf.WriteString("(no message)")
	}
	if h.addSource {
		if src := recordSource(r); src != nil && src.File != "" {
			fmt.Fprintf(buf, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	buf.WriteByte('\n')
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

type field struct {
	key   string
	value slog.Value
}

// fieldList keeps fields in first-seen order; a repeated key overwrites the
// earlier value in place.
type fieldList []field

func (l *fieldList) set(key string, value slog.Value) {
	for i := range *l {
		if (*l)[i].key == key {
			(*l)[i].value = value
			return
		}
	}
	*l = append(*l, field{key: key, value: value})
}

func (l fieldList) clone() fieldList {
	return append(fieldList(nil), l...)
}

// recordSource mirrors slog.Record.Source (Go 1.25+) for older toolchains.
func recordSource(r slog.Record) *slog.Source {
	if r.PC == 0 {
		return nil
	}
	fs := runtime.CallersFrames([]uintptr{r.PC})
	f, _ := fs.Next()
	return &slog.Source{Function: f.Function, File: f.File, Line: f.Line}
}
