// Package logcapture records slog output for one install so it can be
// returned to the caller alongside the install status.
package logcapture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/spachava753/jumpstart/internal/models"
)

// bannerPrefix marks decorative lines emitted by the publisher.
const bannerPrefix = "#####"

// Buffer accumulates log entries at or above a level.
type Buffer struct {
	level slog.Leveler

	mu      sync.Mutex
	entries []models.LogEntry
}

// NewBuffer creates a Buffer recording records at level and above.
func NewBuffer(level slog.Leveler) *Buffer {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Buffer{level: level}
}

// Handler returns a slog.Handler that writes into b.
func (b *Buffer) Handler() slog.Handler {
	return &bufferHandler{buf: b}
}

// Entries returns a copy of the recorded entries.
func (b *Buffer) Entries() []models.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Clean strips ANSI escapes and surrounding whitespace from a line. It
// returns false for lines that should not be recorded.
func Clean(line string) (string, bool) {
	line = strings.TrimSpace(ansi.Strip(line))
	if line == "" || strings.HasPrefix(line, bannerPrefix) {
		return "", false
	}
	return line, true
}

func (b *Buffer) add(r slog.Record, msg string) {
	b.mu.Lock()
	b.entries = append(b.entries, models.LogEntry{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: msg,
	})
	b.mu.Unlock()
}

// attrBatch is a set of attrs bound with WithAttrs under the group path
// open at that time.
type attrBatch struct {
	prefix string
	attrs  []slog.Attr
}

type bufferHandler struct {
	buf     *Buffer
	batches []attrBatch
	groups  []string
}

func (h *bufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.buf.level.Level()
}

func (h *bufferHandler) Handle(_ context.Context, r slog.Record) error {
	msg, ok := Clean(r.Message)
	if !ok {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(msg)
	for _, b := range h.batches {
		for _, a := range b.attrs {
			writeAttr(&sb, b.prefix, a)
		}
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, prefix, a)
		return true
	})

	h.buf.add(r, sb.String())
	return nil
}

func (h *bufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.batches = append(append([]attrBatch{}, h.batches...), attrBatch{
		prefix: strings.Join(h.groups, "."),
		attrs:  append([]slog.Attr{}, attrs...),
	})
	return &next
}

func (h *bufferHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
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
			writeAttr(sb, key, ga)
		}
		return
	}
	fmt.Fprintf(sb, " %s=%v", key, a.Value.Any())
}
