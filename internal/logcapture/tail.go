package logcapture

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// Tail keeps the last lines written to it, for attaching subprocess output
// to an error.
type Tail struct {
	max int

	mu      sync.Mutex
	lines   []string
	partial []byte
}

// NewTail creates a Tail holding at most max lines.
func NewTail(max int) *Tail {
	if max <= 0 {
		max = 20
	}
	return &Tail{max: max}
}

// Tee returns a writer that writes to both t and w. A nil w yields t.
func (t *Tail) Tee(w io.Writer) io.Writer {
	if w == nil {
		return t
	}
	return io.MultiWriter(t, w)
}

func (t *Tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.partial = append(t.partial, p...)
	for {
		i := bytes.IndexByte(t.partial, '\n')
		if i < 0 {
			break
		}
		t.push(string(t.partial[:i]))
		t.partial = t.partial[i+1:]
	}
	return len(p), nil
}

func (t *Tail) push(line string) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

// String returns the kept lines joined by newlines, including any trailing
// partial line.
func (t *Tail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := t.lines
	if len(t.partial) > 0 {
		lines = append(append([]string{}, lines...), string(t.partial))
	}
	return strings.Join(lines, "\n")
}
