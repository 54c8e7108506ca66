package logcapture

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestBuffer_Levels(t *testing.T) {
	buf := NewBuffer(slog.LevelInfo)
	logger := slog.New(buf.Handler())

	logger.Debug("hidden")
	logger.Info("deploying", "workspace_id", "ws-1")
	logger.Warn("slow")

	entries := buf.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Message != "deploying workspace_id=ws-1" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
	if entries[1].Level != "WARN" {
		t.Errorf("expected WARN, got %s", entries[1].Level)
	}

	debug := NewBuffer(slog.LevelDebug)
	slog.New(debug.Handler()).Debug("visible")
	if len(debug.Entries()) != 1 {
		t.Error("debug buffer should record debug entries")
	}
}

func TestBuffer_FiltersBannersAndANSI(t *testing.T) {
	buf := NewBuffer(slog.LevelInfo)
	logger := slog.New(buf.Handler())

	logger.Info("########## Publishing ##########")
	logger.Info("\x1b[32mPublished Notebook1\x1b[0m")
	logger.Info("   ")

	entries := buf.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %+v", entries)
	}
	if entries[0].Message != "Published Notebook1" {
		t.Errorf("expected ANSI stripped, got %q", entries[0].Message)
	}
}

func TestBuffer_AttrsAndGroups(t *testing.T) {
	buf := NewBuffer(slog.LevelInfo)
	logger := slog.New(buf.Handler()).With("jumpstart", "demo-a").WithGroup("phase")

	logger.Info("done", "name", "deploying")

	got := buf.Entries()[0].Message
	if got != "done jumpstart=demo-a phase.name=deploying" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestBuffer_AttrsKeepTheirGroup(t *testing.T) {
	buf := NewBuffer(slog.LevelInfo)
	logger := slog.New(buf.Handler()).
		With("jumpstart", "demo-a").
		WithGroup("phase").
		With("name", "deploying").
		WithGroup("publisher")

	logger.Info("line", "exit", 0)

	got := buf.Entries()[0].Message
	if got != "line jumpstart=demo-a phase.name=deploying phase.publisher.exit=0" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestFanout(t *testing.T) {
	var out bytes.Buffer
	text := slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelWarn})
	buf := NewBuffer(slog.LevelDebug)

	logger := slog.New(Fanout(text, buf.Handler()))
	logger.Debug("only captured")
	logger.Warn("both")

	if len(buf.Entries()) != 2 {
		t.Errorf("expected buffer to capture 2 entries, got %d", len(buf.Entries()))
	}
	if strings.Contains(out.String(), "only captured") || !strings.Contains(out.String(), "both") {
		t.Errorf("text handler got unexpected output %q", out.String())
	}
}

func TestWriter(t *testing.T) {
	buf := NewBuffer(slog.LevelInfo)
	w := NewWriter(slog.New(buf.Handler()), slog.LevelInfo)

	w.Write([]byte("line one\n##### banner\nline "))
	w.Write([]byte("two\npartial"))
	w.Flush()

	var msgs []string
	for _, e := range buf.Entries() {
		msgs = append(msgs, e.Message)
	}
	want := []string{"line one", "line two", "partial"}
	if strings.Join(msgs, "|") != strings.Join(want, "|") {
		t.Errorf("got %v, want %v", msgs, want)
	}
}
