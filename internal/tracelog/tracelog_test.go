package tracelog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTraceWritesEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New(true, &buf)

	l.Trace("gathering files", "root", "/w", "count", 3)

	lines := splitLines(t, buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var e struct {
		Ts    string `json:"ts"`
		Level string `json:"level"`
		Event string `json:"event"`
		Root  string `json:"root"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Level != "trace" {
		t.Errorf("level = %q, want %q", e.Level, "trace")
	}
	if e.Event != "gathering files" {
		t.Errorf("event = %q, want %q", e.Event, "gathering files")
	}
	if e.Root != "/w" || e.Count != 3 {
		t.Errorf("fields = %q/%d, want /w/3", e.Root, e.Count)
	}
	if e.Ts == "" {
		t.Error("expected ts field to be present")
	}
}

func TestWarnLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(true, &buf)

	l.Warn("workspace root does not exist", "root", "/missing")

	var e struct {
		Level string `json:"level"`
	}
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Level != "warn" {
		t.Errorf("level = %q, want %q", e.Level, "warn")
	}
}

func TestDisabledLoggerIsNoop(t *testing.T) {
	var buf bytes.Buffer
	l := New(false, &buf)

	l.Trace("event")
	l.Warn("event")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	// Should not panic.
	l.Trace("event", "k", "v")
	l.Warn("event")
	if l.Enabled() {
		t.Error("nil logger should not report enabled")
	}
}

func TestNopLoggerIsNoop(t *testing.T) {
	l := Nop()
	l.Trace("event")
	l.Warn("event")
	if l.Enabled() {
		t.Error("nop logger should not report enabled")
	}
}

func TestOddKvPairsIgnoredTail(t *testing.T) {
	var buf bytes.Buffer
	l := New(true, &buf)

	l.Trace("event", "key", "value", "dangling")

	if strings.Contains(buf.String(), "dangling") {
		t.Errorf("dangling key should be dropped, got %q", buf.String())
	}
}

func TestMultipleEntries(t *testing.T) {
	var buf bytes.Buffer
	l := New(true, &buf)

	l.Trace("one")
	l.Trace("two")
	l.Warn("three")

	lines := splitLines(t, buf.String())
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
}

func splitLines(t *testing.T, raw string) []string {
	t.Helper()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}
