package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []Event {
	t.Helper()
	var out []Event
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("bad line %q: %v", line, err)
		}
		out = append(out, ev)
	}
	return out
}

func TestLogger_MinLevel(t *testing.T) {
	tests := []struct {
		name     string
		minLevel Level
		want     int
	}{
		{"debug logs everything", LevelDebug, 4},
		{"info drops debug", LevelInfo, 3},
		{"warn drops debug and info", LevelWarn, 2},
		{"error keeps only errors", LevelError, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&buf)
			l.SetMinLevel(tt.minLevel)
			l.Debug(CategoryInput, "key", "", nil)
			l.Info(CategoryFocus, "focus", "", nil)
			l.Warn(CategoryNavigation, "unknown_app", "", nil)
			l.Error(CategoryConfig, "reload", "", nil)
			if got := len(decodeLines(t, &buf)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestLogger_ForStampsApp(t *testing.T) {
	var buf bytes.Buffer
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	l := New(&buf)
	l.now = func() time.Time { return fixed }

	l.For("counter").Info(CategoryLifecycle, "created", "app created", map[string]any{"state": "running"})

	events := decodeLines(t, &buf)
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	ev := events[0]
	if ev.App != "counter" || ev.Category != CategoryLifecycle || ev.EventType != "created" {
		t.Errorf("event = %+v", ev)
	}
	if !ev.Timestamp.Equal(fixed) {
		t.Errorf("timestamp = %v, want %v", ev.Timestamp, fixed)
	}
	if ev.Details["state"] != "running" {
		t.Errorf("details = %v", ev.Details)
	}
}

func TestLogger_NilIsNoop(t *testing.T) {
	var l *Logger
	l.Info(CategoryRender, "frame", "", nil)
	l.SetMinLevel(LevelDebug)
	if l.For("x") != nil {
		t.Error("For on nil logger should return nil")
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil logger: %v", err)
	}
}

func TestOpenAndReadRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lattice.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 5; i++ {
		l.Info(CategoryScheduler, "op_ready", "", map[string]any{"n": i})
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	events, err := ReadRecentEvents(path, 2)
	if err != nil {
		t.Fatalf("ReadRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if n := events[1].Details["n"]; n != float64(4) {
		t.Errorf("last event n = %v, want 4", n)
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("warn"); err != nil || l != LevelWarn {
		t.Errorf("ParseLevel(warn) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
