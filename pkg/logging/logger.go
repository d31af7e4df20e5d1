// Package logging writes structured JSONL events. The terminal owns stdout
// while the UI runs, so every diagnostic goes to a file instead.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps a config string to a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if _, ok := levelRank[l]; !ok {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Category represents the subsystem generating the log
type Category string

const (
	CategoryInput      Category = "input"
	CategoryFocus      Category = "focus"
	CategoryNavigation Category = "navigation"
	CategoryLifecycle  Category = "lifecycle"
	CategoryScheduler  Category = "scheduler"
	CategoryBus        Category = "bus"
	CategoryRender     Category = "render"
	CategoryConfig     Category = "config"
)

// Event represents a structured log event
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Category  Category       `json:"category"`
	EventType string         `json:"type"`
	App       string         `json:"app,omitempty"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Logger writes events as one JSON object per line. A nil *Logger discards
// everything, so components hold one unconditionally.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	closer   io.Closer
	app      string
	minLevel Level
	now      func() time.Time
}

// New creates a logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{out: w, minLevel: LevelInfo, now: time.Now}
}

// Open creates a logger appending to the file at path, creating parent
// directories as needed.
func Open(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	l := New(f)
	l.closer = f
	return l, nil
}

// SetMinLevel sets the minimum log level
func (l *Logger) SetMinLevel(level Level) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// For returns a logger that stamps every event with app. It shares the
// parent's writer.
func (l *Logger) For(app string) *Logger {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{out: lockedWriter{l}, app: app, minLevel: l.minLevel, now: l.now}
}

// lockedWriter serializes child loggers through their parent's mutex.
type lockedWriter struct{ parent *Logger }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.parent.mu.Lock()
	defer w.parent.mu.Unlock()
	return w.parent.out.Write(p)
}

// Log writes an event.
func (l *Logger) Log(event Event) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	if levelRank[event.Level] < levelRank[l.minLevel] {
		l.mu.Unlock()
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}
	if event.App == "" {
		event.App = l.app
	}
	out := l.out
	l.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}

// Debug logs a debug event
func (l *Logger) Debug(category Category, eventType, message string, details map[string]any) {
	_ = l.Log(Event{Level: LevelDebug, Category: category, EventType: eventType, Message: message, Details: details})
}

// Info logs an info event
func (l *Logger) Info(category Category, eventType, message string, details map[string]any) {
	_ = l.Log(Event{Level: LevelInfo, Category: category, EventType: eventType, Message: message, Details: details})
}

// Warn logs a warning event
func (l *Logger) Warn(category Category, eventType, message string, details map[string]any) {
	_ = l.Log(Event{Level: LevelWarn, Category: category, EventType: eventType, Message: message, Details: details})
}

// Error logs an error event
func (l *Logger) Error(category Category, eventType, message string, details map[string]any) {
	_ = l.Log(Event{Level: LevelError, Category: category, EventType: eventType, Message: message, Details: details})
}

// Close closes the underlying file, if the logger opened one.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closer.Close()
}

// ReadRecentEvents reads the last count events from a log file.
func ReadRecentEvents(logPath string, count int) ([]Event, error) {
	file, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	defer file.Close()

	var events []Event
	decoder := json.NewDecoder(file)
	for {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			break
		}
		events = append(events, event)
	}
	if len(events) > count {
		events = events[len(events)-count:]
	}
	return events, nil
}
