// =============================================================================
// Invoice Sync - Console Logging
// =============================================================================
//
// Every component logs through the Logger interface. The console
// implementation prints through pterm prefix printers so diagnostics share
// the look of the rest of the CLI output. Tests use Recorder.
//
// =============================================================================

package logging

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pterm/pterm"
)

// Logger is the logging interface used across the application.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level. Unknown values map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// =============================================================================
// CONSOLE LOGGER
// =============================================================================

// Console writes to the terminal through pterm.
type Console struct {
	level Level
}

// NewConsole creates a console logger that drops messages below level.
func NewConsole(level Level) *Console {
	if level == LevelDebug {
		pterm.EnableDebugMessages()
	}
	return &Console{level: level}
}

func (c *Console) Debug(msg string, args ...interface{}) {
	if c.level <= LevelDebug {
		pterm.Debug.Printfln(msg, args...)
	}
}

func (c *Console) Info(msg string, args ...interface{}) {
	if c.level <= LevelInfo {
		pterm.Info.Printfln(msg, args...)
	}
}

func (c *Console) Warn(msg string, args ...interface{}) {
	if c.level <= LevelWarn {
		pterm.Warning.Printfln(msg, args...)
	}
}

func (c *Console) Error(msg string, args ...interface{}) {
	pterm.Error.Printfln(msg, args...)
}

// =============================================================================
// RECORDER
// =============================================================================

// Entry is one recorded log line.
type Entry struct {
	Level   Level
	Message string
}

// Recorder keeps log lines in memory. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(level Level, msg string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: fmt.Sprintf(msg, args...)})
}

func (r *Recorder) Debug(msg string, args ...interface{}) { r.record(LevelDebug, msg, args...) }
func (r *Recorder) Info(msg string, args ...interface{})  { r.record(LevelInfo, msg, args...) }
func (r *Recorder) Warn(msg string, args ...interface{})  { r.record(LevelWarn, msg, args...) }
func (r *Recorder) Error(msg string, args ...interface{}) { r.record(LevelError, msg, args...) }

// Entries returns a copy of the recorded lines.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Contains reports whether any line at level contains substr.
func (r *Recorder) Contains(level Level, substr string) bool {
	for _, e := range r.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
