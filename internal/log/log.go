// Package log provides category-tagged structured logging for panekit.
// Logging is off until Init (or InitWithTeaLog) is called, which happens when
// the --debug flag or PANEKIT_DEBUG is set. Every written line is also
// published on a broker so in-app log views can follow along.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/panekit/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a case-insensitive level name to a Level. Unknown names
// fall back to LevelInfo.
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

// Category groups related log messages.
type Category string

const (
	CatRegistry  Category = "registry"  // item kind registration and builds
	CatPane      Category = "pane"      // pane item changes
	CatWorkspace Category = "workspace" // open/close workflows, update loop
	CatProject   Category = "project"   // path resolution and model loads
	CatWatcher   Category = "watcher"   // file watcher events
	CatConfig    Category = "config"    // configuration loading/saving
	CatCache     Category = "cache"     // model cache
	CatUI        Category = "ui"        // outline view
	CatAction    Category = "action"    // action dispatch
)

// Logger writes formatted entries and republishes them.
type Logger struct {
	mu       sync.Mutex
	closer   io.Closer
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Init opens (or creates) the log file at path and installs it as the global
// logger. The returned func closes the file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: user-chosen debug log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	install(newLogger(f, f))
	return func() { _ = f.Close() }, nil
}

// InitWithTeaLog routes logging through tea.LogToFile so bubbletea's own
// debug output lands in the same file.
func InitWithTeaLog(path, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, err
	}
	install(newLogger(f, f))
	return func() { _ = f.Close() }, nil
}

// SetOutput installs a logger writing to w. Intended for tests and for
// embedding panekit in another program.
func SetOutput(w io.Writer) {
	install(newLogger(w, nil))
}

func newLogger(w io.Writer, closer io.Closer) *Logger {
	return &Logger{
		closer:   closer,
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
	}
}

func install(l *Logger) {
	defaultMu.Lock()
	prev := defaultLogger
	defaultLogger = l
	defaultMu.Unlock()
	if prev != nil {
		prev.broker.Close()
	}
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	// 2026-10-19T10:45:00 [ERROR] [workspace] message key=value
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", time.Now().Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	entry := b.String()

	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}
	l.broker.Publish(pubsub.LogEvent, entry)
}

// LogListener wraps a continuous listener for log lines.
type LogListener = pubsub.ContinuousListener[string]

// NewListener creates a listener for log lines, cleaned up when ctx ends.
// Returns nil when logging was never initialized.
func NewListener(ctx context.Context) *LogListener {
	l := current()
	if l == nil {
		return nil
	}
	return pubsub.NewContinuousListener[string](ctx, l.broker)
}

// Subscribe returns a raw channel of log lines, or nil when logging was
// never initialized.
func Subscribe(ctx context.Context) <-chan pubsub.Event[string] {
	l := current()
	if l == nil {
		return nil
	}
	return l.broker.Subscribe(ctx)
}
