package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LegacyLogger prints "[LEVEL] msg key=value" lines to stderr.
// It is the fallback selected by DEVKIT_USE_LEGACY_LOGGER=true.
type LegacyLogger struct {
	out       io.Writer
	mu        *sync.Mutex
	level     Level
	fields    []any
	sanitizer *Sanitizer
}

// NewLegacyLogger creates a legacy logger; a nil out means stderr
func NewLegacyLogger(out io.Writer, level Level) *LegacyLogger {
	if out == nil {
		out = os.Stderr
	}
	return &LegacyLogger{
		out:       out,
		mu:        &sync.Mutex{},
		level:     level,
		sanitizer: NewSanitizer(),
	}
}

func (l *LegacyLogger) log(level Level, tag, msg string, args []any) {
	if level < l.level {
		return
	}
	fields := append(append([]any{}, l.fields...), l.sanitizer.SanitizeArgs(args)...)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[%s] %s", tag, l.sanitizer.Sanitize(msg))
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(l.out, " %v=%v", fields[i], fields[i+1])
	}
	fmt.Fprintln(l.out)
}

func (l *LegacyLogger) Debug(msg string, args ...any) { l.log(LevelDebug, "DEBUG", msg, args) }
func (l *LegacyLogger) Info(msg string, args ...any)  { l.log(LevelInfo, "INFO", msg, args) }
func (l *LegacyLogger) Warn(msg string, args ...any)  { l.log(LevelWarn, "WARN", msg, args) }
func (l *LegacyLogger) Error(msg string, args ...any) { l.log(LevelError, "ERROR", msg, args) }

// With returns a logger that prefixes args to every line
func (l *LegacyLogger) With(args ...any) Logger {
	child := *l
	child.fields = append(append([]any{}, l.fields...), l.sanitizer.SanitizeArgs(args)...)
	return &child
}

func (l *LegacyLogger) Shutdown() error {
	return nil
}
