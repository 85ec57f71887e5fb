package logger

import (
	"fmt"
	"os"
	"sync"
)

// LegacyEnv selects the plain-text fallback logger when set to "true"
const LegacyEnv = "DEVKIT_USE_LEGACY_LOGGER"

var (
	defaultLogger Logger
	mu            sync.RWMutex
	initialized   bool
)

// Init 初始化全域 logger
func Init(config Config) error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return fmt.Errorf("logger already initialized; call Shutdown() before re-initializing")
	}

	if os.Getenv(LegacyEnv) == "true" {
		var l Logger = NewLegacyLogger(config.stderrWriter(), config.Level)
		if config.Command != "" {
			l = l.With("command", config.Command)
		}
		defaultLogger = l
		initialized = true
		return nil
	}

	l, err := NewSlogLogger(config)
	if err != nil {
		return fmt.Errorf("failed to create slog logger: %w", err)
	}
	defaultLogger = l
	initialized = true
	return nil
}

// Get returns the process logger, or a NullLogger before Init
func Get() Logger {
	mu.RLock()
	defer mu.RUnlock()

	if !initialized {
		return NullLogger{}
	}
	return defaultLogger
}

// With 建立帶 context 的子 logger
func With(args ...any) Logger {
	return Get().With(args...)
}

// Shutdown closes the process logger; later Get calls return a NullLogger
func Shutdown() error {
	mu.Lock()
	if !initialized {
		mu.Unlock()
		return nil
	}
	l := defaultLogger
	defaultLogger = nil
	initialized = false
	mu.Unlock()

	return l.Shutdown()
}

// NullLogger discards everything
type NullLogger struct{}

func (NullLogger) Debug(msg string, args ...any) {}
func (NullLogger) Info(msg string, args ...any)  {}
func (NullLogger) Warn(msg string, args ...any)  {}
func (NullLogger) Error(msg string, args ...any) {}
func (n NullLogger) With(args ...any) Logger     { return n }
func (NullLogger) Shutdown() error               { return nil }
