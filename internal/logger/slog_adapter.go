package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SlogLogger writes sanitized records through log/slog
type SlogLogger struct {
	logger    *slog.Logger
	sanitizer *Sanitizer
	runID     string

	// closers is only set on the root logger; children share its writers
	closers []io.Closer
}

// NewSlogLogger builds a logger writing to stderr and, when enabled, a
// rotated file. Every record carries run_id and, when set, command.
func NewSlogLogger(config Config) (*SlogLogger, error) {
	var writers []io.Writer
	var closers []io.Closer

	for _, output := range config.Outputs {
		switch output.Type {
		case OutputStderr:
			if output.Writer != nil {
				writers = append(writers, output.Writer)
			} else {
				writers = append(writers, os.Stderr)
			}
		case OutputFile:
			if !config.File.Enabled {
				continue
			}
			fw, err := createFileWriter(config.File)
			if err != nil {
				return nil, fmt.Errorf("failed to create file writer: %w", err)
			}
			writers = append(writers, fw)
			closers = append(closers, fw)
		}
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	w := io.MultiWriter(writers...)
	opts := &slog.HandlerOptions{Level: convertLevel(config.Level)}

	var handler slog.Handler
	if config.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	runID := config.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	base := slog.New(handler).With("run_id", runID)
	if config.Command != "" {
		base = base.With("command", config.Command)
	}

	return &SlogLogger{
		logger:    base,
		sanitizer: NewSanitizer(),
		runID:     runID,
		closers:   closers,
	}, nil
}

// createFileWriter 建立檔案 writer（lumberjack rotation）
func createFileWriter(config FileConfig) (io.WriteCloser, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("log file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    config.MaxSizeMB,
		MaxAge:     config.MaxAgeDays,
		MaxBackups: config.MaxBackups,
		Compress:   config.Compress,
	}, nil
}

func convertLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RunID returns the id attached to every record
func (l *SlogLogger) RunID() string {
	return l.runID
}

func (l *SlogLogger) log(level slog.Level, msg string, args []any) {
	l.logger.Log(context.Background(), level, l.sanitizer.Sanitize(msg), l.sanitizer.SanitizeArgs(args)...)
}

func (l *SlogLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *SlogLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

// With returns a child sharing the writers; closing it is a no-op
func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{
		logger:    l.logger.With(l.sanitizer.SanitizeArgs(args)...),
		sanitizer: l.sanitizer,
		runID:     l.runID,
	}
}

// Shutdown closes the log file, if any
func (l *SlogLogger) Shutdown() error {
	var lastErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			lastErr = err
		}
	}
	l.closers = nil
	return lastErr
}
