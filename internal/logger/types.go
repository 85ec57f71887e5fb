package logger

import (
	"io"
	"strings"
)

// Logger is the structured logger every command writes through.
// Reports go to stdout; loggers only ever write to stderr or a file.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	Shutdown() error
}

// Level 日誌級別
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel parses a level name; unknown names mean info
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
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

// Format 日誌格式
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// ParseFormat parses "text" or "json"; anything else is text
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatText
}

// Output is a log destination
type Output int

const (
	OutputStderr Output = iota
	OutputFile
)

// Config describes one process logger
type Config struct {
	Level  Level
	Format Format

	// Command is attached to every record as "command"
	Command string
	// RunID is attached to every record as "run_id"; generated when empty
	RunID string

	Outputs []OutputConfig
	File    FileConfig
}

// OutputConfig selects a destination. Writer replaces stderr in tests.
type OutputConfig struct {
	Type   Output
	Writer io.Writer
}

// FileConfig controls the rotated log file
type FileConfig struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

// stderrWriter returns the writer standing in for stderr
func (c Config) stderrWriter() io.Writer {
	for _, o := range c.Outputs {
		if o.Type == OutputStderr && o.Writer != nil {
			return o.Writer
		}
	}
	return nil
}
