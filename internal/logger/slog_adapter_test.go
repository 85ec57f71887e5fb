package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, level Level, format Format) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	l, err := NewSlogLogger(Config{
		Level:   level,
		Format:  format,
		Command: "telegram post",
		RunID:   "run-1",
		Outputs: []OutputConfig{{Type: OutputStderr, Writer: buf}},
	})
	if err != nil {
		t.Fatalf("NewSlogLogger() error = %v", err)
	}
	t.Cleanup(func() { l.Shutdown() })
	return l, buf
}

func TestSlogLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		log       func(Logger)
		shouldLog bool
	}{
		{"debug at debug level", LevelDebug, func(l Logger) { l.Debug("chunk hashed") }, true},
		{"debug at info level", LevelInfo, func(l Logger) { l.Debug("chunk hashed") }, false},
		{"info at warn level", LevelWarn, func(l Logger) { l.Info("scan done") }, false},
		{"error at warn level", LevelWarn, func(l Logger) { l.Error("download failed") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newTestLogger(t, tt.level, FormatText)
			tt.log(l)
			if hasLog := buf.Len() > 0; hasLog != tt.shouldLog {
				t.Errorf("shouldLog=%v, got output %q", tt.shouldLog, buf.String())
			}
		})
	}
}

func TestSlogLogger_JSONCarriesRunContext(t *testing.T) {
	l, buf := newTestLogger(t, LevelInfo, FormatJSON)
	l.Info("posted", "chat_id", "@channel")

	out := buf.String()
	for _, want := range []string{`"msg":"posted"`, `"run_id":"run-1"`, `"command":"telegram post"`, `"chat_id":"@channel"`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON output missing %s: %s", want, out)
		}
	}
	if l.RunID() != "run-1" {
		t.Errorf("RunID() = %q", l.RunID())
	}
}

func TestSlogLogger_GeneratesRunID(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := NewSlogLogger(Config{Outputs: []OutputConfig{{Type: OutputStderr, Writer: buf}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(l.RunID()) != 36 {
		t.Errorf("RunID() = %q, want a uuid", l.RunID())
	}
	l.Info("x")
	if strings.Contains(buf.String(), "command=") {
		t.Errorf("command should be omitted when unset: %s", buf.String())
	}
}

func TestSlogLogger_MasksBotToken(t *testing.T) {
	l, buf := newTestLogger(t, LevelInfo, FormatText)

	apiErr := errors.New(`Post "https://api.telegram.org/bot123456:AA-secret_x/sendPhoto": EOF`)
	l.With("method", "sendPhoto").Error("Bot API call failed", "error", apiErr)
	l.Info("resolved token", "token", "123456:AA-secret_x")

	out := buf.String()
	if strings.Contains(out, "AA-secret_x") {
		t.Errorf("bot token leaked: %s", out)
	}
	if !strings.Contains(out, "/bot***/sendPhoto") {
		t.Errorf("masked URL missing: %s", out)
	}
	if !strings.Contains(out, "method=sendPhoto") {
		t.Errorf("child context missing: %s", out)
	}
}

func TestSlogLogger_FileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "devkit.log")
	buf := &bytes.Buffer{}

	l, err := NewSlogLogger(Config{
		Level:  LevelInfo,
		Format: FormatText,
		File:   FileConfig{Enabled: true, Path: logPath, MaxSizeMB: 1, MaxAgeDays: 7, MaxBackups: 3},
		Outputs: []OutputConfig{
			{Type: OutputStderr, Writer: buf},
			{Type: OutputFile},
		},
	})
	if err != nil {
		t.Fatalf("NewSlogLogger() error = %v", err)
	}

	l.Info("assets downloaded", "files", 3)
	if err := l.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "assets downloaded") {
		t.Errorf("log file missing message: %s", content)
	}
	if !strings.Contains(buf.String(), "assets downloaded") {
		t.Errorf("stderr missing message: %s", buf.String())
	}
}

func TestSlogLogger_EmptyFilePath(t *testing.T) {
	_, err := NewSlogLogger(Config{
		File:    FileConfig{Enabled: true},
		Outputs: []OutputConfig{{Type: OutputFile}},
	})
	if err == nil {
		t.Error("expected error for empty log file path")
	}
}
