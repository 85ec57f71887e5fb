package logger

import (
	"bytes"
	"strings"
	"testing"
)

func stderrConfig(buf *bytes.Buffer) Config {
	return Config{
		Level:   LevelInfo,
		Format:  FormatText,
		Command: "compare",
		Outputs: []OutputConfig{{Type: OutputStderr, Writer: buf}},
	}
}

func TestInit_AttachesRunContext(t *testing.T) {
	t.Setenv(LegacyEnv, "")
	buf := &bytes.Buffer{}

	if err := Init(stderrConfig(buf)); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer Shutdown()

	Get().Info("scan started")
	With("tree", "a").Info("tree scanned")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, "command=compare") || !strings.Contains(line, "run_id=") {
			t.Errorf("record missing run context: %s", line)
		}
	}
	if !strings.Contains(lines[1], "tree=a") {
		t.Errorf("child context missing: %s", lines[1])
	}

	// both records come from the same run
	runID := func(line string) string {
		i := strings.Index(line, "run_id=")
		return strings.Fields(line[i:])[0]
	}
	if runID(lines[0]) != runID(lines[1]) {
		t.Errorf("run ids differ: %s vs %s", runID(lines[0]), runID(lines[1]))
	}
}

func TestInit_Twice(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Init(stderrConfig(buf)); err != nil {
		t.Fatal(err)
	}
	defer Shutdown()

	if err := Init(stderrConfig(buf)); err == nil {
		t.Error("second Init should fail until Shutdown")
	}
}

func TestGet_BeforeInit(t *testing.T) {
	Shutdown()

	l := Get()
	if _, ok := l.(NullLogger); !ok {
		t.Fatalf("Get() before Init = %T, want NullLogger", l)
	}
	l.With("k", "v").Error("discarded")
}

func TestShutdown_Idempotent(t *testing.T) {
	if err := Init(stderrConfig(&bytes.Buffer{})); err != nil {
		t.Fatal(err)
	}
	if err := Shutdown(); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestInit_Legacy(t *testing.T) {
	t.Setenv(LegacyEnv, "true")
	buf := &bytes.Buffer{}

	if err := Init(stderrConfig(buf)); err != nil {
		t.Fatal(err)
	}
	defer Shutdown()

	Get().Debug("hidden")
	With("file", "x.txt").Warn("hash slow", "token", "abc123")

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("debug line printed at info level: %q", got)
	}
	if !strings.HasPrefix(got, "[WARN] hash slow command=compare file=x.txt token=") {
		t.Errorf("unexpected legacy line: %q", got)
	}
	if strings.Contains(got, "abc123") {
		t.Errorf("token not masked: %q", got)
	}
}
