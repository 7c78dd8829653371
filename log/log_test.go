package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mylog" {
		t.Errorf("got %q, want /tmp/mylog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("PULSE_LOG_PATH", "/tmp/pulse-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/pulse-env-log" {
		t.Errorf("got %q, want /tmp/pulse-env-log", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("PULSE_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got == "" {
		t.Error("expected non-empty default directory")
	}
}

func TestInitCreatesFile(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(tmp, "metronome_log.txt")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("metronome_log.txt not created: %v", err)
	}
}

func TestSessionLogging(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}
	SessionStart(120, 4, true)
	SessionEnd(16)
	Close()

	data, err := os.ReadFile(filepath.Join(tmp, "metronome_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "session_start") {
		t.Errorf("missing session_start, got: %q", text)
	}
	if !strings.Contains(text, "session_end") {
		t.Errorf("missing session_end, got: %q", text)
	}
}

func TestLoggingBeforeInitIsNoop(t *testing.T) {
	Close()
	Info("dropped")
	Errorf("also dropped: %d", 7) // must not panic
}

func TestCloseIdempotent(t *testing.T) {
	setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Close()
	Close() // should not panic
}
