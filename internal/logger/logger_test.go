package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedLogger(buf *bytes.Buffer) *LoggerManager {
	l := NewWriterLogger(buf)
	l.now = func() time.Time { return time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC) }
	return l
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf)

	l.Info("Row %d", 3)
	l.Warn("skip")
	l.Debug("hidden")
	l.LogError(errors.New("boom"), "Ошибка")
	l.LogError(nil, "ignored")

	want := "[2025-01-20 10:00:00] INFO: Row 3\n" +
		"[2025-01-20 10:00:00] WARN: skip\n" +
		"[2025-01-20 10:00:00] ERROR: Ошибка: boom\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()
	l.SetDebug(true)
	l.Debug("visible")
	if !strings.Contains(buf.String(), "DEBUG: visible") {
		t.Fatalf("debug not written: %q", buf.String())
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *LoggerManager
	l.Info("no panic")
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "run.log")
	l, err := NewLoggerManager(path)
	if err != nil {
		t.Fatalf("NewLoggerManager: %v", err)
	}
	l.console = nil
	l.Info("✅ Wordle solved at %.2f seconds!", 4.5)
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "INFO: ✅ Wordle solved at 4.50 seconds!") {
		t.Fatalf("log file content: %q", data)
	}
}
