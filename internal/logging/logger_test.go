package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPrintfAppendsTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "teleflow.log")
	l, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }

	l.Printf("archived call %d\n", 42)
	l.Printf("coach: %s", "timeout")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), data)
	}
	if lines[0] != "[2026-05-04T10:00:00Z] archived call 42" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "coach: timeout") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Printf("dropped %d", 1)
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil = %v", err)
	}
}

func TestPrintfAfterCloseIsDropped(t *testing.T) {
	l, err := New(filepath.Join(t.TempDir(), "teleflow.log"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Close()
	l.Printf("late line")
	if err := l.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}
