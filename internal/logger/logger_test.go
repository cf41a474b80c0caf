package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestLogger creates a temp log file and initializes the logger with it.
func setupTestLogger(t *testing.T) string {
	t.Helper()
	Reset()

	logPath := filepath.Join(t.TempDir(), "legalia-test.log")
	if err := Init(logPath); err != nil {
		t.Fatalf("Failed to init logger: %v", err)
	}
	t.Cleanup(Reset)
	return logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestInit_WritesHeader(t *testing.T) {
	logPath := setupTestLogger(t)

	if Path() != logPath {
		t.Errorf("Path() = %q, want %q", Path(), logPath)
	}
	if !strings.Contains(readLog(t, logPath), "Logger initialized") {
		t.Error("log file should contain the init line")
	}
}

func TestInit_InvalidPath(t *testing.T) {
	Reset()
	defer Reset()

	err := Init(filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	if err == nil {
		t.Error("Init should fail for a path in a missing directory")
	}
}

func TestLevels(t *testing.T) {
	logPath := setupTestLogger(t)

	Debug("debug-hidden-marker")
	Info("info-marker %d", 1)
	Warn("warn-marker %s", "x")
	Error("error-marker")

	content := readLog(t, logPath)
	if strings.Contains(content, "debug-hidden-marker") {
		t.Error("debug message should be filtered at info level")
	}
	for _, want := range []string{"info-marker 1", "warn-marker x", "error-marker"} {
		if !strings.Contains(content, want) {
			t.Errorf("log should contain %q", want)
		}
	}

	SetDebug(true)
	Debug("debug-visible-marker")
	if !strings.Contains(readLog(t, logPath), "debug-visible-marker") {
		t.Error("debug message should be written after SetDebug(true)")
	}
}

func TestSetLevel_Quiet(t *testing.T) {
	logPath := setupTestLogger(t)

	SetLevel(LevelError)
	Warn("quiet-warn-marker")
	Error("quiet-error-marker")

	content := readLog(t, logPath)
	if strings.Contains(content, "quiet-warn-marker") {
		t.Error("warn should be suppressed at error level")
	}
	if !strings.Contains(content, "quiet-error-marker") {
		t.Error("error should still be written")
	}
}

func TestWithComponent(t *testing.T) {
	logPath := setupTestLogger(t)

	WithComponent("completion").Info("request sent", "model", "m1")
	WithRequest("abc-123").Info("resolved")

	content := readLog(t, logPath)
	if !strings.Contains(content, "component=completion") {
		t.Error("component attribute missing")
	}
	if !strings.Contains(content, "correlationID=abc-123") {
		t.Error("correlationID attribute missing")
	}
}

func TestWithComponent_AfterClose(t *testing.T) {
	setupTestLogger(t)
	Close()

	// Must not panic when the underlying file is gone.
	WithComponent("ui").Info("ignored")
	Info("ignored too")
}

func TestLog_Concurrent(t *testing.T) {
	setupTestLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				Info("concurrent test %d-%d", n, j)
			}
		}(i)
	}
	wg.Wait()
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	logPath1 := filepath.Join(dir, "log1.log")
	logPath2 := filepath.Join(dir, "log2.log")

	Reset()
	if err := Init(logPath1); err != nil {
		t.Fatalf("Failed to init logger: %v", err)
	}
	Info("message to log1")

	Reset()
	if err := Init(logPath2); err != nil {
		t.Fatalf("Failed to reinit logger: %v", err)
	}
	Info("message to log2")
	defer Reset()

	if strings.Contains(readLog(t, logPath1), "message to log2") {
		t.Error("log1 should not contain log2's message")
	}
	if !strings.Contains(readLog(t, logPath2), "message to log2") {
		t.Error("log2 should contain its message")
	}
}

func TestClearLogs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"legalia-debug.log", "legalia-headless.log", "other.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	count, err := ClearLogs(dir)
	if err != nil {
		t.Fatalf("ClearLogs() error = %v", err)
	}
	if count != 2 {
		t.Errorf("ClearLogs() = %d, want 2", count)
	}
	if _, err := os.Stat(filepath.Join(dir, "other.log")); err != nil {
		t.Error("unrelated log file should be kept")
	}
}

func TestDefaultPaths(t *testing.T) {
	if !strings.HasPrefix(filepath.Base(DefaultLogPath()), "legalia-") {
		t.Errorf("DefaultLogPath() = %q", DefaultLogPath())
	}
	if DefaultLogPath() == HeadlessLogPath() {
		t.Error("headless and TUI logs should differ")
	}
}
