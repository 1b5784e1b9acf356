package debug

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// useTempLogPath redirects the log file into a temp dir for the duration of the test.
func useTempLogPath(t *testing.T) string {
	t.Helper()
	resetForTest()
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, LogDirName, LogFileName)
	orig := getLogPath
	getLogPath = func() (string, error) { return logPath, nil }
	t.Cleanup(func() {
		Close()
		getLogPath = orig
		resetForTest()
	})
	return logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	_ = Logger().Sync()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestInitDisabledIsNoop(t *testing.T) {
	resetForTest()
	if err := Init(false); err != nil {
		t.Fatalf("Init(false) failed: %v", err)
	}
	if Enabled() {
		t.Fatal("expected logging to be disabled")
	}
	if Logger() == nil {
		t.Fatal("expected a no-op logger, got nil")
	}
	Log("ignored")
	Logf("ignored %d", 1)
	Logger().Warn("ignored", zap.Int("n", 1))
}

func TestInitEnabledWritesMessages(t *testing.T) {
	logPath := useTempLogPath(t)

	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}
	if !Enabled() {
		t.Fatal("expected logging to be enabled")
	}

	Log("plain message")
	Logf("formatted %s %d", "value", 42)
	Logger().Warn("request failed", zap.String("request", "records.list"), zap.Error(errors.New("network")))

	content := readLog(t, logPath)
	for _, want := range []string{"debug log started", "plain message", "formatted value 42", "records.list", "network"} {
		if !strings.Contains(content, want) {
			t.Errorf("expected log to contain %q\n%s", want, content)
		}
	}
}

func TestInitTruncatesExistingLog(t *testing.T) {
	logPath := useTempLogPath(t)

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(logPath, []byte("stale content from last launch\n"), 0600); err != nil {
		t.Fatalf("seed log: %v", err)
	}

	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}

	content := readLog(t, logPath)
	if strings.Contains(content, "stale content") {
		t.Fatal("expected previous log content to be truncated")
	}
}

func TestCloseIsRepeatable(t *testing.T) {
	useTempLogPath(t)
	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}
	Close()
	Close()
	if Enabled() {
		t.Fatal("expected Close to disable logging")
	}
}

func TestGetLogPathSuffix(t *testing.T) {
	path, err := GetLogPath()
	if err != nil {
		t.Fatalf("GetLogPath() failed: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join(LogDirName, LogFileName)) {
		t.Errorf("GetLogPath() = %q, want suffix %q", path, filepath.Join(LogDirName, LogFileName))
	}
}

func resetForTest() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	enabled = false
	logger = zap.NewNop()
}
