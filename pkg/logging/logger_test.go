package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// setupTestDir points the package at a temporary log directory and resets
// global state for the duration of the test.
func setupTestDir(t *testing.T) {
	t.Helper()

	tempDir := t.TempDir()

	origLogDir := logDir
	origInitErr := initErr
	origSessionID := sessionID

	logDir = tempDir
	initErr = nil
	initOnce = sync.Once{}
	sessionID = ""
	sessionIDOnce = sync.Once{}

	t.Cleanup(func() {
		logDir = origLogDir
		initErr = origInitErr
		initOnce = sync.Once{}
		sessionID = origSessionID
		sessionIDOnce = sync.Once{}
		require.NoError(t, SetVerbosity("debug"))
	})
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	require.NoError(t, l.Close())
	content, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	return string(content)
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test-component")
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, "test-component", logger.component)
	assert.NotEmpty(t, logger.SessionID())
	assert.NotEmpty(t, logger.LogPath())

	_, err = os.Stat(logger.LogPath())
	assert.NoError(t, err)
}

func TestLoggerLevels(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("registry")
	require.NoError(t, err)

	logger.Debugf("Debug message %d", 1)
	logger.Infof("Info message")
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	content := readLog(t, logger)
	for _, want := range []string{
		"DEBUG\tregistry\tDebug message 1",
		"INFO\tregistry\tInfo message",
		"WARN\tregistry\tWarning message",
		"ERROR\tregistry\tError message",
	} {
		assert.Contains(t, content, want)
	}
}

func TestSetVerbosity(t *testing.T) {
	setupTestDir(t)

	require.NoError(t, SetVerbosity("quiet"))
	logger, err := NewLogger("quiet")
	require.NoError(t, err)

	logger.Infof("hidden")
	logger.Errorf("shown")

	content := readLog(t, logger)
	assert.NotContains(t, content, "hidden")
	assert.Contains(t, content, "shown")

	assert.Error(t, SetVerbosity("loud"))
}

func TestMultipleComponents(t *testing.T) {
	setupTestDir(t)

	logger1, err := NewLogger("dispatcher")
	require.NoError(t, err)
	logger2, err := NewLogger("driver")
	require.NoError(t, err)

	assert.Equal(t, logger1.SessionID(), logger2.SessionID())
	assert.Equal(t, logger1.LogPath(), logger2.LogPath())

	logger1.Infof("from dispatcher")
	logger2.Infof("from driver")

	_ = readLog(t, logger1)
	content := readLog(t, logger2)
	assert.Contains(t, content, "from dispatcher")
	assert.Contains(t, content, "from driver")
}

func TestLogPathFormat(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)
	defer logger.Close()

	fileName := filepath.Base(logger.LogPath())
	assert.True(t, strings.HasSuffix(fileName, "-pageobjects.log"), fileName)
	assert.Contains(t, strings.TrimSuffix(fileName, "-pageobjects.log"), "-")
}

func TestLoggerCloseTwice(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)

	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestGetLogDirectory(t *testing.T) {
	setupTestDir(t)

	dir, err := GetLogDirectory()
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewWrapsZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := New(zap.New(core), "composer")

	logger.Warnf("ignored %s", "Flag")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "composer", entries[0].LoggerName)
	assert.Equal(t, "ignored Flag", entries[0].Message)
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Infof("discarded")
	assert.Empty(t, logger.LogPath())
	assert.NoError(t, logger.Close())
}
