package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides leveled, component-scoped logging for pageobjects.
// Loggers created with NewLogger write to a session-specific file in
// ~/.pageobjects/logs/ shared by every component of the process.
type Logger struct {
	sessionID string
	component string
	sugar     *zap.SugaredLogger
	file      *os.File
	logPath   string
	closeOnce sync.Once
}

var (
	// Global session ID for the current process
	sessionID     string
	sessionIDOnce sync.Once

	// logDir is the directory where log files are stored
	logDir string

	initOnce sync.Once
	initErr  error

	level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

func initLogDirectory() error {
	initOnce.Do(func() {
		if logDir != "" {
			initErr = os.MkdirAll(logDir, 0750)
			return
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("failed to get home directory: %w", err)
			return
		}

		logDir = filepath.Join(homeDir, ".pageobjects", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
	})
	return initErr
}

// SetDirectory overrides the log directory. It only has an effect before the
// first logger is created.
func SetDirectory(dir string) {
	if dir != "" {
		logDir = dir
	}
}

// SetVerbosity sets the minimum level for all loggers: quiet, normal, verbose
// or debug.
func SetVerbosity(verbosity string) error {
	switch verbosity {
	case "quiet":
		level.SetLevel(zapcore.ErrorLevel)
	case "normal", "":
		level.SetLevel(zapcore.InfoLevel)
	case "verbose", "debug":
		level.SetLevel(zapcore.DebugLevel)
	default:
		return fmt.Errorf("invalid verbosity: %s (must be 'quiet', 'normal', 'verbose' or 'debug')", verbosity)
	}
	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// NewLogger creates a logger for a specific component.
// The logger writes to ~/.pageobjects/logs/<session-id>-pageobjects.log
//
// If the log directory cannot be created or the log file cannot be opened,
// it returns a fallback logger that writes to stderr along with the error.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	sessID := getSessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-pageobjects.log", sessID))

	// Append mode: every component of the process shares the file
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, err), err
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(file), level)
	z := zap.New(core).Named(component).With(zap.String("session", sessID))

	return &Logger{
		sessionID: sessID,
		component: component,
		sugar:     z.Sugar(),
		file:      file,
		logPath:   logPath,
	}, nil
}

func newFallbackLogger(component string, err error) *Logger {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stderr), level)
	z := zap.New(core).Named(component)
	z.Warn("failed to initialize file logging, falling back to stderr", zap.Error(err))

	return &Logger{
		sessionID: getSessionID(),
		component: component,
		sugar:     z.Sugar(),
	}
}

// New wraps an existing zap logger for a component.
func New(z *zap.Logger, component string) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		sugar:     z.Named(component).Sugar(),
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{component: "nop", sugar: zap.NewNop().Sugar()}
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Zap returns the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

// SessionID returns the current session ID
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the path to the log file, empty for loggers without one.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close flushes and closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		_ = l.sugar.Sync()
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// GetSessionID returns the current global session ID
func GetSessionID() string {
	return getSessionID()
}

// GetLogDirectory returns the directory where logs are stored
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
