// Package assetlog provides the rotating file loggers shared by the wallet
// controller, the engine instances and the front ends.
package assetlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

const (
	maxLogRolls     = 8
	rollThresholdKB = 32 * 1024
)

// Logger is a set of named sub-loggers writing to one rotating log file.
// Sub-loggers can additionally echo warnings and errors to a console, see
// WithConsole.
type Logger struct {
	backend     *slog.Backend
	rotator     *rotator.Rotator
	logFilePath string

	console      *slog.Backend
	consoleLevel slog.Level

	mtx        sync.RWMutex
	level      slog.Level
	subloggers map[string]slog.Logger
}

var _ ParentLogger = (*Logger)(nil)

// Option configures a Logger.
type Option func(*Logger)

// WithConsole copies messages logged at level or above to w. Levels below
// slog.LevelWarn are raised to it.
func WithConsole(w io.Writer, level slog.Level) Option {
	return func(l *Logger) {
		if level < slog.LevelWarn {
			level = slog.LevelWarn
		}
		l.console = slog.NewBackend(w)
		l.consoleLevel = level
	}
}

// NewLogger creates logDir if needed and opens logFileName in it for
// writing. The file is rolled once it grows past 32MB and the last 8 rolls
// are kept.
func NewLogger(logDir, logFileName string, opts ...Option) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0744); err != nil {
		return nil, fmt.Errorf("error creating log directory: %w", err)
	}

	logFilePath := filepath.Join(logDir, logFileName)
	r, err := rotator.New(logFilePath, rollThresholdKB, false, maxLogRolls)
	if err != nil {
		return nil, fmt.Errorf("error opening log file %s: %w", logFilePath, err)
	}

	l := &Logger{
		backend:     slog.NewBackend(r),
		rotator:     r,
		logFilePath: logFilePath,
		level:       slog.LevelInfo,
		subloggers:  make(map[string]slog.Logger),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Logger) FilePath() string {
	return l.logFilePath
}

// SetAllLevels sets the file level of every sub-logger, including those
// created later. Unknown level names are ignored. The console level is fixed.
func (l *Logger) SetAllLevels(lvl string) {
	level, ok := slog.LevelFromString(lvl)
	if !ok {
		return
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.level = level
	for _, sublogger := range l.subloggers {
		sublogger.SetLevel(level)
	}
}

// SubLogger returns the sub-logger tagged name, creating it on first use.
func (l *Logger) SubLogger(name string) slog.Logger {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if subLogger, ok := l.subloggers[name]; ok {
		return subLogger
	}

	var subLogger slog.Logger = l.backend.Logger(name)
	subLogger.SetLevel(l.level)
	if l.console != nil {
		echo := l.console.Logger(name)
		echo.SetLevel(l.consoleLevel)
		subLogger = NewLoggerPlus(subLogger, echo)
	}
	l.subloggers[name] = subLogger
	return subLogger
}

// Close flushes and closes the log file. The Logger and its sub-loggers must
// not be used afterwards.
func (l *Logger) Close() error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.rotator == nil {
		return nil
	}
	if err := l.rotator.Close(); err != nil {
		return err
	}

	l.backend = nil
	l.console = nil
	l.rotator = nil
	l.subloggers = nil
	return nil
}
