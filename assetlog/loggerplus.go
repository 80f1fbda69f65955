package assetlog

import (
	"github.com/decred/slog"
)

// ParentLogger hands out named sub-loggers. *Logger is one.
type ParentLogger interface {
	SubLogger(name string) slog.Logger
}

// LoggerPlus logs everything to a main logger and copies warnings, errors and
// critical messages to a second logger. Level and SetLevel act on the main
// logger only.
type LoggerPlus struct {
	slog.Logger
	echo slog.Logger
}

func NewLoggerPlus(mainLogger, echoLogger slog.Logger) *LoggerPlus {
	return &LoggerPlus{Logger: mainLogger, echo: echoLogger}
}

func (lp *LoggerPlus) Warnf(format string, params ...any) {
	lp.Logger.Warnf(format, params...)
	lp.echo.Warnf(format, params...)
}

func (lp *LoggerPlus) Errorf(format string, params ...any) {
	lp.Logger.Errorf(format, params...)
	lp.echo.Errorf(format, params...)
}

func (lp *LoggerPlus) Criticalf(format string, params ...any) {
	lp.Logger.Criticalf(format, params...)
	lp.echo.Criticalf(format, params...)
}

func (lp *LoggerPlus) Warn(v ...any) {
	lp.Logger.Warn(v...)
	lp.echo.Warn(v...)
}

func (lp *LoggerPlus) Error(v ...any) {
	lp.Logger.Error(v...)
	lp.echo.Error(v...)
}

func (lp *LoggerPlus) Critical(v ...any) {
	lp.Logger.Critical(v...)
	lp.echo.Critical(v...)
}
