package engine

import (
	"fmt"

	"github.com/decred/slog"
	"github.com/itswisdomagain/xmrwallet/assetlog"
)

// LogFileName is the file engine instances log to.
const LogFileName = "engine.log"

// NewLogger opens a rotating engine log file in logDir and returns a logger
// named name that writes to it, along with the backend so the caller can set
// levels and close the file. If errorLogger is not nil, messages with level
// >= warn are additionally written to a sub-logger of errorLogger.
func NewLogger(logDir, name string, errorLogger assetlog.ParentLogger) (slog.Logger, *assetlog.Logger, error) {
	backendLog, err := assetlog.NewLogger(logDir, LogFileName)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing engine logger: %w", err)
	}

	var l slog.Logger = backendLog.SubLogger(name)
	if errorLogger != nil {
		l = assetlog.NewLoggerPlus(l, errorLogger.SubLogger(name))
	}
	return l, backendLog, nil
}
