//go:build cgo

package main

import (
	"fmt"

	"github.com/decred/slog"
	"github.com/itswisdomagain/xmrwallet/assetlog"
	"github.com/itswisdomagain/xmrwallet/config"
	"github.com/itswisdomagain/xmrwallet/engine"
)

// initLogging opens the app log and the engine log in cfg.LogDir. Engine
// warnings and errors are also written to the app log. Returns the logger to
// hand to engine instances.
func initLogging(cfg *config.Config) (slog.Logger, error) {
	appLog, err := assetlog.NewLogger(cfg.LogDir, config.DefaultLogFileName)
	if err != nil {
		return nil, fmt.Errorf("error initializing log rotator: %v", err)
	}
	appLog.SetAllLevels(cfg.LogLevel)

	engineLog, engineBackend, err := engine.NewLogger(cfg.LogDir, "ENGN", appLog)
	if err != nil {
		appLog.Close()
		return nil, err
	}
	engineBackend.SetAllLevels(cfg.LogLevel)

	logMtx.Lock()
	logBackend = appLog
	engineLogFile = engineBackend
	log = logBackend.SubLogger("[APP]")
	logMtx.Unlock()

	return engineLog, nil
}

// closeLogging closes both log files. logMtx must be held.
func closeLogging() {
	if engineLogFile != nil {
		engineLogFile.Close()
		engineLogFile = nil
	}
	if logBackend != nil {
		logBackend.Close()
		logBackend = nil
	}
	log = nil
}
