package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/decred/slog"
	"github.com/itswisdomagain/xmrwallet/assetlog"
	"github.com/itswisdomagain/xmrwallet/config"
	"github.com/itswisdomagain/xmrwallet/engine"
	_ "github.com/itswisdomagain/xmrwallet/engine/simengine"
	"github.com/itswisdomagain/xmrwallet/wallet"
)

const logFileName = "walletctl.log"

// app holds what every command needs: the loaded config, the log files and
// the open controller.
type app struct {
	cfg     *config.Config
	logFile *assetlog.Logger
	engLog  *assetlog.Logger
	log     slog.Logger
	ctrl    *wallet.Controller
}

func defaultConfigFile() string {
	return filepath.Join(config.DefaultDir(), "xmrwallet.toml")
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if network != "" {
		cfg.Network = network
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	net, _ := cfg.Net()

	driver, err := engine.Lookup(cfg.EngineDriver)
	if err != nil {
		return err
	}

	// Warnings and errors also go to the terminal.
	a.logFile, err = assetlog.NewLogger(cfg.LogDir, logFileName, assetlog.WithConsole(os.Stderr, slog.LevelWarn))
	if err != nil {
		return err
	}
	a.logFile.SetAllLevels(cfg.LogLevel)
	a.log = a.logFile.SubLogger("CTL")

	engLog, engBackend, err := engine.NewLogger(cfg.LogDir, "ENGN", a.logFile)
	if err != nil {
		a.logFile.Close()
		return err
	}
	engBackend.SetAllLevels(cfg.LogLevel)
	a.engLog = engBackend

	a.ctrl, err = wallet.New(wallet.Config{
		Ctx:          ctx,
		DataDir:      cfg.DataDir,
		Net:          net,
		Driver:       driver,
		Passphrase:   []byte(cfg.Passphrase),
		DefaultNode:  cfg.DefaultNode,
		TrustNode:    cfg.TrustNode,
		Logger:       a.log,
		EngineLogger: engLog,
	})
	if err != nil {
		a.engLog.Close()
		a.logFile.Close()
		return err
	}
	a.cfg = cfg
	a.log.Debugf("Opened %s wallet data in %s", net, cfg.DataDir)
	return nil
}

func (a *app) close() error {
	if a.ctrl == nil {
		return nil
	}
	err := a.ctrl.Close()
	a.ctrl = nil
	a.engLog.Close()
	a.logFile.Close()
	return err
}

// resume starts the saved wallet and waits until it is synced or timeout
// elapses. Commands that talk to the engine need a live handle.
func (a *app) resume(ctx context.Context, timeout time.Duration) error {
	if err := a.ctrl.UnlockAndResume(ctx); err != nil {
		return err
	}
	return a.waitSynced(ctx, timeout)
}

func (a *app) waitSynced(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for state := range a.ctrl.Subscribe(ctx) {
		if _, synced := state.SyncState.(engine.Synced); synced {
			return nil
		}
		if state.Error != "" {
			return errors.New(state.Error)
		}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("wallet did not sync within %s", timeout)
	}
	return ctx.Err()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
