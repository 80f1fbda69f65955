// A package that exports the wallet lifecycle controller as go code that can
// be compiled into a c-shared library. Must be a main package, with an empty
// main function. And functions to be exported must have an "//export {fnName}"
// comment.
//
// Build cmd: go build -buildmode=c-archive -o {path_to_generated_library} ./cgo
// E.g. go build -buildmode=c-archive -o ./build/libxmrwallet.a ./cgo.

package main

import "C"
import (
	"context"
	"sync"

	"github.com/decred/slog"
	"github.com/itswisdomagain/xmrwallet/assetlog"
	"github.com/itswisdomagain/xmrwallet/config"
	"github.com/itswisdomagain/xmrwallet/engine"
	_ "github.com/itswisdomagain/xmrwallet/engine/simengine"
	"github.com/itswisdomagain/xmrwallet/wallet"
)

var (
	ctx       context.Context
	cancelCtx context.CancelFunc
	wg        sync.WaitGroup

	logBackend    *assetlog.Logger
	engineLogFile *assetlog.Logger
	logMtx        sync.RWMutex
	log           slog.Logger

	ctrlMtx sync.RWMutex
	ctrl    *wallet.Controller
)

// initialize loads the config file at cConfigPath, with XMRWALLET_*
// environment overrides, and opens the wallet. cPass, if not empty, replaces
// the configured seed passphrase.
//
//export initialize
func initialize(cConfigPath, cPass *C.char) *C.char {
	ctrlMtx.Lock()
	defer ctrlMtx.Unlock()
	if ctrl != nil {
		return errCResponse("duplicate initialization")
	}

	cfg, err := config.Load(goString(cConfigPath))
	if err != nil {
		return errCResponse("error loading config: %v", err)
	}
	if pass := goString(cPass); pass != "" {
		cfg.Passphrase = pass
	}

	driver, err := engine.Lookup(cfg.EngineDriver)
	if err != nil {
		return errCResponse("%v", err)
	}
	net, err := cfg.Net()
	if err != nil {
		return errCResponse("%v", err)
	}

	engineLog, err := initLogging(cfg)
	if err != nil {
		return errCResponse("%v", err)
	}

	ctx, cancelCtx = context.WithCancel(context.Background())
	c, err := wallet.New(wallet.Config{
		Ctx:          ctx,
		DataDir:      cfg.DataDir,
		Net:          net,
		Driver:       driver,
		Passphrase:   []byte(cfg.Passphrase),
		DefaultNode:  cfg.DefaultNode,
		TrustNode:    cfg.TrustNode,
		Logger:       logBackend.SubLogger("WLLT"),
		EngineLogger: engineLog,
	})
	if err != nil {
		cancelCtx()
		logMtx.Lock()
		closeLogging()
		logMtx.Unlock()
		return errCResponse("error opening wallet: %v", err)
	}
	ctrl = c

	wg.Add(1)
	go func() {
		defer wg.Done()
		logStatusChanges(c)
	}()

	return successCResponse("libxmrwallet cgo initialized")
}

// logStatusChanges logs lifecycle transitions until shutdown.
func logStatusChanges(c *wallet.Controller) {
	var last wallet.Status
	for state := range c.Subscribe(ctx) {
		if state.Status == last {
			continue
		}
		last = state.Status
		logMtx.RLock()
		if log != nil {
			log.Infof("Wallet is %s", state.Status)
		}
		logMtx.RUnlock()
	}
}

//export shutdown
func shutdown() *C.char {
	ctrlMtx.Lock()
	if ctrl == nil {
		ctrlMtx.Unlock()
		return errCResponse("libxmrwallet is not initialized")
	}
	logMtx.RLock()
	log.Debug("libxmrwallet cgo shutting down")
	logMtx.RUnlock()
	if err := ctrl.Close(); err != nil {
		log.Errorf("close wallet error: %v", err)
	}
	ctrl = nil // cannot be reused unless initialize is called again.
	ctrlMtx.Unlock()

	// Stop all remaining background processes and wait for them to stop.
	cancelCtx()
	wg.Wait()

	// Close the logger backend as the last step.
	logMtx.Lock()
	log.Debug("libxmrwallet cgo shutdown")
	closeLogging()
	logMtx.Unlock()

	return successCResponse("libxmrwallet cgo shutdown")
}

func main() {}
