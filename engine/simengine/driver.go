// Package simengine provides an in-process wallet engine that simulates a
// node connection. It is registered as the "sim" driver and is used by the
// command line tool and by tests to drive the wallet controller.
package simengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/itswisdomagain/xmrwallet/asset"
	"github.com/itswisdomagain/xmrwallet/engine"
	"github.com/itswisdomagain/xmrwallet/restoreheight"
)

const DriverName = "sim"

func init() {
	engine.Register(DriverName, NewDriver(WithAutoSync(time.Second)))
}

// Option configures a Driver.
type Option func(*Driver)

// WithAutoSync makes started engines scan to the chain tip on their own,
// emitting one progress update every step.
func WithAutoSync(step time.Duration) Option {
	return func(d *Driver) {
		d.syncStep = step
	}
}

// WithTipHeight fixes the chain tip reported to engines. Without it the tip
// is estimated from the current time.
func WithTipHeight(height uint64) Option {
	return func(d *Driver) {
		d.tipHeight = height
	}
}

// Driver creates simulated engines and records what was done with them.
type Driver struct {
	mtx       sync.Mutex
	syncStep  time.Duration
	tipHeight uint64
	newErr    error
	startErr  error
	engines   []*Engine
	live      int
	maxLive   int
	deleted   []string
}

var _ engine.Driver = (*Driver)(nil)

func NewDriver(opts ...Option) *Driver {
	d := new(Driver)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// New creates an engine for cfg. Wallet files are created under
// cfg.DataDir/cfg.WalletID.
func (d *Driver) New(cfg engine.Config) (engine.Engine, error) {
	d.mtx.Lock()
	newErr := d.newErr
	d.mtx.Unlock()
	if newErr != nil {
		return nil, newErr
	}

	if cfg.Seed == nil {
		return nil, fmt.Errorf("seed is required")
	}
	if cfg.WalletID == "" {
		return nil, fmt.Errorf("wallet id is required")
	}

	restoreHeight, err := d.restoreHeight(cfg)
	if err != nil {
		return nil, err
	}
	if err := writeWalletFiles(cfg, restoreHeight); err != nil {
		return nil, err
	}

	e := newEngine(d, cfg, restoreHeight)

	d.mtx.Lock()
	d.engines = append(d.engines, e)
	d.live++
	if d.live > d.maxLive {
		d.maxLive = d.live
	}
	d.mtx.Unlock()
	return e, nil
}

// restoreHeight resolves cfg.RestoreDateOrHeight. "0" keeps the height saved
// with existing wallet files, if any.
func (d *Driver) restoreHeight(cfg engine.Config) (uint64, error) {
	s := cfg.RestoreDateOrHeight
	if s == "" || s == "0" {
		if h, ok := readSavedHeight(cfg); ok {
			return h, nil
		}
		return 0, nil
	}
	if date, err := time.Parse(time.DateOnly, s); err == nil {
		return restoreheight.Default(cfg.Net, nil).HeightAt(date), nil
	}
	var height uint64
	if _, err := fmt.Sscan(s, &height); err != nil {
		return 0, fmt.Errorf("invalid restore date or height %q", s)
	}
	return height, nil
}

func (d *Driver) EstimateHeight(ctx context.Context, net asset.Network, date time.Time) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return restoreheight.Default(net, nil).HeightAt(date), nil
}

func (d *Driver) RestoreHeightForNewWallet(ctx context.Context, net asset.Network) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return d.chainTip(net), nil
}

func (d *Driver) DeleteWalletFiles(dataDir, walletID string) error {
	if walletID == "" {
		return fmt.Errorf("wallet id is required")
	}
	if err := os.RemoveAll(walletDir(dataDir, walletID)); err != nil {
		return err
	}
	d.mtx.Lock()
	d.deleted = append(d.deleted, walletID)
	d.mtx.Unlock()
	return nil
}

func (d *Driver) chainTip(net asset.Network) uint64 {
	d.mtx.Lock()
	tip := d.tipHeight
	d.mtx.Unlock()
	if tip > 0 {
		return tip
	}
	return restoreheight.Default(net, nil).HeightAt(time.Now())
}

func (d *Driver) engineClosed() {
	d.mtx.Lock()
	d.live--
	d.mtx.Unlock()
}

// FailNew makes New return err. A nil err restores normal behavior.
func (d *Driver) FailNew(err error) {
	d.mtx.Lock()
	d.newErr = err
	d.mtx.Unlock()
}

// FailStart makes Start on any engine return err. A nil err restores normal
// behavior.
func (d *Driver) FailStart(err error) {
	d.mtx.Lock()
	d.startErr = err
	d.mtx.Unlock()
}

// Engines returns every engine created by the driver, oldest first.
func (d *Driver) Engines() []*Engine {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	engines := make([]*Engine, len(d.engines))
	copy(engines, d.engines)
	return engines
}

// Latest returns the most recently created engine or nil.
func (d *Driver) Latest() *Engine {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	if len(d.engines) == 0 {
		return nil
	}
	return d.engines[len(d.engines)-1]
}

// Live is the number of engines created and not yet closed.
func (d *Driver) Live() int {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return d.live
}

// MaxLive is the highest Live count seen.
func (d *Driver) MaxLive() int {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return d.maxLive
}

// Deleted returns the ids of wallets whose files were deleted.
func (d *Driver) Deleted() []string {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	deleted := make([]string, len(d.deleted))
	copy(deleted, d.deleted)
	return deleted
}

// WalletFilesExist reports whether files for walletID exist under dataDir.
func WalletFilesExist(dataDir, walletID string) bool {
	_, err := os.Stat(filepath.Join(walletDir(dataDir, walletID), keysFileName))
	return err == nil
}
