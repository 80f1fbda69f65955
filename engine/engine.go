// Package engine defines the boundary to the external wallet engine that owns
// keys, builds transactions and synchronizes with a node. Engines are
// provided by drivers which register themselves by name, the same way
// database drivers do.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/itswisdomagain/xmrwallet/asset"
)

// Engine is one live wallet engine instance.
type Engine interface {
	// Start connects to the node and begins synchronizing. It may block until
	// the connection attempt completes. Start may be called again after Stop.
	Start(ctx context.Context) error
	// Stop halts network activity.
	Stop() error
	// Close releases the instance. It must not be used afterwards.
	Close() error

	// SyncStates, Balances and Transactions deliver the latest engine state
	// as it changes.
	SyncStates() <-chan SyncState
	Balances() <-chan Balance
	Transactions() <-chan []Transaction

	ReceiveAddress() string
	Send(ctx context.Context, amount uint64, address, memo string) (*Transaction, error)
	EstimateFee(ctx context.Context, amount uint64, address string, priority FeePriority) (uint64, error)
	Subaddresses(ctx context.Context) ([]Subaddress, error)
	CreateSubaddress(ctx context.Context, label string) (*Subaddress, error)
	StatusInfo() map[string]string
}

// Driver constructs engines and answers questions that do not need a live
// engine instance.
type Driver interface {
	New(cfg Config) (Engine, error)
	// EstimateHeight estimates the chain height at date.
	EstimateHeight(ctx context.Context, net asset.Network, date time.Time) (uint64, error)
	// RestoreHeightForNewWallet returns the height a brand new wallet should
	// start scanning from, normally the current chain tip.
	RestoreHeightForNewWallet(ctx context.Context, net asset.Network) (uint64, error)
	// DeleteWalletFiles removes the engine's files for a wallet.
	DeleteWalletFiles(dataDir, walletID string) error
}

var (
	driversMtx sync.RWMutex
	drivers    = make(map[string]Driver)
)

// Register makes a driver available by name. It panics if Register is called
// twice with the same name or if driver is nil.
func Register(name string, driver Driver) {
	driversMtx.Lock()
	defer driversMtx.Unlock()
	if driver == nil {
		panic("engine: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("engine: Register called twice for driver " + name)
	}
	drivers[name] = driver
}

// Lookup returns the driver registered with name.
func Lookup(name string) (Driver, error) {
	driversMtx.RLock()
	defer driversMtx.RUnlock()
	driver, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("unknown wallet engine driver %q (forgotten import?)", name)
	}
	return driver, nil
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	driversMtx.RLock()
	defer driversMtx.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
