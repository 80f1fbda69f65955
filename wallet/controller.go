// Package wallet implements the wallet lifecycle controller: the state
// machine that creates, restores, resumes, re-targets, resyncs and removes
// the single wallet, driving the engine session and the encrypted seed store
// together and deriving the WalletState snapshot observers display.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/decred/slog"
	"github.com/itswisdomagain/xmrwallet/asset"
	"github.com/itswisdomagain/xmrwallet/engine"
	"github.com/itswisdomagain/xmrwallet/restoreheight"
	"github.com/itswisdomagain/xmrwallet/session"
	"github.com/itswisdomagain/xmrwallet/syncutils"
	"github.com/itswisdomagain/xmrwallet/walletdata"
)

const walletDbName = "wallet.db"

// Config holds the parameters needed to create a Controller.
type Config struct {
	// Ctx bounds the lifetime of relay tasks and background starts. Defaults
	// to context.Background().
	Ctx     context.Context
	DataDir string
	Net     asset.Network
	Driver  engine.Driver
	// Passphrase encrypts the seed at rest.
	Passphrase  []byte
	DefaultNode string
	TrustNode   bool
	Logger      slog.Logger
	// EngineLogger is handed to every engine instance. Defaults to Logger.
	EngineLogger slog.Logger
}

// Controller is the wallet lifecycle state machine. Lifecycle operations are
// serialized; every one of them leaves IsInitializing false when it returns
// and reports failures through WalletState.Error as well as its return
// value.
type Controller struct {
	ctx     context.Context
	dataDir string
	net     asset.Network
	driver  engine.Driver
	log     slog.Logger
	engLog  slog.Logger

	defaultNode string
	trustNode   bool

	db       *walletdata.DB
	settings *asset.Settings
	secrets  *asset.SecretStore
	heights  *restoreheight.Index
	txIndex  *walletdata.TxIndex[engine.Transaction]
	session  *session.Session

	// opMtx serializes lifecycle operations.
	opMtx sync.Mutex
	// subs are the controller's subscriptions to the session cells for the
	// current engine instance.
	subs *syncutils.RelayGroup

	stateMtx sync.Mutex
	state    *syncutils.Cell[WalletState]
}

// New opens the wallet database in cfg.DataDir and returns a Controller. If a
// wallet identity is saved, the controller starts out Locked with HasWallet
// set; UnlockAndResume starts it.
func New(cfg Config) (*Controller, error) {
	if cfg.Driver == nil {
		return nil, fmt.Errorf("wallet engine driver is required")
	}
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	if cfg.DefaultNode != "" {
		if err := asset.ValidateNodeAddress(cfg.DefaultNode); err != nil {
			return nil, err
		}
	}
	ctx := cfg.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Disabled
	}
	engLog := cfg.EngineLogger
	if engLog == nil {
		engLog = log
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("error creating data dir: %w", err)
	}
	db, err := walletdata.Initialize(filepath.Join(cfg.DataDir, walletDbName))
	if err != nil {
		return nil, err
	}

	txIndexCfg := walletdata.NewTxIndexDBConfig("TxID", func() *engine.Transaction {
		return &engine.Transaction{}
	}, nil)

	c := &Controller{
		ctx:         ctx,
		dataDir:     cfg.DataDir,
		net:         cfg.Net,
		driver:      cfg.Driver,
		log:         log,
		engLog:      engLog,
		defaultNode: cfg.DefaultNode,
		trustNode:   cfg.TrustNode,
		db:          db,
		settings:    asset.NewSettings(db, log),
		secrets:     asset.NewSecretStore(db, cfg.Passphrase, log),
		heights:     restoreheight.Default(cfg.Net, cfg.Driver),
		txIndex:     walletdata.NewTxIndex(db, txIndexCfg),
		session:     session.New(ctx, cfg.Driver, log),
		subs:        syncutils.NewRelayGroup(log),
		state:       syncutils.NewCell(emptyState()),
	}

	_, err = c.settings.Identity()
	switch {
	case err == nil:
		c.updateState(func(s *WalletState) {
			s.HasWallet = true
			s.Status = StatusLocked
		})
	case errors.Is(err, asset.ErrNoIdentity):
	default:
		db.Close()
		return nil, err
	}

	return c, nil
}

// Close stops the engine and closes the wallet database.
func (c *Controller) Close() error {
	c.opMtx.Lock()
	defer c.opMtx.Unlock()

	c.stopSubscriptions()
	c.session.Close()
	return c.db.Close()
}

// State returns the current WalletState snapshot.
func (c *Controller) State() WalletState {
	return c.state.Value().clone()
}

// Subscribe returns a channel that receives the current WalletState and every
// later snapshot until ctx is canceled. Slow receivers only see the latest
// snapshot.
func (c *Controller) Subscribe(ctx context.Context) <-chan WalletState {
	return c.state.Subscribe(ctx)
}

// Session exposes the engine session so observers can subscribe to the raw
// sync state, balance and transaction cells.
func (c *Controller) Session() *session.Session {
	return c.session
}

// updateState applies fn to a copy of the current state and publishes the
// result.
func (c *Controller) updateState(fn func(*WalletState)) {
	c.stateMtx.Lock()
	defer c.stateMtx.Unlock()
	s := c.state.Value().clone()
	fn(&s)
	c.state.Publish(s)
}

// beginInit marks the start of a lifecycle operation.
func (c *Controller) beginInit() {
	c.updateState(func(s *WalletState) {
		s.IsInitializing = true
		s.Error = ""
	})
}

// fail records err in the state, clears IsInitializing and returns err.
func (c *Controller) fail(op string, err error) error {
	c.log.Errorf("%s failed: %v", op, err)
	c.updateState(func(s *WalletState) {
		s.IsInitializing = false
		s.Error = err.Error()
	})
	return err
}

// startSubscriptions folds the session cells into the state until
// stopSubscriptions is called. It is a no-op if subscriptions are running.
func (c *Controller) startSubscriptions() {
	if c.subs.Active() {
		return
	}
	err := c.subs.Start(c.ctx,
		func(ctx context.Context) error {
			return syncutils.Relay(ctx, c.session.SubscribeSyncState(ctx), func(st engine.SyncState) {
				c.updateState(func(s *WalletState) { s.SyncState = st })
			})
		},
		func(ctx context.Context) error {
			return syncutils.Relay(ctx, c.session.SubscribeBalance(ctx), func(b engine.Balance) {
				c.updateState(func(s *WalletState) { s.Balance = b })
			})
		},
		func(ctx context.Context) error {
			return syncutils.Relay(ctx, c.session.SubscribeTransactions(ctx), c.foldTransactions)
		},
	)
	if err != nil {
		c.log.Errorf("Unable to subscribe to session: %v", err)
	}
}

func (c *Controller) stopSubscriptions() {
	c.subs.Stop()
}

func (c *Controller) foldTransactions(txs []engine.Transaction) {
	for i := range txs {
		tx := txs[i]
		if _, err := c.txIndex.IndexTransaction(&tx); err != nil {
			c.log.Errorf("Error indexing tx %s: %v", tx.TxID, err)
		}
	}
	c.updateState(func(s *WalletState) {
		s.Transactions = append([]engine.Transaction(nil), txs...)
	})
}
