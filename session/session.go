// Package session owns the single live wallet engine instance and relays its
// sync state, balance and transaction streams into observable cells that
// outlive any one engine instance.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/itswisdomagain/xmrwallet/engine"
	"github.com/itswisdomagain/xmrwallet/syncutils"
)

// ErrNoSession is returned by operations that need a live engine instance
// when there is none.
var ErrNoSession = errors.New("no active engine session")

const progressLogInterval = 5 * time.Second

// stoppedState is published when the session stops an engine.
var stoppedState = engine.NotSynced{Reason: "stopped"}

// Session holds at most one live engine instance at a time.
type Session struct {
	ctx    context.Context
	driver engine.Driver
	log    slog.Logger

	mtx      sync.Mutex
	handle   engine.Engine
	relays   *syncutils.RelayGroup
	reporter *syncutils.SyncProgressReporter
	starts   sync.WaitGroup

	syncState    *syncutils.Cell[engine.SyncState]
	balance      *syncutils.Cell[engine.Balance]
	transactions *syncutils.Cell[[]engine.Transaction]
}

// New creates a Session that constructs engines with driver. Relay tasks run
// until ctx is canceled or the engine they serve is stopped or replaced.
func New(ctx context.Context, driver engine.Driver, log slog.Logger) *Session {
	return &Session{
		ctx:          ctx,
		driver:       driver,
		log:          log,
		relays:       syncutils.NewRelayGroup(log),
		reporter:     syncutils.NewSyncProgressReporter(log, progressLogInterval),
		syncState:    syncutils.NewCell[engine.SyncState](engine.NotSynced{}),
		balance:      syncutils.NewCell(engine.Balance{}),
		transactions: syncutils.NewCell[[]engine.Transaction](nil),
	}
}

// StartSession stops and releases the current engine instance, if any, then
// constructs a new one from cfg and starts relaying its streams. The new
// engine is not connected; call BeginAsyncStart for that. If construction
// fails the session is left without an engine.
func (s *Session) StartSession(cfg engine.Config) (engine.Engine, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.releaseLocked()

	if cfg.Logger == nil {
		cfg.Logger = s.log
	}
	handle, err := s.driver.New(cfg)
	if err != nil {
		return nil, err
	}
	s.handle = handle

	if err := s.startRelaysLocked(handle); err != nil {
		s.releaseLocked()
		return nil, err
	}

	s.log.Debugf("Engine session started for wallet %s", cfg.WalletID)
	return handle, nil
}

// BeginAsyncStart asks the current engine to connect and returns without
// waiting for the connection attempt to complete. onDone, if not nil, is
// called with the result of the attempt. Returns ErrNoSession if there is no
// engine.
func (s *Session) BeginAsyncStart(ctx context.Context, onDone func(error)) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	handle := s.handle
	if handle == nil {
		return ErrNoSession
	}
	if !s.relays.Active() {
		if err := s.startRelaysLocked(handle); err != nil {
			return err
		}
	}

	s.starts.Add(1)
	go func() {
		defer s.starts.Done()
		err := handle.Start(ctx)
		if err != nil {
			s.log.Errorf("Engine start failed: %v", err)
		}
		if onDone != nil {
			onDone(err)
		}
	}()
	return nil
}

// Stop halts the current engine's network activity and relays but keeps the
// engine. It is a no-op if there is no engine.
func (s *Session) Stop() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.handle == nil {
		return nil
	}
	err := s.handle.Stop()
	if err != nil {
		s.log.Errorf("Engine stop error: %v", err)
	}
	s.relays.Stop()
	s.reporter.HandleSyncEnded(stoppedState.Reason)
	s.syncState.Publish(stoppedState)
	return err
}

// StopAndRelease stops and releases the current engine. The last published
// values are kept.
func (s *Session) StopAndRelease() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.releaseLocked()
}

// Clear releases the current engine and resets every published value.
func (s *Session) Clear() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.releaseLocked()
	s.syncState.Reset()
	s.balance.Reset()
	s.transactions.Reset()
}

// ResetValues resets the published balance and transactions.
func (s *Session) ResetValues() {
	s.balance.Reset()
	s.transactions.Reset()
}

// Close releases the current engine and waits for pending start attempts to
// return.
func (s *Session) Close() {
	s.StopAndRelease()
	s.starts.Wait()
}

// releaseLocked requires s.mtx.
func (s *Session) releaseLocked() {
	if s.handle == nil {
		s.relays.Stop()
		return
	}

	handle := s.handle
	s.handle = nil
	if err := handle.Stop(); err != nil {
		s.log.Errorf("Engine stop error: %v", err)
	}
	s.relays.Stop()
	if err := handle.Close(); err != nil {
		s.log.Errorf("Engine close error: %v", err)
	}
	s.reporter.HandleSyncEnded(stoppedState.Reason)
	s.syncState.Publish(stoppedState)
	s.log.Debugf("Engine session released")
}

// startRelaysLocked requires s.mtx.
func (s *Session) startRelaysLocked(handle engine.Engine) error {
	return s.relays.Start(s.ctx,
		func(ctx context.Context) error {
			return syncutils.Relay(ctx, handle.SyncStates(), s.publishSyncState)
		},
		func(ctx context.Context) error {
			return syncutils.Relay(ctx, handle.Balances(), s.balance.Publish)
		},
		func(ctx context.Context) error {
			return syncutils.Relay(ctx, handle.Transactions(), s.transactions.Publish)
		},
	)
}

func (s *Session) publishSyncState(state engine.SyncState) {
	switch st := state.(type) {
	case engine.Connecting:
		s.reporter.HandleConnecting()
	case engine.Syncing:
		if st.HasRemaining {
			s.reporter.HandleBlocksRemaining(st.RemainingBlocks)
		}
	case engine.Synced:
		s.reporter.HandleSyncCompleted()
	case engine.NotSynced:
		s.reporter.HandleSyncEnded(st.Reason)
	}
	s.syncState.Publish(state)
}

// Handle returns the current engine or nil.
func (s *Session) Handle() engine.Engine {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.handle
}

// SyncState returns the last published sync state.
func (s *Session) SyncState() engine.SyncState {
	return s.syncState.Value()
}

// Balance returns the last published balance.
func (s *Session) Balance() engine.Balance {
	return s.balance.Value()
}

// Transactions returns the last published transaction list.
func (s *Session) Transactions() []engine.Transaction {
	return s.transactions.Value()
}

// SyncProgress returns the latest block scan progress report, or nil if the
// engine is not scanning blocks.
func (s *Session) SyncProgress() *syncutils.SyncProgressReport {
	return s.reporter.LastReport()
}

// SubscribeSyncState returns a channel that receives the current sync state
// and every later change until ctx is canceled. The same applies to
// SubscribeBalance and SubscribeTransactions.
func (s *Session) SubscribeSyncState(ctx context.Context) <-chan engine.SyncState {
	return s.syncState.Subscribe(ctx)
}

func (s *Session) SubscribeBalance(ctx context.Context) <-chan engine.Balance {
	return s.balance.Subscribe(ctx)
}

func (s *Session) SubscribeTransactions(ctx context.Context) <-chan []engine.Transaction {
	return s.transactions.Subscribe(ctx)
}
