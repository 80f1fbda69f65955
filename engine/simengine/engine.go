package simengine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/itswisdomagain/xmrwallet/asset"
	"github.com/itswisdomagain/xmrwallet/engine"
)

const (
	streamBuffer = 64
	minAddrLen   = 12

	// feePerKB is the base fee in atomic units for a typical 2-output tx.
	feePerKB = 30_000_000
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("engine is closed")

// Engine is a simulated wallet engine. Tests can push state into it with the
// Emit methods.
type Engine struct {
	driver        *Driver
	cfg           engine.Config
	log           slog.Logger
	address       string
	restoreHeight uint64

	syncCh chan engine.SyncState
	balCh  chan engine.Balance
	txCh   chan []engine.Transaction

	mtx        sync.Mutex
	closed     bool
	running    bool
	startCalls int
	stopSync   context.CancelFunc
	syncWg     sync.WaitGroup
	height     uint64
	balance    engine.Balance
	txs        []engine.Transaction
	subaddrs   []engine.Subaddress
	sent       int
}

var _ engine.Engine = (*Engine)(nil)

func newEngine(d *Driver, cfg engine.Config, restoreHeight uint64) *Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.Disabled
	}
	address := primaryAddress(cfg)
	primary := engine.Subaddress{
		Index:   0,
		Address: address,
		Label:   "Primary account",
	}
	return &Engine{
		driver:        d,
		cfg:           cfg,
		log:           log,
		address:       address,
		restoreHeight: restoreHeight,
		height:        restoreHeight,
		syncCh:        make(chan engine.SyncState, streamBuffer),
		balCh:         make(chan engine.Balance, streamBuffer),
		txCh:          make(chan []engine.Transaction, streamBuffer),
		subaddrs:      []engine.Subaddress{primary},
	}
}

// primaryAddress derives a stable fake address from the seed and network.
func primaryAddress(cfg engine.Config) string {
	prefix := "4"
	switch cfg.Net {
	case asset.Testnet:
		prefix = "9"
	case asset.Stagenet:
		prefix = "5"
	}
	sum := sha256.Sum256([]byte(cfg.Seed.Mnemonic()))
	return prefix + hex.EncodeToString(sum[:])
}

func subaddress(primary string, index uint32) string {
	sum := sha256.Sum256([]byte(primary + "/" + strconv.FormatUint(uint64(index), 10)))
	return "8" + hex.EncodeToString(sum[:])
}

// Config returns the config the engine was created with.
func (e *Engine) Config() engine.Config {
	return e.cfg
}

// RestoreHeight is the height the engine started scanning from.
func (e *Engine) RestoreHeight() uint64 {
	return e.restoreHeight
}

func (e *Engine) Start(ctx context.Context) error {
	e.driver.mtx.Lock()
	startErr := e.driver.startErr
	e.driver.mtx.Unlock()

	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.closed {
		return ErrClosed
	}
	e.startCalls++
	if e.running {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if startErr != nil {
		e.emitSyncState(engine.NotSynced{Reason: startErr.Error()})
		return startErr
	}

	e.running = true
	e.log.Infof("Connecting to %s (trusted=%v)", e.cfg.Node, e.cfg.TrustNode)
	e.emitSyncState(engine.Connecting{})

	if step := e.driver.syncStep; step > 0 {
		syncCtx, cancel := context.WithCancel(context.Background())
		e.stopSync = cancel
		e.syncWg.Add(1)
		go func() {
			defer e.syncWg.Done()
			e.autoSync(syncCtx, step)
		}()
	}
	return nil
}

// autoSync scans from the current height to the chain tip in ten steps.
func (e *Engine) autoSync(ctx context.Context, step time.Duration) {
	tip := e.driver.chainTip(e.cfg.Net)
	e.mtx.Lock()
	from := e.height
	e.mtx.Unlock()
	if from > tip {
		from = tip
	}

	total := tip - from
	const steps = 10
	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(step):
		}
		remaining := total - total*uint64(i)/steps
		progress := 1.0
		if total > 0 {
			progress = float64(total-remaining) / float64(total)
		}
		e.mtx.Lock()
		e.height = tip - remaining
		e.emitSyncState(engine.SyncingProgress(progress, remaining))
		e.mtx.Unlock()
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.emitSyncState(engine.Synced{})
	e.emitBalance(e.balance)
	e.emitTransactions(e.txs)
}

func (e *Engine) Stop() error {
	e.mtx.Lock()
	if !e.running {
		e.mtx.Unlock()
		return nil
	}
	e.running = false
	stopSync := e.stopSync
	e.stopSync = nil
	e.mtx.Unlock()

	if stopSync != nil {
		stopSync()
		e.syncWg.Wait()
	}

	e.mtx.Lock()
	e.emitSyncState(engine.NotSynced{Reason: "stopped"})
	e.mtx.Unlock()
	e.log.Infof("Disconnected from %s", e.cfg.Node)
	return nil
}

func (e *Engine) Close() error {
	if err := e.Stop(); err != nil {
		return err
	}
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.driver.engineClosed()
	return nil
}

// Running is true between a successful Start and Stop.
func (e *Engine) Running() bool {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.running
}

// Closed is true after Close.
func (e *Engine) Closed() bool {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.closed
}

// StartCalls is the number of times Start was called on an open engine.
func (e *Engine) StartCalls() int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.startCalls
}

func (e *Engine) SyncStates() <-chan engine.SyncState { return e.syncCh }

func (e *Engine) Balances() <-chan engine.Balance { return e.balCh }

func (e *Engine) Transactions() <-chan []engine.Transaction { return e.txCh }

// EmitSyncState pushes a sync state to the engine's stream.
func (e *Engine) EmitSyncState(state engine.SyncState) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.emitSyncState(state)
}

// EmitBalance sets the balance and pushes it to the engine's stream.
func (e *Engine) EmitBalance(balance engine.Balance) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.balance = balance
	e.emitBalance(balance)
}

// EmitTransactions sets the transaction list and pushes it to the engine's
// stream.
func (e *Engine) EmitTransactions(txs []engine.Transaction) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.txs = append([]engine.Transaction(nil), txs...)
	e.emitTransactions(e.txs)
}

// The emit helpers require e.mtx. Values are dropped if the engine is closed
// or the stream buffer is full.

func (e *Engine) emitSyncState(state engine.SyncState) {
	if e.closed {
		return
	}
	select {
	case e.syncCh <- state:
	default:
		e.log.Warnf("Sync state stream full, dropping %v", state)
	}
}

func (e *Engine) emitBalance(balance engine.Balance) {
	if e.closed {
		return
	}
	select {
	case e.balCh <- balance:
	default:
		e.log.Warnf("Balance stream full, dropping update")
	}
}

func (e *Engine) emitTransactions(txs []engine.Transaction) {
	if e.closed {
		return
	}
	txsCopy := append([]engine.Transaction(nil), txs...)
	select {
	case e.txCh <- txsCopy:
	default:
		e.log.Warnf("Transaction stream full, dropping update")
	}
}

func (e *Engine) ReceiveAddress() string {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	for i := len(e.subaddrs) - 1; i > 0; i-- {
		if !e.subaddrs[i].Used {
			return e.subaddrs[i].Address
		}
	}
	return e.address
}

func (e *Engine) Send(ctx context.Context, amount uint64, address, memo string) (*engine.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fee, err := e.EstimateFee(ctx, amount, address, engine.FeePriorityDefault)
	if err != nil {
		return nil, err
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	if e.balance.Unlocked < amount+fee {
		return nil, fmt.Errorf("%w: need %d, have %d", engine.ErrNotEnoughBalance, amount+fee, e.balance.Unlocked)
	}

	e.sent++
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d:%d", e.address, address, amount, e.sent)))
	tx := engine.Transaction{
		TxID:      hex.EncodeToString(sum[:]),
		Direction: engine.DirectionOut,
		Amount:    amount,
		Fee:       fee,
		Timestamp: time.Now().Unix(),
		Pending:   true,
		Memo:      memo,
	}
	e.balance.All -= amount + fee
	e.balance.Unlocked -= amount + fee
	e.txs = append(e.txs, tx)
	e.emitBalance(e.balance)
	e.emitTransactions(e.txs)
	return &tx, nil
}

func (e *Engine) EstimateFee(ctx context.Context, amount uint64, address string, priority engine.FeePriority) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, fmt.Errorf("%w: amount must be greater than zero", engine.ErrInvalidAmount)
	}
	if len(address) < minAddrLen {
		return 0, fmt.Errorf("%w: %q", engine.ErrInvalidAddress, address)
	}
	multiplier := uint64(1)
	switch priority {
	case engine.FeePriorityMedium:
		multiplier = 5
	case engine.FeePriorityHigh:
		multiplier = 25
	}
	return feePerKB * multiplier, nil
}

func (e *Engine) Subaddresses(ctx context.Context) ([]engine.Subaddress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return append([]engine.Subaddress(nil), e.subaddrs...), nil
}

func (e *Engine) CreateSubaddress(ctx context.Context, label string) (*engine.Subaddress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	index := uint32(len(e.subaddrs))
	sub := engine.Subaddress{
		Index:   index,
		Address: subaddress(e.address, index),
		Label:   label,
	}
	e.subaddrs = append(e.subaddrs, sub)
	return &sub, nil
}

func (e *Engine) StatusInfo() map[string]string {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return map[string]string{
		"driver":        DriverName,
		"network":       e.cfg.Net.String(),
		"node":          e.cfg.Node,
		"trustedNode":   strconv.FormatBool(e.cfg.TrustNode),
		"restoreHeight": strconv.FormatUint(e.restoreHeight, 10),
		"height":        strconv.FormatUint(e.height, 10),
		"running":       strconv.FormatBool(e.running),
	}
}
