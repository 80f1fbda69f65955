package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/asdine/storm/q"
	"github.com/itswisdomagain/xmrwallet/asset"
	"github.com/itswisdomagain/xmrwallet/engine"
	"github.com/itswisdomagain/xmrwallet/session"
	"github.com/itswisdomagain/xmrwallet/walletdata"
)

func (c *Controller) handle() (engine.Engine, error) {
	handle := c.session.Handle()
	if handle == nil {
		return nil, session.ErrNoSession
	}
	return handle, nil
}

// Send sends amount atomic units to address and indexes the resulting
// transaction.
func (c *Controller) Send(ctx context.Context, amount uint64, address, memo string) (*engine.Transaction, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", engine.ErrInvalidAmount)
	}
	if address == "" {
		return nil, fmt.Errorf("%w: destination address is required", engine.ErrInvalidAddress)
	}
	handle, err := c.handle()
	if err != nil {
		return nil, err
	}

	tx, err := handle.Send(ctx, amount, address, memo)
	if err != nil {
		return nil, err
	}
	if _, err := c.txIndex.IndexTransaction(tx); err != nil {
		c.log.Errorf("Error indexing sent tx %s: %v", tx.TxID, err)
	}
	c.log.Infof("Sent %d to %s in tx %s", amount, address, tx.TxID)
	return tx, nil
}

// EstimateFee estimates the fee for sending amount to address.
func (c *Controller) EstimateFee(ctx context.Context, amount uint64, address string, priority engine.FeePriority) (uint64, error) {
	handle, err := c.handle()
	if err != nil {
		return 0, err
	}
	return handle.EstimateFee(ctx, amount, address, priority)
}

func (c *Controller) Subaddresses(ctx context.Context) ([]engine.Subaddress, error) {
	handle, err := c.handle()
	if err != nil {
		return nil, err
	}
	return handle.Subaddresses(ctx)
}

// CreateSubaddress creates a new receive address. The state's receive
// address is refreshed.
func (c *Controller) CreateSubaddress(ctx context.Context, label string) (*engine.Subaddress, error) {
	handle, err := c.handle()
	if err != nil {
		return nil, err
	}
	sub, err := handle.CreateSubaddress(ctx, label)
	if err != nil {
		return nil, err
	}
	c.updateState(func(s *WalletState) {
		s.ReceiveAddress = handle.ReceiveAddress()
	})
	return sub, nil
}

// StatusInfo returns engine diagnostics.
func (c *Controller) StatusInfo() (map[string]string, error) {
	handle, err := c.handle()
	if err != nil {
		return nil, err
	}
	return handle.StatusInfo(), nil
}

// HistoryFilter narrows a History query. The zero value matches every
// transaction.
type HistoryFilter struct {
	Direction   *engine.Direction
	PendingOnly bool
	MinHeight   uint64
}

func (f HistoryFilter) matchers() []q.Matcher {
	var matchers []q.Matcher
	if f.Direction != nil {
		matchers = append(matchers, q.Eq("Direction", *f.Direction))
	}
	if f.PendingOnly {
		matchers = append(matchers, q.Eq("Pending", true))
	}
	if f.MinHeight > 0 {
		matchers = append(matchers, q.Gte("Height", f.MinHeight))
	}
	return matchers
}

// History returns indexed transactions matching filter, newest first.
func (c *Controller) History(filter HistoryFilter, offset, limit int) ([]*engine.Transaction, error) {
	return c.txIndex.FindTransactions(offset, limit, walletdata.SortDescending("Timestamp"), filter.matchers()...)
}

// CountHistory returns the number of indexed transactions matching filter.
func (c *Controller) CountHistory(filter HistoryFilter) (int, error) {
	return c.txIndex.CountTransactions(filter.matchers()...)
}

// Transaction returns the indexed transaction with txID or nil.
func (c *Controller) Transaction(txID string) (*engine.Transaction, error) {
	return c.txIndex.FindTransaction("TxID", txID)
}

// SetRestoreHeightOverride saves the height ResetSync starts from when the
// saved height is preserved.
func (c *Controller) SetRestoreHeightOverride(height uint64) error {
	if _, err := c.settings.Identity(); err != nil {
		return err
	}
	return c.settings.SaveRestoreHeightOverride(height)
}

// RestoreHeight returns the height the next ResetSync would start from if the
// saved height is preserved, and the date that height maps to.
func (c *Controller) RestoreHeight() (uint64, time.Time) {
	height := c.savedRestoreHeight()
	if _, ok := c.settings.RestoreHeightOverride(); !ok {
		if date, ok := c.settings.RestoreDate(); ok {
			return height, date
		}
	}
	return height, c.heights.DateForHeight(height)
}

// DateForHeight returns the date the chain reached height.
func (c *Controller) DateForHeight(height uint64) time.Time {
	return c.heights.DateForHeight(height)
}

// HeightForDate asks the engine for the height the chain had at date.
func (c *Controller) HeightForDate(ctx context.Context, date time.Time) (uint64, error) {
	return c.heights.HeightForDate(ctx, date)
}

// Seed returns the saved seed so it can be shown for backup. Returns
// ErrNoSeed if there is no readable seed.
func (c *Controller) Seed() (*asset.Seed, error) {
	seed, ok := c.secrets.Read()
	if !ok {
		return nil, ErrNoSeed
	}
	return seed, nil
}

// Identity returns the saved wallet identity.
func (c *Controller) Identity() (*asset.WalletIdentity, error) {
	return c.settings.Identity()
}

// CustomNodes returns the user's saved node addresses.
func (c *Controller) CustomNodes() []string {
	return c.settings.CustomNodes()
}

func (c *Controller) AddCustomNode(node string) error {
	return c.settings.AddCustomNode(node)
}

func (c *Controller) RemoveCustomNode(node string) error {
	return c.settings.RemoveCustomNode(node)
}
