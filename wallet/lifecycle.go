package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/itswisdomagain/xmrwallet/asset"
	"github.com/itswisdomagain/xmrwallet/engine"
)

// Create creates a new wallet from a seed that has never been used before.
// The wallet scans from the current chain tip.
func (c *Controller) Create(ctx context.Context, words []string, seedType asset.SeedType) error {
	c.opMtx.Lock()
	defer c.opMtx.Unlock()

	const op = "Create"
	seed, err := asset.NewSeed(words, seedType)
	if err != nil {
		return c.fail(op, err)
	}
	if err := c.checkNoWallet(); err != nil {
		return c.fail(op, err)
	}

	c.beginInit()
	height, err := c.driver.RestoreHeightForNewWallet(ctx, c.net)
	if err != nil {
		return c.fail(op, fmt.Errorf("unable to get restore height for new wallet: %w", err))
	}
	rp := restorePoint{height: height, date: c.heights.DateForHeight(height)}
	return c.initialize(ctx, op, seed, rp, 0)
}

// Restore recreates a wallet from its seed. The seed type is inferred from
// the word count. restoreHeightOrDate is a block height to scan from, with 0
// meaning genesis, or a YYYY-MM-DD date.
func (c *Controller) Restore(ctx context.Context, words []string, restoreHeightOrDate string) error {
	c.opMtx.Lock()
	defer c.opMtx.Unlock()

	const op = "Restore"
	seed, err := asset.SeedFromWords(words)
	if err != nil {
		return c.fail(op, err)
	}
	if err := c.checkNoWallet(); err != nil {
		return c.fail(op, err)
	}

	c.beginInit()
	rp, err := c.resolveRestorePoint(ctx, restoreHeightOrDate)
	if err != nil {
		return c.fail(op, err)
	}
	return c.initialize(ctx, op, seed, rp, asset.WalletTraitRestored)
}

func (c *Controller) checkNoWallet() error {
	_, err := c.settings.Identity()
	if err == nil {
		return ErrWalletExists
	}
	if !errors.Is(err, asset.ErrNoIdentity) {
		return err
	}
	return nil
}

// initialize constructs the engine for a new wallet identity and only
// persists the identity and seed once construction succeeds.
func (c *Controller) initialize(ctx context.Context, op string, seed *asset.Seed, rp restorePoint, traits asset.WalletTrait) error {
	id := asset.WalletIdentity{
		WalletID:  uuid.NewString(),
		Node:      c.defaultNode,
		TrustNode: c.trustNode,
	}

	c.stopSubscriptions()
	handle, err := c.session.StartSession(c.engineConfig(id, seed, rp.engineArg()))
	if err != nil {
		return c.fail(op, fmt.Errorf("unable to construct wallet engine: %w", err))
	}

	if err := c.persistNewWallet(id, traits, rp, seed); err != nil {
		c.session.Clear()
		c.rollbackNewWallet(id.WalletID)
		return c.fail(op, err)
	}

	c.log.Infof("Wallet %s initialized at restore height %d", id.WalletID, rp.height)
	c.updateState(func(s *WalletState) {
		s.HasWallet = true
		s.IsInitializing = false
		s.Status = StatusActive
		s.ReceiveAddress = handle.ReceiveAddress()
		s.Error = ""
	})
	c.startSubscriptions()
	c.beginAsyncStart(handle)
	return nil
}

func (c *Controller) persistNewWallet(id asset.WalletIdentity, traits asset.WalletTrait, rp restorePoint, seed *asset.Seed) error {
	if err := c.settings.SaveIdentity(id, traits); err != nil {
		return err
	}
	if err := c.settings.SaveRestoreHeight(rp.height, rp.date); err != nil {
		return err
	}
	return c.secrets.Write(seed)
}

// rollbackNewWallet removes whatever a failed initialize left behind.
func (c *Controller) rollbackNewWallet(walletID string) {
	if err := c.secrets.Erase(); err != nil {
		c.log.Errorf("Error erasing seed: %v", err)
	}
	if err := c.settings.Clear(); err != nil {
		c.log.Errorf("Error clearing settings: %v", err)
	}
	if err := c.driver.DeleteWalletFiles(c.dataDir, walletID); err != nil {
		c.log.Errorf("Error deleting wallet files: %v", err)
	}
}

// UnlockAndResume starts syncing the saved wallet. If an engine instance
// already exists it is simply started; otherwise the saved identity and seed
// are loaded and a new engine instance is constructed from the wallet files
// on disk.
func (c *Controller) UnlockAndResume(ctx context.Context) error {
	c.opMtx.Lock()
	defer c.opMtx.Unlock()
	return c.unlockAndResume(ctx, "UnlockAndResume")
}

// unlockAndResume requires c.opMtx.
func (c *Controller) unlockAndResume(ctx context.Context, op string) error {
	if handle := c.session.Handle(); handle != nil {
		c.startSubscriptions()
		c.updateState(func(s *WalletState) {
			s.Status = StatusActive
			s.Error = ""
		})
		c.beginAsyncStart(handle)
		return nil
	}
	return c.resume(ctx, op, "0")
}

// resume reloads the saved identity and seed and constructs a new engine
// instance. It requires c.opMtx and that no engine instance exists.
func (c *Controller) resume(ctx context.Context, op, restoreDateOrHeight string) error {
	c.beginInit()

	id, err := c.settings.Identity()
	if err != nil {
		return c.fail(op, err)
	}
	seed, ok := c.secrets.Read()
	if !ok {
		return c.fail(op, ErrNoSeed)
	}

	c.stopSubscriptions()
	handle, err := c.session.StartSession(c.engineConfig(*id, seed, restoreDateOrHeight))
	if err != nil {
		return c.fail(op, fmt.Errorf("unable to open wallet engine: %w", err))
	}

	c.updateState(func(s *WalletState) {
		s.HasWallet = true
		s.IsInitializing = false
		s.Status = StatusActive
		s.ReceiveAddress = handle.ReceiveAddress()
		s.Error = ""
	})
	c.startSubscriptions()
	c.beginAsyncStart(handle)
	return nil
}

// ChangeNode switches the wallet to another node. The last balance and
// transactions stay displayed until the new engine instance reports fresh
// values.
func (c *Controller) ChangeNode(ctx context.Context, node string, trustNode bool) error {
	c.opMtx.Lock()
	defer c.opMtx.Unlock()

	const op = "ChangeNode"
	if err := asset.ValidateNodeAddress(node); err != nil {
		return c.fail(op, err)
	}
	if _, err := c.settings.Identity(); err != nil {
		return c.fail(op, err)
	}
	if err := c.settings.SaveNode(node, trustNode); err != nil {
		return c.fail(op, err)
	}

	c.log.Infof("Switching to node %s", node)
	c.stopSubscriptions()
	c.session.StopAndRelease()
	return c.unlockAndResume(ctx, op)
}

// ResetSync deletes the engine's wallet files and rescans. If preserveHeight
// is true the scan starts from the sync settings override height if one is
// saved, or else from the height saved when the wallet was created. If
// preserveHeight is false the saved heights are cleared and the scan starts
// from genesis.
func (c *Controller) ResetSync(ctx context.Context, preserveHeight bool) error {
	c.opMtx.Lock()
	defer c.opMtx.Unlock()

	const op = "ResetSync"
	id, err := c.settings.Identity()
	if err != nil {
		return c.fail(op, err)
	}

	c.beginInit()
	c.stopSubscriptions()
	c.session.StopAndRelease()
	c.session.ResetValues()
	c.updateState(func(s *WalletState) {
		s.Balance = engine.Balance{}
		s.Transactions = nil
	})
	if err := c.txIndex.DropTransactions(); err != nil {
		c.log.Errorf("Error dropping indexed transactions: %v", err)
	}
	if err := c.driver.DeleteWalletFiles(c.dataDir, id.WalletID); err != nil {
		return c.fail(op, fmt.Errorf("unable to delete wallet files: %w", err))
	}

	var height uint64
	if preserveHeight {
		height = c.savedRestoreHeight()
	} else if err := c.settings.ClearRestoreHeights(); err != nil {
		return c.fail(op, err)
	}

	c.log.Infof("Resyncing wallet from height %d", height)
	return c.resume(ctx, op, restorePoint{height: height}.engineArg())
}

// savedRestoreHeight returns the sync settings override height if saved, or
// else the creation-time height, or else 0.
func (c *Controller) savedRestoreHeight() uint64 {
	if height, ok := c.settings.RestoreHeightOverride(); ok {
		return height
	}
	if height, ok := c.settings.RestoreHeight(); ok {
		return height
	}
	return 0
}

// Remove stops the engine, permanently erases the seed and wallet settings
// and deletes the engine's wallet files.
func (c *Controller) Remove(ctx context.Context) error {
	c.opMtx.Lock()
	defer c.opMtx.Unlock()

	const op = "Remove"
	id, idErr := c.settings.Identity()

	c.stopSubscriptions()
	c.session.Clear()

	var errs []error
	if err := c.secrets.Erase(); err != nil {
		errs = append(errs, err)
	}
	if err := c.txIndex.DropTransactions(); err != nil {
		errs = append(errs, err)
	}
	if err := c.settings.Clear(); err != nil {
		errs = append(errs, err)
	}
	if idErr == nil {
		if err := c.driver.DeleteWalletFiles(c.dataDir, id.WalletID); err != nil {
			c.log.Errorf("Error deleting wallet files: %v", err)
		}
	}

	c.updateState(func(s *WalletState) {
		*s = emptyState()
		s.Status = StatusRemoved
	})
	if err := errors.Join(errs...); err != nil {
		return c.fail(op, err)
	}
	c.log.Infof("Wallet removed")
	return nil
}

// Lock stops syncing. UnlockAndResume starts it again.
func (c *Controller) Lock() {
	c.opMtx.Lock()
	defer c.opMtx.Unlock()

	if c.session.Handle() == nil {
		return
	}
	c.session.Stop()
	c.updateState(func(s *WalletState) {
		s.Status = StatusLocked
	})
}

func (c *Controller) engineConfig(id asset.WalletIdentity, seed *asset.Seed, restoreDateOrHeight string) engine.Config {
	return engine.Config{
		DataDir:             c.dataDir,
		Net:                 c.net,
		Seed:                seed,
		RestoreDateOrHeight: restoreDateOrHeight,
		WalletID:            id.WalletID,
		Node:                id.Node,
		TrustNode:           id.TrustNode,
		Logger:              c.engLog,
	}
}

// beginAsyncStart dispatches the engine connection. A start failure is
// recorded in the state unless the engine has been replaced meanwhile.
func (c *Controller) beginAsyncStart(handle engine.Engine) {
	err := c.session.BeginAsyncStart(c.ctx, func(err error) {
		if err == nil || c.session.Handle() != handle {
			return
		}
		c.updateState(func(s *WalletState) {
			s.Error = fmt.Sprintf("unable to connect: %v", err)
		})
	})
	if err != nil {
		c.log.Errorf("Unable to start wallet engine: %v", err)
		c.updateState(func(s *WalletState) {
			s.Error = err.Error()
		})
	}
}
