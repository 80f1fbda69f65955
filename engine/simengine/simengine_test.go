package simengine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itswisdomagain/xmrwallet/asset"
	"github.com/itswisdomagain/xmrwallet/engine"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, restore string) engine.Config {
	t.Helper()
	seed, err := asset.GenerateSeed()
	require.NoError(t, err)
	return engine.Config{
		DataDir:             t.TempDir(),
		Seed:                seed,
		RestoreDateOrHeight: restore,
		WalletID:            "wallet-1",
		Node:                "127.0.0.1:18081",
	}
}

func TestRegistered(t *testing.T) {
	driver, err := engine.Lookup(DriverName)
	require.NoError(t, err)
	require.IsType(t, &Driver{}, driver)
}

func TestNewEngine(t *testing.T) {
	d := NewDriver(WithTipHeight(1000))

	_, err := d.New(engine.Config{WalletID: "x"})
	require.Error(t, err)

	cfg := testConfig(t, "500")
	e, err := d.New(cfg)
	require.NoError(t, err)
	require.Equal(t, 1, d.Live())
	require.True(t, WalletFilesExist(cfg.DataDir, cfg.WalletID))
	require.Equal(t, uint64(500), e.(*Engine).RestoreHeight())

	// Reopening with "0" keeps the saved height.
	cfg.RestoreDateOrHeight = "0"
	e2, err := d.New(cfg)
	require.NoError(t, err)
	require.Equal(t, uint64(500), e2.(*Engine).RestoreHeight())
	require.Equal(t, e.ReceiveAddress(), e2.ReceiveAddress())

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	require.NoError(t, e2.Close())
	require.Zero(t, d.Live())
	require.Equal(t, 2, d.MaxLive())

	require.NoError(t, d.DeleteWalletFiles(cfg.DataDir, cfg.WalletID))
	require.False(t, WalletFilesExist(cfg.DataDir, cfg.WalletID))
	require.Equal(t, []string{cfg.WalletID}, d.Deleted())

	cfg.RestoreDateOrHeight = "2019-01-01"
	e3, err := d.New(cfg)
	require.NoError(t, err)
	want, err := d.EstimateHeight(context.Background(), asset.Mainnet, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, want, e3.(*Engine).RestoreHeight())

	cfg.RestoreDateOrHeight = "soon"
	_, err = d.New(cfg)
	require.Error(t, err)
}

func TestEstimateHeightPerNetwork(t *testing.T) {
	d := NewDriver()
	date := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	mainnet, err := d.EstimateHeight(context.Background(), asset.Mainnet, date)
	require.NoError(t, err)
	stagenet, err := d.EstimateHeight(context.Background(), asset.Stagenet, date)
	require.NoError(t, err)
	require.Less(t, stagenet, mainnet)

	tip, err := d.RestoreHeightForNewWallet(context.Background(), asset.Stagenet)
	require.NoError(t, err)
	require.Less(t, tip, mainnet)
}

func TestAutoSync(t *testing.T) {
	d := NewDriver(WithTipHeight(2000), WithAutoSync(time.Millisecond))
	e, err := d.New(testConfig(t, "1000"))
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Start(context.Background()))
	require.Equal(t, engine.SyncState(engine.Connecting{}), <-e.SyncStates())

	var last engine.SyncState
	timeout := time.After(5 * time.Second)
	for {
		select {
		case last = <-e.SyncStates():
		case <-timeout:
			t.Fatal("sync did not complete")
		}
		if _, ok := last.(engine.Synced); ok {
			break
		}
		syncing, ok := last.(engine.Syncing)
		require.True(t, ok, "unexpected state %v", last)
		require.True(t, syncing.HasProgress)
	}
	require.Equal(t, "2000", e.StatusInfo()["height"])
}

func TestStartStop(t *testing.T) {
	d := NewDriver(WithTipHeight(1000))
	e, err := d.New(testConfig(t, "0"))
	require.NoError(t, err)
	sim := e.(*Engine)

	require.NoError(t, e.Start(context.Background()))
	require.True(t, sim.Running())
	require.NoError(t, e.Start(context.Background()))
	require.Equal(t, 2, sim.StartCalls())

	require.NoError(t, e.Stop())
	require.False(t, sim.Running())
	require.NoError(t, e.Stop())

	errStart := errors.New("refused")
	d.FailStart(errStart)
	require.ErrorIs(t, e.Start(context.Background()), errStart)
	d.FailStart(nil)

	require.NoError(t, e.Close())
	require.ErrorIs(t, e.Start(context.Background()), ErrClosed)
}

func TestSendAndFees(t *testing.T) {
	d := NewDriver(WithTipHeight(1000))
	e, err := d.New(testConfig(t, "0"))
	require.NoError(t, err)
	defer e.Close()
	sim := e.(*Engine)
	ctx := context.Background()

	low, err := e.EstimateFee(ctx, 10, "destination-addr", engine.FeePriorityLow)
	require.NoError(t, err)
	high, err := e.EstimateFee(ctx, 10, "destination-addr", engine.FeePriorityHigh)
	require.NoError(t, err)
	require.Greater(t, high, low)

	_, err = e.EstimateFee(ctx, 10, "short", engine.FeePriorityLow)
	require.Error(t, err)
	_, err = e.EstimateFee(ctx, 0, "destination-addr", engine.FeePriorityLow)
	require.Error(t, err)

	_, err = e.Send(ctx, 10, "destination-addr", "")
	require.ErrorIs(t, err, engine.ErrNotEnoughBalance)

	sim.EmitBalance(engine.Balance{All: 1e9, Unlocked: 1e9})
	<-e.Balances()
	tx, err := e.Send(ctx, 1000, "destination-addr", "memo")
	require.NoError(t, err)
	require.True(t, tx.Pending)
	require.Equal(t, engine.DirectionOut, tx.Direction)

	balance := <-e.Balances()
	require.Equal(t, uint64(1e9-1000-low), balance.Unlocked)
	txs := <-e.Transactions()
	require.Len(t, txs, 1)
	require.Equal(t, tx.TxID, txs[0].TxID)
}

func TestSubaddresses(t *testing.T) {
	d := NewDriver(WithTipHeight(1000))
	e, err := d.New(testConfig(t, "0"))
	require.NoError(t, err)
	defer e.Close()
	ctx := context.Background()

	primary := e.ReceiveAddress()
	sub, err := e.CreateSubaddress(ctx, "shop")
	require.NoError(t, err)
	require.NotEqual(t, primary, sub.Address)
	require.Equal(t, sub.Address, e.ReceiveAddress())

	subs, err := e.Subaddresses(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.Equal(t, primary, subs[0].Address)
}
