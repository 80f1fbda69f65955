package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/itswisdomagain/xmrwallet/asset"
	"github.com/itswisdomagain/xmrwallet/engine"
	"github.com/itswisdomagain/xmrwallet/engine/simengine"
	"github.com/itswisdomagain/xmrwallet/session"
	"github.com/stretchr/testify/require"
)

const (
	tipHeight  = 3_100_000
	testNode   = "node.example.com:18081"
	otherNode  = "https://other.example.com:18089"
	waitFor    = 3 * time.Second
	pollEvery  = 2 * time.Millisecond
	oneXMR     = 1_000_000_000_000
	passphrase = "correct horse"
)

type testHarness struct {
	dir    string
	driver *simengine.Driver
	c      *Controller
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		dir:    t.TempDir(),
		driver: simengine.NewDriver(simengine.WithTipHeight(tipHeight)),
	}
	h.c = h.open(t)
	return h
}

func (h *testHarness) open(t *testing.T) *Controller {
	t.Helper()
	c, err := New(Config{
		DataDir:     h.dir,
		Net:         asset.Mainnet,
		Driver:      h.driver,
		Passphrase:  []byte(passphrase),
		DefaultNode: testNode,
		Logger:      slog.Disabled,
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func bip39Words(t *testing.T) []string {
	t.Helper()
	seed, err := asset.GenerateSeed()
	require.NoError(t, err)
	return seed.Words
}

func electrumWords(t *testing.T) []string {
	return append(bip39Words(t), "abbey")
}

func (h *testHarness) waitState(t *testing.T, cond func(WalletState) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(h.c.State()) }, waitFor, pollEvery)
}

func TestCreateWallet(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, StatusUninitialized, h.c.State().Status)

	words := bip39Words(t)
	require.NoError(t, h.c.Create(context.Background(), words, asset.SeedTypeBIP39))

	eng := h.driver.Latest()
	require.NotNil(t, eng)
	require.Equal(t, "3100000", eng.Config().RestoreDateOrHeight)
	require.Equal(t, testNode, eng.Config().Node)

	state := h.c.State()
	require.True(t, state.HasWallet)
	require.False(t, state.IsInitializing)
	require.Empty(t, state.Error)
	require.Equal(t, StatusActive, state.Status)
	require.Equal(t, eng.ReceiveAddress(), state.ReceiveAddress)

	id, err := h.c.Identity()
	require.NoError(t, err)
	require.Equal(t, eng.Config().WalletID, id.WalletID)

	seed, err := h.c.Seed()
	require.NoError(t, err)
	require.Equal(t, words, seed.Words)
	require.Equal(t, asset.SeedTypeBIP39, seed.Type)

	height, _ := h.c.RestoreHeight()
	require.Equal(t, uint64(tipHeight), height)

	require.Eventually(t, eng.Running, waitFor, pollEvery)
	h.waitState(t, func(s WalletState) bool {
		_, ok := s.SyncState.(engine.Connecting)
		return ok
	})

	// A second wallet cannot be created over the first.
	err = h.c.Create(context.Background(), bip39Words(t), asset.SeedTypeBIP39)
	require.ErrorIs(t, err, ErrWalletExists)
	require.Len(t, h.driver.Engines(), 1)
}

func TestRestoreInfersSeedType(t *testing.T) {
	tests := []struct {
		name     string
		words    func(*testing.T) []string
		seedType asset.SeedType
	}{
		{"electrum", electrumWords, asset.SeedTypeElectrum25},
		{"bip39", bip39Words, asset.SeedTypeBIP39},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, h.c.Restore(context.Background(), tc.words(t), "1500000"))

			eng := h.driver.Latest()
			require.Equal(t, tc.seedType, eng.Config().Seed.Type)
			require.Equal(t, "1500000", eng.Config().RestoreDateOrHeight)
			require.True(t, h.c.settings.Traits().IsRestored())

			_, date := h.c.RestoreHeight()
			require.Equal(t, h.c.DateForHeight(1500000), date)
		})
	}
}

func TestRestoreRejectsBadWordCount(t *testing.T) {
	h := newHarness(t)
	words := bip39Words(t)[:23]

	err := h.c.Restore(context.Background(), words, "0")
	require.ErrorIs(t, err, asset.ErrInvalidWordCount)
	require.Empty(t, h.driver.Engines())

	state := h.c.State()
	require.False(t, state.HasWallet)
	require.False(t, state.IsInitializing)
	require.NotEmpty(t, state.Error)
}

func TestRestoreFromDate(t *testing.T) {
	h := newHarness(t)
	date := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	want, err := h.driver.EstimateHeight(context.Background(), asset.Mainnet, date)
	require.NoError(t, err)

	require.NoError(t, h.c.Restore(context.Background(), bip39Words(t), "2020-03-01"))
	require.Equal(t, want, h.driver.Latest().RestoreHeight())

	height, savedDate := h.c.RestoreHeight()
	require.Equal(t, want, height)
	require.True(t, date.Equal(savedDate))

	h2 := newHarness(t)
	err = h2.c.Restore(context.Background(), bip39Words(t), "yesterday")
	require.ErrorIs(t, err, ErrInvalidRestorePoint)
	require.Empty(t, h2.driver.Engines())
}

// netRecorder records the network of every height estimate it serves.
type netRecorder struct {
	*simengine.Driver
	mtx  sync.Mutex
	nets []asset.Network
}

func (r *netRecorder) EstimateHeight(ctx context.Context, net asset.Network, date time.Time) (uint64, error) {
	r.mtx.Lock()
	r.nets = append(r.nets, net)
	r.mtx.Unlock()
	return r.Driver.EstimateHeight(ctx, net, date)
}

func TestRestoreStagenetFromDate(t *testing.T) {
	driver := &netRecorder{Driver: simengine.NewDriver(simengine.WithTipHeight(tipHeight))}
	c, err := New(Config{
		DataDir:     t.TempDir(),
		Net:         asset.Stagenet,
		Driver:      driver,
		Passphrase:  []byte(passphrase),
		DefaultNode: testNode,
		Logger:      slog.Disabled,
	})
	require.NoError(t, err)
	defer c.Close()

	date := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	want, err := driver.Driver.EstimateHeight(context.Background(), asset.Stagenet, date)
	require.NoError(t, err)
	mainnet, err := driver.Driver.EstimateHeight(context.Background(), asset.Mainnet, date)
	require.NoError(t, err)
	require.Less(t, want, mainnet)

	require.NoError(t, c.Restore(context.Background(), bip39Words(t), "2020-03-01"))
	require.Equal(t, []asset.Network{asset.Stagenet}, driver.nets)
	require.Equal(t, want, driver.Latest().RestoreHeight())
	require.Equal(t, asset.Stagenet, driver.Latest().Config().Net)

	height, savedDate := c.RestoreHeight()
	require.Equal(t, want, height)
	require.True(t, date.Equal(savedDate), "saved date %v", savedDate)
}

func TestCreateEngineFailureLeavesNothing(t *testing.T) {
	h := newHarness(t)
	errNew := errors.New("engine unavailable")
	h.driver.FailNew(errNew)

	err := h.c.Create(context.Background(), bip39Words(t), asset.SeedTypeBIP39)
	require.ErrorIs(t, err, errNew)

	state := h.c.State()
	require.False(t, state.IsInitializing)
	require.False(t, state.HasWallet)
	require.Contains(t, state.Error, errNew.Error())

	_, err = h.c.Identity()
	require.ErrorIs(t, err, asset.ErrNoIdentity)
	_, ok := h.c.secrets.Read()
	require.False(t, ok)

	// Retrying after the failure is cleared succeeds.
	h.driver.FailNew(nil)
	require.NoError(t, h.c.Create(context.Background(), bip39Words(t), asset.SeedTypeBIP39))
	require.Empty(t, h.c.State().Error)
}

func TestStartFailureSetsError(t *testing.T) {
	h := newHarness(t)
	errStart := errors.New("connection refused")
	h.driver.FailStart(errStart)

	require.NoError(t, h.c.Create(context.Background(), bip39Words(t), asset.SeedTypeBIP39))
	h.waitState(t, func(s WalletState) bool {
		return s.Error != "" && !s.IsInitializing
	})
	require.Contains(t, h.c.State().Error, errStart.Error())
}

func TestUnlockWithoutWallet(t *testing.T) {
	h := newHarness(t)

	err := h.c.UnlockAndResume(context.Background())
	require.ErrorIs(t, err, asset.ErrNoIdentity)

	state := h.c.State()
	require.NotEmpty(t, state.Error)
	require.False(t, state.IsInitializing)
	require.Empty(t, h.driver.Engines())
}

func TestUnlockWithoutSeed(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Create(context.Background(), bip39Words(t), asset.SeedTypeBIP39))
	h.c.session.StopAndRelease()
	require.NoError(t, h.c.secrets.Erase())

	err := h.c.UnlockAndResume(context.Background())
	require.ErrorIs(t, err, ErrNoSeed)
	require.False(t, h.c.State().IsInitializing)
	require.Len(t, h.driver.Engines(), 1)
}

func TestColdStartResume(t *testing.T) {
	h := newHarness(t)
	words := bip39Words(t)
	require.NoError(t, h.c.Create(context.Background(), words, asset.SeedTypeBIP39))
	walletID := h.driver.Latest().Config().WalletID
	require.NoError(t, h.c.Close())

	c := h.open(t)
	h.c = c
	state := c.State()
	require.True(t, state.HasWallet)
	require.Equal(t, StatusLocked, state.Status)

	require.NoError(t, c.UnlockAndResume(context.Background()))
	eng := h.driver.Latest()
	require.Len(t, h.driver.Engines(), 2)
	require.Equal(t, "0", eng.Config().RestoreDateOrHeight)
	require.Equal(t, walletID, eng.Config().WalletID)
	require.Equal(t, words, eng.Config().Seed.Words)
	// The sim engine keeps the height saved with its wallet files.
	require.Equal(t, uint64(tipHeight), eng.RestoreHeight())
	require.Equal(t, StatusActive, c.State().Status)
}

func TestLockAndUnlockReusesEngine(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Create(context.Background(), bip39Words(t), asset.SeedTypeBIP39))
	eng := h.driver.Latest()
	require.Eventually(t, eng.Running, waitFor, pollEvery)

	h.c.Lock()
	require.False(t, eng.Running())
	require.Equal(t, StatusLocked, h.c.State().Status)

	require.NoError(t, h.c.UnlockAndResume(context.Background()))
	require.Eventually(t, eng.Running, waitFor, pollEvery)
	require.Len(t, h.driver.Engines(), 1)
	require.Equal(t, StatusActive, h.c.State().Status)
}

func activeWalletWithFunds(t *testing.T) *testHarness {
	t.Helper()
	h := newHarness(t)
	require.NoError(t, h.c.Create(context.Background(), bip39Words(t), asset.SeedTypeBIP39))

	eng := h.driver.Latest()
	eng.EmitBalance(engine.Balance{All: 5 * oneXMR, Unlocked: 5 * oneXMR})
	eng.EmitTransactions([]engine.Transaction{
		{TxID: "tx1", Amount: 2 * oneXMR, Height: 3_000_000, Timestamp: 100},
		{TxID: "tx2", Amount: 3 * oneXMR, Height: 3_000_100, Timestamp: 200},
	})
	h.waitState(t, func(s WalletState) bool {
		return s.Balance.All == 5*oneXMR && len(s.Transactions) == 2
	})
	return h
}

func TestChangeNodeKeepsDisplayedValues(t *testing.T) {
	h := activeWalletWithFunds(t)
	old := h.driver.Latest()

	require.NoError(t, h.c.ChangeNode(context.Background(), otherNode, true))

	state := h.c.State()
	require.Equal(t, uint64(5*oneXMR), state.Balance.All)
	require.Len(t, state.Transactions, 2)
	require.Empty(t, state.Error)

	eng := h.driver.Latest()
	require.NotEqual(t, old, eng)
	require.True(t, old.Closed())
	require.Equal(t, otherNode, eng.Config().Node)
	require.True(t, eng.Config().TrustNode)
	require.Equal(t, "0", eng.Config().RestoreDateOrHeight)

	id, err := h.c.Identity()
	require.NoError(t, err)
	require.Equal(t, otherNode, id.Node)

	eng.EmitBalance(engine.Balance{All: 6 * oneXMR, Unlocked: oneXMR})
	h.waitState(t, func(s WalletState) bool { return s.Balance.All == 6*oneXMR })
}

func TestChangeNodeRejectsInvalidNode(t *testing.T) {
	h := activeWalletWithFunds(t)

	for _, node := range []string{"", "no-port", "ftp://host:1", "host:0", "host:70000"} {
		err := h.c.ChangeNode(context.Background(), node, false)
		require.ErrorIs(t, err, asset.ErrInvalidNodeAddress, node)
	}
	require.Len(t, h.driver.Engines(), 1)
	require.False(t, h.driver.Latest().Closed())
}

func TestConcurrentChangeNode(t *testing.T) {
	h := activeWalletWithFunds(t)

	var wg sync.WaitGroup
	for _, node := range []string{otherNode, testNode} {
		wg.Add(1)
		go func(node string) {
			defer wg.Done()
			h.c.ChangeNode(context.Background(), node, false)
		}(node)
	}
	wg.Wait()

	require.Equal(t, 1, h.driver.Live())
	require.Equal(t, 1, h.driver.MaxLive())

	engines := h.driver.Engines()
	require.Len(t, engines, 3)
	final := engines[2]
	for _, eng := range engines[:2] {
		require.True(t, eng.Closed())
		eng.EmitBalance(engine.Balance{All: 99 * oneXMR})
	}
	final.EmitBalance(engine.Balance{All: 7 * oneXMR})
	h.waitState(t, func(s WalletState) bool { return s.Balance.All == 7*oneXMR })

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, uint64(7*oneXMR), h.c.State().Balance.All)
}

func TestResetSyncPreservesHeight(t *testing.T) {
	h := activeWalletWithFunds(t)
	walletID := h.driver.Latest().Config().WalletID

	n, err := h.c.CountHistory(HistoryFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, h.c.ResetSync(context.Background(), true))

	state := h.c.State()
	require.Zero(t, state.Balance.All)
	require.Empty(t, state.Transactions)
	require.False(t, state.IsInitializing)
	require.Equal(t, []string{walletID}, h.driver.Deleted())
	require.Equal(t, "3100000", h.driver.Latest().Config().RestoreDateOrHeight)

	n, err = h.c.CountHistory(HistoryFilter{})
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestResetSyncOverrideWins(t *testing.T) {
	h := activeWalletWithFunds(t)
	require.NoError(t, h.c.SetRestoreHeightOverride(2_000_000))

	height, date := h.c.RestoreHeight()
	require.Equal(t, uint64(2_000_000), height)
	require.Equal(t, h.c.DateForHeight(2_000_000), date)

	require.NoError(t, h.c.ResetSync(context.Background(), true))
	require.Equal(t, "2000000", h.driver.Latest().Config().RestoreDateOrHeight)
}

func TestResetSyncFromGenesis(t *testing.T) {
	h := activeWalletWithFunds(t)
	require.NoError(t, h.c.SetRestoreHeightOverride(2_000_000))

	require.NoError(t, h.c.ResetSync(context.Background(), false))
	eng := h.driver.Latest()
	require.Equal(t, "0", eng.Config().RestoreDateOrHeight)
	require.Zero(t, eng.RestoreHeight())

	height, _ := h.c.RestoreHeight()
	require.Zero(t, height)
}

func TestRemoveWallet(t *testing.T) {
	h := activeWalletWithFunds(t)
	walletID := h.driver.Latest().Config().WalletID
	require.NoError(t, h.c.AddCustomNode(otherNode))

	require.NoError(t, h.c.Remove(context.Background()))

	state := h.c.State()
	require.False(t, state.HasWallet)
	require.Equal(t, StatusRemoved, state.Status)
	require.Zero(t, state.Balance)
	require.Empty(t, state.Transactions)
	require.Empty(t, state.ReceiveAddress)

	require.Zero(t, h.driver.Live())
	require.False(t, simengine.WalletFilesExist(h.dir, walletID))
	_, err := h.c.Seed()
	require.ErrorIs(t, err, ErrNoSeed)
	_, err = h.c.Identity()
	require.ErrorIs(t, err, asset.ErrNoIdentity)
	require.Empty(t, h.c.CustomNodes())

	sess := h.c.Session()
	require.Nil(t, sess.Handle())
	require.Equal(t, engine.Balance{}, sess.Balance())
	require.Empty(t, sess.Transactions())
	require.Equal(t, engine.SyncState(engine.NotSynced{}), sess.SyncState())

	_, err = h.c.Send(context.Background(), oneXMR, "4destination-address", "")
	require.ErrorIs(t, err, session.ErrNoSession)

	// A new wallet can be created after removal.
	require.NoError(t, h.c.Create(context.Background(), bip39Words(t), asset.SeedTypeBIP39))
	require.True(t, h.c.State().HasWallet)
}

func TestSendAndHistory(t *testing.T) {
	h := activeWalletWithFunds(t)

	fee, err := h.c.EstimateFee(context.Background(), oneXMR, "4destination-address", engine.FeePriorityHigh)
	require.NoError(t, err)
	require.NotZero(t, fee)

	tx, err := h.c.Send(context.Background(), oneXMR, "4destination-address", "rent")
	require.NoError(t, err)
	require.Equal(t, engine.DirectionOut, tx.Direction)

	indexed, err := h.c.Transaction(tx.TxID)
	require.NoError(t, err)
	require.NotNil(t, indexed)
	require.Equal(t, "rent", indexed.Memo)

	h.waitState(t, func(s WalletState) bool { return len(s.Transactions) == 3 })

	out := engine.DirectionOut
	sent, err := h.c.History(HistoryFilter{Direction: &out}, 0, 0)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	require.Equal(t, tx.TxID, sent[0].TxID)

	all, err := h.c.History(HistoryFilter{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, tx.TxID, all[0].TxID)

	recent, err := h.c.History(HistoryFilter{MinHeight: 3_000_050}, 0, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "tx2", recent[0].TxID)

	_, err = h.c.Send(context.Background(), 100*oneXMR, "4destination-address", "")
	require.ErrorIs(t, err, engine.ErrNotEnoughBalance)
}

func TestSubaddresses(t *testing.T) {
	h := activeWalletWithFunds(t)
	before := h.c.State().ReceiveAddress

	sub, err := h.c.CreateSubaddress(context.Background(), "savings")
	require.NoError(t, err)
	require.Equal(t, uint32(1), sub.Index)
	require.Equal(t, sub.Address, h.c.State().ReceiveAddress)
	require.NotEqual(t, before, sub.Address)

	subs, err := h.c.Subaddresses(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)

	info, err := h.c.StatusInfo()
	require.NoError(t, err)
	require.Equal(t, testNode, info["node"])
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states := h.c.Subscribe(ctx)
	require.False(t, (<-states).HasWallet)

	require.NoError(t, h.c.Create(context.Background(), bip39Words(t), asset.SeedTypeBIP39))
	require.Eventually(t, func() bool {
		select {
		case s := <-states:
			return s.HasWallet
		default:
			return false
		}
	}, waitFor, pollEvery)
}

func TestCustomNodes(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.AddCustomNode(otherNode))
	require.NoError(t, h.c.AddCustomNode(otherNode))
	require.ErrorIs(t, h.c.AddCustomNode("bad node"), asset.ErrInvalidNodeAddress)
	require.Equal(t, []string{otherNode}, h.c.CustomNodes())

	require.NoError(t, h.c.RemoveCustomNode(otherNode))
	require.Empty(t, h.c.CustomNodes())
}
