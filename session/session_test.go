package session

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func testConfig(t *testing.T, walletID string) engine.Config {
	t.Helper()
	seed, err := asset.GenerateSeed()
	require.NoError(t, err)
	return engine.Config{
		DataDir:             t.TempDir(),
		Net:                 asset.Mainnet,
		Seed:                seed,
		RestoreDateOrHeight: "0",
		WalletID:            walletID,
		Node:                "127.0.0.1:18081",
	}
}

func newTestSession(t *testing.T) (*Session, *simengine.Driver) {
	t.Helper()
	driver := simengine.NewDriver(simengine.WithTipHeight(3_000_000))
	s := New(context.Background(), driver, slog.Disabled)
	t.Cleanup(s.Close)
	return s, driver
}

func TestStartSessionReplacesEngine(t *testing.T) {
	s, driver := newTestSession(t)

	first, err := s.StartSession(testConfig(t, "w1"))
	require.NoError(t, err)
	require.Equal(t, first, s.Handle())

	second, err := s.StartSession(testConfig(t, "w2"))
	require.NoError(t, err)
	require.Equal(t, second, s.Handle())

	engines := driver.Engines()
	require.Len(t, engines, 2)
	require.True(t, engines[0].Closed())
	require.False(t, engines[1].Closed())
	require.Equal(t, 1, driver.Live())
	require.Equal(t, 1, driver.MaxLive())
}

func TestStartSessionConstructionFailure(t *testing.T) {
	s, driver := newTestSession(t)

	_, err := s.StartSession(testConfig(t, "w1"))
	require.NoError(t, err)

	errNew := errors.New("cannot open wallet")
	driver.FailNew(errNew)
	_, err = s.StartSession(testConfig(t, "w2"))
	require.ErrorIs(t, err, errNew)
	require.Nil(t, s.Handle())
	require.Equal(t, 0, driver.Live())
}

func TestConcurrentStartSessionKeepsOneEngine(t *testing.T) {
	s, driver := newTestSession(t)

	configs := make([]engine.Config, 8)
	for i := range configs {
		configs[i] = testConfig(t, "w")
	}

	var wg sync.WaitGroup
	for _, cfg := range configs {
		wg.Add(1)
		go func(cfg engine.Config) {
			defer wg.Done()
			_, err := s.StartSession(cfg)
			assert.NoError(t, err)
		}(cfg)
	}
	wg.Wait()

	require.Equal(t, 1, driver.Live())
	require.Equal(t, 1, driver.MaxLive())
}

func TestRelaysPublishEngineState(t *testing.T) {
	s, driver := newTestSession(t)

	_, err := s.StartSession(testConfig(t, "w1"))
	require.NoError(t, err)
	require.NoError(t, s.BeginAsyncStart(context.Background(), nil))

	require.Eventually(t, func() bool {
		_, ok := s.SyncState().(engine.Connecting)
		return ok
	}, waitFor, time.Millisecond)

	eng := driver.Latest()
	eng.EmitSyncState(engine.SyncingProgress(0.5, 1000))
	eng.EmitBalance(engine.Balance{All: 10, Unlocked: 7})
	eng.EmitTransactions([]engine.Transaction{{TxID: "aa", Amount: 10}})

	require.Eventually(t, func() bool {
		return s.Balance() == engine.Balance{All: 10, Unlocked: 7} && len(s.Transactions()) == 1
	}, waitFor, time.Millisecond)
	require.Eventually(t, func() bool {
		st, ok := s.SyncState().(engine.Syncing)
		return ok && st.RemainingBlocks == 1000
	}, waitFor, time.Millisecond)
	require.NotNil(t, s.SyncProgress())
}

func TestReplacedEngineEventsAreIgnored(t *testing.T) {
	s, driver := newTestSession(t)

	_, err := s.StartSession(testConfig(t, "w1"))
	require.NoError(t, err)
	old := driver.Latest()

	_, err = s.StartSession(testConfig(t, "w2"))
	require.NoError(t, err)

	old.EmitBalance(engine.Balance{All: 99, Unlocked: 99})
	driver.Latest().EmitBalance(engine.Balance{All: 1, Unlocked: 1})

	require.Eventually(t, func() bool {
		return s.Balance().All == 1
	}, waitFor, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, uint64(1), s.Balance().All)
}

func TestStopAndReleaseKeepsValues(t *testing.T) {
	s, driver := newTestSession(t)

	_, err := s.StartSession(testConfig(t, "w1"))
	require.NoError(t, err)
	driver.Latest().EmitBalance(engine.Balance{All: 5, Unlocked: 5})
	require.Eventually(t, func() bool { return s.Balance().All == 5 }, waitFor, time.Millisecond)

	s.StopAndRelease()
	require.Nil(t, s.Handle())
	require.Equal(t, 0, driver.Live())
	require.Equal(t, uint64(5), s.Balance().All)
	require.Equal(t, engine.SyncState(stoppedState), s.SyncState())

	require.ErrorIs(t, s.BeginAsyncStart(context.Background(), nil), ErrNoSession)
}

func TestClearResetsValues(t *testing.T) {
	s, driver := newTestSession(t)

	_, err := s.StartSession(testConfig(t, "w1"))
	require.NoError(t, err)
	driver.Latest().EmitBalance(engine.Balance{All: 5, Unlocked: 5})
	driver.Latest().EmitTransactions([]engine.Transaction{{TxID: "aa"}})
	require.Eventually(t, func() bool {
		return s.Balance().All == 5 && len(s.Transactions()) == 1
	}, waitFor, time.Millisecond)

	s.Clear()
	require.Nil(t, s.Handle())
	require.Equal(t, engine.Balance{}, s.Balance())
	require.Empty(t, s.Transactions())
	require.Equal(t, engine.SyncState(engine.NotSynced{}), s.SyncState())
}

func TestStopKeepsEngineAndResumes(t *testing.T) {
	s, driver := newTestSession(t)

	_, err := s.StartSession(testConfig(t, "w1"))
	require.NoError(t, err)
	require.NoError(t, s.BeginAsyncStart(context.Background(), nil))
	eng := driver.Latest()
	require.Eventually(t, eng.Running, waitFor, time.Millisecond)

	require.NoError(t, s.Stop())
	require.False(t, eng.Running())
	require.Equal(t, eng, s.Handle())

	done := make(chan error, 1)
	require.NoError(t, s.BeginAsyncStart(context.Background(), func(err error) { done <- err }))
	require.NoError(t, <-done)
	require.True(t, eng.Running())

	eng.EmitBalance(engine.Balance{All: 3})
	require.Eventually(t, func() bool { return s.Balance().All == 3 }, waitFor, time.Millisecond)
}

func TestBeginAsyncStartReportsFailure(t *testing.T) {
	s, driver := newTestSession(t)

	_, err := s.StartSession(testConfig(t, "w1"))
	require.NoError(t, err)

	errStart := errors.New("node unreachable")
	driver.FailStart(errStart)
	done := make(chan error, 1)
	require.NoError(t, s.BeginAsyncStart(context.Background(), func(err error) { done <- err }))
	require.ErrorIs(t, <-done, errStart)

	require.Eventually(t, func() bool {
		st, ok := s.SyncState().(engine.NotSynced)
		return ok && st.Reason == errStart.Error()
	}, waitFor, time.Millisecond)
}

func TestSubscribeReplaysLatest(t *testing.T) {
	s, driver := newTestSession(t)

	_, err := s.StartSession(testConfig(t, "w1"))
	require.NoError(t, err)
	driver.Latest().EmitBalance(engine.Balance{All: 8})
	require.Eventually(t, func() bool { return s.Balance().All == 8 }, waitFor, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.Equal(t, uint64(8), (<-s.SubscribeBalance(ctx)).All)
}
