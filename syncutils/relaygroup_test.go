package syncutils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/stretchr/testify/require"
)

func TestRelayGroupStopWaitsForTasks(t *testing.T) {
	rg := NewRelayGroup(slog.Disabled)

	var running atomic.Int32
	task := func(ctx context.Context) error {
		running.Add(1)
		defer running.Add(-1)
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return nil
	}

	require.NoError(t, rg.Start(context.Background(), task, task))
	require.True(t, rg.Active())
	require.Eventually(t, func() bool { return running.Load() == 2 }, time.Second, time.Millisecond)

	require.Error(t, rg.Start(context.Background(), task))

	require.NoError(t, rg.Stop())
	require.Equal(t, int32(0), running.Load())
	require.False(t, rg.Active())

	// Stopping again is a no-op and a new set of tasks can be started.
	require.NoError(t, rg.Stop())
	require.NoError(t, rg.Start(context.Background(), task))
	require.NoError(t, rg.Stop())
}

func TestRelayGroupTaskError(t *testing.T) {
	rg := NewRelayGroup(slog.Disabled)
	errBoom := errors.New("boom")

	require.NoError(t, rg.Start(context.Background(),
		func(context.Context) error { return errBoom },
		func(ctx context.Context) error { <-ctx.Done(); return nil },
	))
	require.ErrorIs(t, rg.Stop(), errBoom)
}

func TestRelay(t *testing.T) {
	in := make(chan int)
	cell := NewCell(0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- Relay(ctx, in, cell.Publish) }()

	in <- 3
	in <- 4
	require.Eventually(t, func() bool { return cell.Value() == 4 }, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	// Closed input ends the relay too.
	in2 := make(chan int)
	close(in2)
	require.NoError(t, Relay(context.Background(), in2, cell.Publish))
}
