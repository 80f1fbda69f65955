package syncutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/decred/slog"
	"golang.org/x/sync/errgroup"
)

// RelayGroup runs a set of tasks that forward events from one engine instance
// and stops them together. The tasks of a previous Start must be stopped
// before Start can be called again.
type RelayGroup struct {
	log slog.Logger

	mtx    sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewRelayGroup(log slog.Logger) *RelayGroup {
	return &RelayGroup{log: log}
}

// Start runs each task in its own goroutine with a context derived from ctx.
// The context is canceled when Stop is called or when any task returns an
// error. Returns an error if tasks from a previous Start are still running.
func (rg *RelayGroup) Start(ctx context.Context, tasks ...func(context.Context) error) error {
	rg.mtx.Lock()
	defer rg.mtx.Unlock()

	if rg.cancel != nil {
		return fmt.Errorf("relays already running")
	}

	relayCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(relayCtx)
	for _, task := range tasks {
		task := task
		group.Go(func() error {
			return task(groupCtx)
		})
	}

	rg.cancel = cancel
	rg.group = group
	return nil
}

// Active is true if tasks from a previous Start have not been stopped.
func (rg *RelayGroup) Active() bool {
	rg.mtx.Lock()
	defer rg.mtx.Unlock()
	return rg.cancel != nil
}

// Stop cancels the running tasks and waits for all of them to return. It is
// a no-op if no tasks are running. Returns the first error returned by a
// task, if any.
func (rg *RelayGroup) Stop() error {
	rg.mtx.Lock()
	defer rg.mtx.Unlock()

	if rg.cancel == nil {
		return nil
	}

	rg.cancel()
	err := rg.group.Wait()
	rg.cancel = nil
	rg.group = nil
	if err != nil {
		rg.log.Errorf("Relay ended with error: %v", err)
	} else {
		rg.log.Debugf("Relays stopped")
	}
	return err
}

// Relay forwards every value received on in to publish until in is closed or
// ctx is canceled. Values received after ctx is canceled are dropped.
func Relay[T any](ctx context.Context, in <-chan T, publish func(T)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-in:
			if !ok {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			publish(v)
		}
	}
}
