package syncutils

import (
	"context"
	"sync"
)

// Cell holds the latest value of some state and broadcasts every change to
// its subscribers. A new subscriber immediately receives the current value.
// Subscribers that fall behind only see the most recent value; intermediate
// values are dropped but the order of the values seen is preserved.
type Cell[T any] struct {
	mtx   sync.Mutex
	value T
	zero  T
	subs  *lister[chan T]
}

// NewCell returns a Cell holding initial. Reset restores initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value: initial,
		zero:  initial,
		subs:  newLister[chan T](),
	}
}

// Value returns the current value.
func (c *Cell[T]) Value() T {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.value
}

// Publish replaces the current value and sends it to all subscribers.
func (c *Cell[T]) Publish(value T) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.value = value
	c.subs.Range(func(ch chan T) {
		offerLatest(ch, value)
	})
}

// Reset publishes the value the Cell was created with.
func (c *Cell[T]) Reset() {
	c.Publish(c.zero)
}

// Subscribe returns a channel that receives the current value followed by
// every later change. The channel is closed after ctx is canceled.
func (c *Cell[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	c.mtx.Lock()
	ch <- c.value
	id := c.subs.Add(ch)
	c.mtx.Unlock()

	go func() {
		<-ctx.Done()
		c.mtx.Lock()
		defer c.mtx.Unlock()
		if _, ok := c.subs.Remove(id); ok {
			close(ch)
		}
	}()

	return ch
}

// Subscribers returns the number of active subscriptions.
func (c *Cell[T]) Subscribers() int {
	return c.subs.Len()
}

// offerLatest sends value on ch, replacing any value the receiver has not
// picked up yet. ch must have a buffer of 1 and the caller must be its only
// sender.
func offerLatest[T any](ch chan T, value T) {
	select {
	case ch <- value:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- value
}
