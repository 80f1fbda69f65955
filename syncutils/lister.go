package syncutils

import (
	"sync"
)

// lister is a concurrency-safe collection of items keyed by an id assigned on
// Add.
type lister[T any] struct {
	mtx    sync.RWMutex
	nextID uint64
	list   map[uint64]T
}

func newLister[T any]() *lister[T] {
	return &lister[T]{
		list: make(map[uint64]T),
	}
}

func (lister *lister[T]) Add(item T) uint64 {
	lister.mtx.Lock()
	defer lister.mtx.Unlock()
	lister.nextID++
	lister.list[lister.nextID] = item
	return lister.nextID
}

func (lister *lister[T]) Remove(id uint64) (T, bool) {
	lister.mtx.Lock()
	defer lister.mtx.Unlock()
	item, ok := lister.list[id]
	delete(lister.list, id)
	return item, ok
}

func (lister *lister[T]) Len() int {
	lister.mtx.RLock()
	defer lister.mtx.RUnlock()
	return len(lister.list)
}

func (lister *lister[T]) Range(rangeFn func(T)) {
	lister.mtx.RLock()
	defer lister.mtx.RUnlock()
	for _, item := range lister.list {
		rangeFn(item)
	}
}
