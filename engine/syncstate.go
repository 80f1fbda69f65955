package engine

import "fmt"

// SyncState is the synchronization phase reported by a wallet engine. It is
// one of NotSynced, Connecting, Syncing or Synced.
type SyncState interface {
	fmt.Stringer
	syncState()
}

// NotSynced means the engine is not connected to a node. Reason explains why
// and is empty before the first connection attempt.
type NotSynced struct {
	Reason string
}

// Connecting means the engine is connecting to a node. Waiting is true while
// the engine waits to retry a failed connection.
type Connecting struct {
	Waiting bool
}

// Syncing means the engine is scanning blocks. Progress is a fraction between
// 0 and 1 and is only meaningful if HasProgress. RemainingBlocks is only
// meaningful if HasRemaining.
type Syncing struct {
	Progress        float64
	HasProgress     bool
	RemainingBlocks uint64
	HasRemaining    bool
}

// Synced means the engine has caught up with the node's chain tip.
type Synced struct{}

func (NotSynced) syncState()  {}
func (Connecting) syncState() {}
func (Syncing) syncState()    {}
func (Synced) syncState()     {}

func (s NotSynced) String() string {
	if s.Reason == "" {
		return "not synced"
	}
	return "not synced: " + s.Reason
}

func (s Connecting) String() string {
	if s.Waiting {
		return "waiting to reconnect"
	}
	return "connecting"
}

func (s Syncing) String() string {
	switch {
	case s.HasProgress && s.HasRemaining:
		return fmt.Sprintf("syncing %.2f%%, %d blocks remaining", s.Progress*100, s.RemainingBlocks)
	case s.HasProgress:
		return fmt.Sprintf("syncing %.2f%%", s.Progress*100)
	case s.HasRemaining:
		return fmt.Sprintf("syncing, %d blocks remaining", s.RemainingBlocks)
	}
	return "syncing"
}

func (Synced) String() string {
	return "synced"
}

// SyncingProgress returns a Syncing state with known progress and remaining
// block count. progress is clamped to [0, 1].
func SyncingProgress(progress float64, remainingBlocks uint64) Syncing {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	return Syncing{
		Progress:        progress,
		HasProgress:     true,
		RemainingBlocks: remainingBlocks,
		HasRemaining:    true,
	}
}
