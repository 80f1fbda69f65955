package wallet

import (
	"github.com/itswisdomagain/xmrwallet/engine"
)

// Status is the lifecycle state of the controller.
type Status uint8

const (
	StatusUninitialized Status = iota
	StatusInitializing
	StatusActive
	StatusLocked
	StatusRemoved
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusInitializing:
		return "initializing"
	case StatusActive:
		return "active"
	case StatusLocked:
		return "locked"
	case StatusRemoved:
		return "removed"
	}
	return "unknown"
}

// WalletState is a snapshot of everything observers display about the
// wallet. Only the controller produces WalletState values.
type WalletState struct {
	HasWallet      bool                 `json:"hasWallet"`
	IsInitializing bool                 `json:"isInitializing"`
	Status         Status               `json:"status"`
	SyncState      engine.SyncState     `json:"-"`
	Balance        engine.Balance       `json:"balance"`
	Transactions   []engine.Transaction `json:"transactions"`
	ReceiveAddress string               `json:"receiveAddress"`
	Error          string               `json:"error,omitempty"`
}

func emptyState() WalletState {
	return WalletState{SyncState: engine.NotSynced{}}
}

func (s WalletState) clone() WalletState {
	if s.Transactions != nil {
		s.Transactions = append([]engine.Transaction(nil), s.Transactions...)
	}
	return s
}
