package engine

import (
	"time"

	"github.com/decred/slog"
	"github.com/itswisdomagain/xmrwallet/asset"
)

// Config is everything a driver needs to construct an engine instance.
type Config struct {
	// DataDir is the directory under which the engine keeps wallet files.
	DataDir string
	Net     asset.Network
	Seed    *asset.Seed
	// RestoreDateOrHeight is the decimal block height to scan from, or a
	// YYYY-MM-DD date. "0" means scan from genesis, or use the wallet files
	// already on disk.
	RestoreDateOrHeight string
	WalletID            string
	Node                string
	TrustNode           bool
	Logger              slog.Logger
}

// Balance is a wallet balance in atomic units.
type Balance struct {
	All      uint64 `json:"all"`
	Unlocked uint64 `json:"unlocked"`
}

// Direction tells if a transaction paid into or out of the wallet.
type Direction uint8

const (
	DirectionIn Direction = iota
	DirectionOut
)

func (d Direction) String() string {
	if d == DirectionOut {
		return "out"
	}
	return "in"
}

// Transaction is a wallet transaction as reported by the engine. The storm
// tags let it be indexed in the wallet database.
type Transaction struct {
	TxID          string    `json:"txid" storm:"id"`
	Direction     Direction `json:"direction"`
	Amount        uint64    `json:"amount"`
	Fee           uint64    `json:"fee"`
	Height        uint64    `json:"height" storm:"index"`
	Timestamp     int64     `json:"timestamp" storm:"index"`
	Confirmations uint64    `json:"confirmations"`
	Pending       bool      `json:"pending"`
	Failed        bool      `json:"failed"`
	Subaddress    uint32    `json:"subaddress"`
	Memo          string    `json:"memo,omitempty"`
}

// Time returns the transaction timestamp.
func (tx *Transaction) Time() time.Time {
	return time.Unix(tx.Timestamp, 0)
}

// Subaddress is a receive address derived from the wallet's primary account.
type Subaddress struct {
	Index   uint32 `json:"index"`
	Address string `json:"address"`
	Label   string `json:"label"`
	Used    bool   `json:"used"`
}

// FeePriority selects how fast a transaction should confirm.
type FeePriority uint8

const (
	FeePriorityDefault FeePriority = iota
	FeePriorityLow
	FeePriorityMedium
	FeePriorityHigh
)

func (p FeePriority) String() string {
	switch p {
	case FeePriorityLow:
		return "low"
	case FeePriorityMedium:
		return "medium"
	case FeePriorityHigh:
		return "high"
	}
	return "default"
}
