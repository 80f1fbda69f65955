package main

import "C"
import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/itswisdomagain/xmrwallet/engine"
	"github.com/itswisdomagain/xmrwallet/syncutils"
	"github.com/itswisdomagain/xmrwallet/wallet"
)

// Error codes returned with errors that need special handling by the
// consumer.
const (
	ErrCodeNotSynced = iota + 1
	ErrCodeNoWallet
	ErrCodeWalletExists
	ErrCodeNoSession
	ErrCodeInvalidSeed
	ErrCodeInvalidNode
	ErrCodeInvalidRestorePoint
	ErrCodeNotEnoughBalance
)

// CResponse is used for all returns when using the cgo libxmrwallet. Payload
// only populated if no error. Error only populated if error. ErrorCode may be
// populated if an error needs special handling.
type CResponse struct {
	Payload   string `json:"payload,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"errorcode,omitempty"`
}

// errCResponse will return an error to the consumer, and log it if possible.
func errCResponse(errStr string, args ...any) *C.char {
	es := fmt.Sprintf(errStr, args...)
	b, err := json.Marshal(CResponse{Error: es})
	if err != nil {
		panic(err)
	}
	logMtx.RLock()
	if log != nil {
		log.Errorf("returning error to consumer: %v", es)
	}
	logMtx.RUnlock()
	return cString(string(b))
}

// errCResponseWithCode will return an error to the consumer, and log it if possible.
func errCResponseWithCode(errCode int, errStr string, args ...any) *C.char {
	es := fmt.Sprintf(errStr, args...)
	b, err := json.Marshal(CResponse{Error: es, ErrorCode: errCode})
	if err != nil {
		panic(err)
	}
	logMtx.RLock()
	if log != nil {
		log.Errorf("returning error with error code %d to consumer: %v", errCode, es)
	}
	logMtx.RUnlock()
	return cString(string(b))
}

// errResponse returns err to the consumer with the error code that matches
// it, if any.
func errResponse(err error) *C.char {
	if code := errCode(err); code != 0 {
		return errCResponseWithCode(code, "%v", err)
	}
	return errCResponse("%v", err)
}

// successCResponse will return a payload the consumer, and log it if possible.
func successCResponse(payload string) *C.char {
	b, err := json.Marshal(CResponse{Payload: payload})
	if err != nil {
		panic(err)
	}
	logMtx.RLock()
	if log != nil {
		log.Tracef("returning payload to consumer: %v", payload)
	}
	logMtx.RUnlock()
	return cString(string(b))
}

// jsonCResponse marshals v and returns it as the payload.
func jsonCResponse(v any) *C.char {
	b, err := json.Marshal(v)
	if err != nil {
		return errCResponse("unable to marshal %T: %v", v, err)
	}
	return successCResponse(string(b))
}

type SyncStateRes struct {
	State           string   `json:"state"`
	Reason          string   `json:"reason,omitempty"`
	Waiting         bool     `json:"waiting,omitempty"`
	Progress        *float64 `json:"progress,omitempty"`
	RemainingBlocks *uint64  `json:"remainingBlocks,omitempty"`
}

func syncStateRes(state engine.SyncState) *SyncStateRes {
	res := &SyncStateRes{State: "notSynced"}
	switch s := state.(type) {
	case engine.NotSynced:
		res.Reason = s.Reason
	case engine.Connecting:
		res.State = "connecting"
		res.Waiting = s.Waiting
	case engine.Syncing:
		res.State = "syncing"
		if s.HasProgress {
			progress := s.Progress
			res.Progress = &progress
		}
		if s.HasRemaining {
			remaining := s.RemainingBlocks
			res.RemainingBlocks = &remaining
		}
	case engine.Synced:
		res.State = "synced"
	}
	return res
}

type WalletStateRes struct {
	HasWallet      bool              `json:"hasWallet"`
	IsInitializing bool              `json:"isInitializing"`
	Status         string            `json:"status"`
	SyncState      *SyncStateRes     `json:"syncState"`
	Balance        engine.Balance    `json:"balance"`
	NumTxs         int               `json:"numTxs"`
	ReceiveAddress string            `json:"receiveAddress"`
	Error          string            `json:"error,omitempty"`
	SyncProgress   *SyncReportRes    `json:"syncProgress,omitempty"`
	RestoreHeight  *RestoreHeightRes `json:"restoreHeight,omitempty"`
}

type SyncReportRes struct {
	Stage              string `json:"stage"`
	ScannedBlocks      uint64 `json:"scannedBlocks"`
	TotalBlocks        uint64 `json:"totalBlocks"`
	PercentageProgress int    `json:"percentageProgress"`
	SecondsRemaining   int64  `json:"secondsRemaining"`
}

func syncReportRes(report *syncutils.SyncProgressReport) *SyncReportRes {
	if report == nil {
		return nil
	}
	return &SyncReportRes{
		Stage:              report.CurrentStage.String(),
		ScannedBlocks:      report.ScannedBlocks,
		TotalBlocks:        report.TotalBlocks,
		PercentageProgress: int(report.PercentageProgress),
		SecondsRemaining:   int64(report.TimeRemaining / time.Second),
	}
}

type RestoreHeightRes struct {
	Height uint64 `json:"height"`
	Date   string `json:"date"`
}

func walletStateRes(state wallet.WalletState) *WalletStateRes {
	return &WalletStateRes{
		HasWallet:      state.HasWallet,
		IsInitializing: state.IsInitializing,
		Status:         state.Status.String(),
		SyncState:      syncStateRes(state.SyncState),
		Balance:        state.Balance,
		NumTxs:         len(state.Transactions),
		ReceiveAddress: state.ReceiveAddress,
		Error:          state.Error,
	}
}

type TransactionRes struct {
	TxID          string `json:"txid"`
	Direction     string `json:"direction"`
	Amount        uint64 `json:"amount"`
	Fee           uint64 `json:"fee"`
	Height        uint64 `json:"height"`
	Time          int64  `json:"time"`
	Confirmations uint64 `json:"confirmations"`
	Pending       bool   `json:"pending"`
	Failed        bool   `json:"failed"`
	Subaddress    uint32 `json:"subaddress"`
	Memo          string `json:"memo,omitempty"`
}

func transactionRes(tx *engine.Transaction) *TransactionRes {
	return &TransactionRes{
		TxID:          tx.TxID,
		Direction:     tx.Direction.String(),
		Amount:        tx.Amount,
		Fee:           tx.Fee,
		Height:        tx.Height,
		Time:          tx.Timestamp,
		Confirmations: tx.Confirmations,
		Pending:       tx.Pending,
		Failed:        tx.Failed,
		Subaddress:    tx.Subaddress,
		Memo:          tx.Memo,
	}
}

type HistoryRes struct {
	Total        int               `json:"total"`
	Transactions []*TransactionRes `json:"transactions"`
}
