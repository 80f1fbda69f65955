package main

import "C"
import (
	"encoding/json"
	"strconv"

	"github.com/itswisdomagain/xmrwallet/engine"
	"github.com/itswisdomagain/xmrwallet/wallet"
)

type SendReq struct {
	Amount  uint64 `json:"amount"`
	Address string `json:"address"`
	Memo    string `json:"memo"`
}

type HistoryReq struct {
	// Direction is "in", "out" or empty for both.
	Direction   string `json:"direction"`
	PendingOnly bool   `json:"pendingOnly"`
	MinHeight   uint64 `json:"minHeight"`
	Offset      int    `json:"offset"`
	Limit       int    `json:"limit"`
}

//export sendTransaction
func sendTransaction(cSendJSONReq *C.char) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	var req SendReq
	if err := json.Unmarshal([]byte(goString(cSendJSONReq)), &req); err != nil {
		return errCResponse("malformed send request: %v", err)
	}
	tx, err := c.Send(ctx, req.Amount, req.Address, req.Memo)
	if err != nil {
		return errResponse(err)
	}
	return jsonCResponse(transactionRes(tx))
}

// estimateFee returns the fee in atomic units for sending cAmount to
// cAddress. cPriority is 0 (default) to 3 (high).
//
//export estimateFee
func estimateFee(cAmount, cAddress, cPriority *C.char) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	amount, err := strconv.ParseUint(goString(cAmount), 10, 64)
	if err != nil {
		return errCResponse("amount is not a uint64: %v", err)
	}
	priority, err := strconv.ParseUint(goString(cPriority), 10, 8)
	if err != nil || priority > uint64(engine.FeePriorityHigh) {
		return errCResponse("invalid fee priority %q", goString(cPriority))
	}
	fee, err := c.EstimateFee(ctx, amount, goString(cAddress), engine.FeePriority(priority))
	if err != nil {
		return errResponse(err)
	}
	return successCResponse(strconv.FormatUint(fee, 10))
}

//export listTransactions
func listTransactions(cHistoryJSONReq *C.char) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	var req HistoryReq
	if reqJSON := goString(cHistoryJSONReq); reqJSON != "" {
		if err := json.Unmarshal([]byte(reqJSON), &req); err != nil {
			return errCResponse("malformed history request: %v", err)
		}
	}

	filter := wallet.HistoryFilter{
		PendingOnly: req.PendingOnly,
		MinHeight:   req.MinHeight,
	}
	switch req.Direction {
	case "":
	case engine.DirectionIn.String():
		dir := engine.DirectionIn
		filter.Direction = &dir
	case engine.DirectionOut.String():
		dir := engine.DirectionOut
		filter.Direction = &dir
	default:
		return errCResponse("unknown direction %q", req.Direction)
	}

	txs, err := c.History(filter, req.Offset, req.Limit)
	if err != nil {
		return errCResponse("unable to get transactions: %v", err)
	}
	total, err := c.CountHistory(filter)
	if err != nil {
		return errCResponse("unable to count transactions: %v", err)
	}

	res := &HistoryRes{
		Total:        total,
		Transactions: make([]*TransactionRes, len(txs)),
	}
	for i, tx := range txs {
		res.Transactions[i] = transactionRes(tx)
	}
	return jsonCResponse(res)
}

//export getTransaction
func getTransaction(cTxID *C.char) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	tx, err := c.Transaction(goString(cTxID))
	if err != nil {
		return errCResponse("unable to get transaction: %v", err)
	}
	if tx == nil {
		return errCResponse("transaction %s not found", goString(cTxID))
	}
	return jsonCResponse(transactionRes(tx))
}
