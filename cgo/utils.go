package main

import "C"
import (
	"errors"

	"github.com/itswisdomagain/xmrwallet/asset"
	"github.com/itswisdomagain/xmrwallet/engine"
	"github.com/itswisdomagain/xmrwallet/session"
	"github.com/itswisdomagain/xmrwallet/wallet"
)

func loadedController() (*wallet.Controller, bool) {
	ctrlMtx.RLock()
	defer ctrlMtx.RUnlock()
	return ctrl, ctrl != nil
}

func errCode(err error) int {
	switch {
	case errors.Is(err, asset.ErrNoIdentity), errors.Is(err, wallet.ErrNoSeed):
		return ErrCodeNoWallet
	case errors.Is(err, wallet.ErrWalletExists):
		return ErrCodeWalletExists
	case errors.Is(err, session.ErrNoSession):
		return ErrCodeNoSession
	case errors.Is(err, asset.ErrInvalidWordCount), errors.Is(err, asset.ErrUnknownSeedType):
		return ErrCodeInvalidSeed
	case errors.Is(err, asset.ErrInvalidNodeAddress):
		return ErrCodeInvalidNode
	case errors.Is(err, wallet.ErrInvalidRestorePoint):
		return ErrCodeInvalidRestorePoint
	case errors.Is(err, engine.ErrNotEnoughBalance):
		return ErrCodeNotEnoughBalance
	}
	return 0
}

func cString(str string) *C.char {
	return C.CString(str)
}

func goString(cstr *C.char) string {
	return C.GoString(cstr)
}
