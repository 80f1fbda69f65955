package main

import "C"
import (
	"strings"

	"github.com/itswisdomagain/xmrwallet/asset"
)

const errNotInitialized = "libxmrwallet is not initialized"

// createWallet creates a wallet from cSeed, a space separated mnemonic. If
// cSeed is empty a new 24-word seed is generated. The payload is the seed
// the wallet was created from so the consumer can show it for backup.
//
//export createWallet
func createWallet(cSeed *C.char) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}

	var seed *asset.Seed
	var err error
	if mnemonic := goString(cSeed); strings.TrimSpace(mnemonic) != "" {
		seed, err = asset.SeedFromWords(asset.SplitMnemonic(mnemonic))
	} else {
		seed, err = asset.GenerateSeed()
	}
	if err != nil {
		return errResponse(err)
	}

	if err := c.Create(ctx, seed.Words, seed.Type); err != nil {
		return errResponse(err)
	}
	return successCResponse(seed.Mnemonic())
}

// restoreWallet restores a wallet from cSeed. cRestoreHeightOrDate is a
// block height, "0" or empty for genesis, or a YYYY-MM-DD date.
//
//export restoreWallet
func restoreWallet(cSeed, cRestoreHeightOrDate *C.char) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}

	words := asset.SplitMnemonic(goString(cSeed))
	if err := c.Restore(ctx, words, goString(cRestoreHeightOrDate)); err != nil {
		return errResponse(err)
	}
	return successCResponse("wallet restored")
}

//export unlockAndResume
func unlockAndResume() *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	if err := c.UnlockAndResume(ctx); err != nil {
		return errResponse(err)
	}
	return successCResponse("wallet resumed")
}

//export lockWallet
func lockWallet() *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	c.Lock()
	return successCResponse("wallet locked")
}

//export changeNode
func changeNode(cNode *C.char, trustNode bool) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	if err := c.ChangeNode(ctx, goString(cNode), trustNode); err != nil {
		return errResponse(err)
	}
	return successCResponse("node changed")
}

//export resetSync
func resetSync(preserveHeight bool) *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	if err := c.ResetSync(ctx, preserveHeight); err != nil {
		return errResponse(err)
	}
	return successCResponse("wallet sync reset")
}

//export removeWallet
func removeWallet() *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	if err := c.Remove(ctx); err != nil {
		return errResponse(err)
	}
	return successCResponse("wallet removed")
}

//export walletSeed
func walletSeed() *C.char {
	c, ok := loadedController()
	if !ok {
		return errCResponse(errNotInitialized)
	}
	seed, err := c.Seed()
	if err != nil {
		return errResponse(err)
	}
	return successCResponse(seed.Mnemonic())
}
