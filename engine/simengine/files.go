package simengine

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/itswisdomagain/xmrwallet/engine"
)

const (
	keysFileName   = "wallet.keys"
	heightFileName = "restore_height"
)

func walletDir(dataDir, walletID string) string {
	return filepath.Join(dataDir, "sim", walletID)
}

// writeWalletFiles creates the wallet directory. The keys file only records
// the primary address; the seed itself is never written.
func writeWalletFiles(cfg engine.Config, restoreHeight uint64) error {
	dir := walletDir(cfg.DataDir, cfg.WalletID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	keysFile := filepath.Join(dir, keysFileName)
	if err := os.WriteFile(keysFile, []byte(primaryAddress(cfg)+"\n"), 0600); err != nil {
		return err
	}
	heightFile := filepath.Join(dir, heightFileName)
	if _, err := os.Stat(heightFile); err == nil && restoreHeight == 0 {
		return nil
	}
	return os.WriteFile(heightFile, []byte(strconv.FormatUint(restoreHeight, 10)), 0600)
}

func readSavedHeight(cfg engine.Config) (uint64, bool) {
	b, err := os.ReadFile(filepath.Join(walletDir(cfg.DataDir, cfg.WalletID), heightFileName))
	if err != nil {
		return 0, false
	}
	h, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, false
	}
	return h, true
}
