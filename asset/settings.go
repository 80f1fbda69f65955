package asset

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/decred/slog"
	"github.com/itswisdomagain/xmrwallet/walletdata"
)

const (
	walletIDDBKey              = "walletId"
	selectedNodeDBKey          = "selectedNode"
	trustNodeDBKey             = "trustNode"
	walletTraitsDBKey          = "walletTraits"
	restoreHeightDBKey         = "restoreHeight"
	restoreHeightStrDBKey      = "restoreHeightStr"
	restoreDateMillisDBKey     = "restoreDateMillis"
	restoreHeightOverrideDBKey = "restoreHeightOverride"
	customNodesListDBKey       = "customNodesList"
)

// ErrNoIdentity is returned when no wallet identity has been saved.
var ErrNoIdentity = errors.New("no wallet identity saved")

// WalletIdentity identifies a wallet and the node it syncs from.
type WalletIdentity struct {
	WalletID  string
	Node      string
	TrustNode bool
}

// Settings reads and writes the non-secret wallet settings.
type Settings struct {
	db  walletdata.SettingsDB
	log slog.Logger
}

// NewSettings returns a Settings that uses db for storage.
func NewSettings(db walletdata.SettingsDB, log slog.Logger) *Settings {
	return &Settings{db: db, log: log}
}

// SaveIdentity saves the wallet identity and traits.
func (s *Settings) SaveIdentity(id WalletIdentity, traits WalletTrait) error {
	dbData := map[string]any{
		walletIDDBKey:     id.WalletID,
		selectedNodeDBKey: id.Node,
		trustNodeDBKey:    id.TrustNode,
		walletTraitsDBKey: traits,
	}
	for key, value := range dbData {
		if err := s.db.SaveSetting(key, value); err != nil {
			return fmt.Errorf("error saving wallet.%s to db: %v", key, err)
		}
	}
	return nil
}

// Identity loads the saved wallet identity. Returns ErrNoIdentity if no wallet
// id is saved.
func (s *Settings) Identity() (*WalletIdentity, error) {
	var id WalletIdentity
	if err := s.db.ReadSetting(walletIDDBKey, &id.WalletID); err != nil {
		if walletdata.IsNotFound(err) {
			return nil, ErrNoIdentity
		}
		return nil, fmt.Errorf("error reading wallet.%s from db: %v", walletIDDBKey, err)
	}
	if id.WalletID == "" {
		return nil, ErrNoIdentity
	}

	id.Node = walletdata.ReadSetting[string](s.db, s.log, selectedNodeDBKey)
	id.TrustNode = walletdata.ReadSetting[bool](s.db, s.log, trustNodeDBKey)
	return &id, nil
}

// Traits returns the saved wallet traits.
func (s *Settings) Traits() WalletTrait {
	return walletdata.ReadSetting[WalletTrait](s.db, s.log, walletTraitsDBKey)
}

// SaveNode saves the node the wallet syncs from.
func (s *Settings) SaveNode(node string, trustNode bool) error {
	if err := s.db.SaveSetting(selectedNodeDBKey, node); err != nil {
		return fmt.Errorf("error saving wallet.%s to db: %v", selectedNodeDBKey, err)
	}
	if err := s.db.SaveSetting(trustNodeDBKey, trustNode); err != nil {
		return fmt.Errorf("error saving wallet.%s to db: %v", trustNodeDBKey, err)
	}
	return nil
}

// SaveRestoreHeight saves the height the wallet was created or restored at
// along with the matching date. The height is also saved as a string for
// readers of older settings layouts.
func (s *Settings) SaveRestoreHeight(height uint64, date time.Time) error {
	dbData := map[string]any{
		restoreHeightDBKey:     height,
		restoreHeightStrDBKey:  strconv.FormatUint(height, 10),
		restoreDateMillisDBKey: date.UnixMilli(),
	}
	for key, value := range dbData {
		if err := s.db.SaveSetting(key, value); err != nil {
			return fmt.Errorf("error saving wallet.%s to db: %v", key, err)
		}
	}
	return nil
}

// RestoreHeight returns the saved creation-time restore height. The integer
// setting is preferred; the string setting is used if the integer one is
// missing.
func (s *Settings) RestoreHeight() (uint64, bool) {
	var height uint64
	err := s.db.ReadSetting(restoreHeightDBKey, &height)
	if err == nil {
		return height, true
	}
	if !walletdata.IsNotFound(err) {
		s.log.Errorf("ReadSetting(%s) error: %v", restoreHeightDBKey, err)
	}

	heightStr := walletdata.ReadSetting[string](s.db, s.log, restoreHeightStrDBKey)
	if heightStr == "" {
		return 0, false
	}
	height, err = strconv.ParseUint(heightStr, 10, 64)
	if err != nil {
		s.log.Errorf("Invalid %s %q: %v", restoreHeightStrDBKey, heightStr, err)
		return 0, false
	}
	return height, true
}

// RestoreDate returns the date saved with the restore height.
func (s *Settings) RestoreDate() (time.Time, bool) {
	millis := walletdata.ReadSetting[int64](s.db, s.log, restoreDateMillisDBKey)
	if millis <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(millis).UTC(), true
}

// SaveRestoreHeightOverride saves a restore height chosen from the sync
// settings. It takes precedence over the creation-time height on resync.
func (s *Settings) SaveRestoreHeightOverride(height uint64) error {
	if err := s.db.SaveSetting(restoreHeightOverrideDBKey, height); err != nil {
		return fmt.Errorf("error saving wallet.%s to db: %v", restoreHeightOverrideDBKey, err)
	}
	return nil
}

// RestoreHeightOverride returns the saved sync settings restore height.
func (s *Settings) RestoreHeightOverride() (uint64, bool) {
	var height uint64
	if err := s.db.ReadSetting(restoreHeightOverrideDBKey, &height); err != nil {
		if !walletdata.IsNotFound(err) {
			s.log.Errorf("ReadSetting(%s) error: %v", restoreHeightOverrideDBKey, err)
		}
		return 0, false
	}
	return height, true
}

// ClearRestoreHeights deletes the creation-time restore height and any sync
// settings override.
func (s *Settings) ClearRestoreHeights() error {
	for _, key := range []string{restoreHeightDBKey, restoreHeightStrDBKey, restoreDateMillisDBKey, restoreHeightOverrideDBKey} {
		if err := s.db.DeleteSetting(key); err != nil {
			return fmt.Errorf("error deleting wallet.%s from db: %v", key, err)
		}
	}
	return nil
}

// CustomNodes returns the user's saved node addresses.
func (s *Settings) CustomNodes() []string {
	return walletdata.ReadSetting[[]string](s.db, s.log, customNodesListDBKey)
}

// AddCustomNode validates and saves a node address. Adding a node that is
// already saved is a no-op.
func (s *Settings) AddCustomNode(node string) error {
	if err := ValidateNodeAddress(node); err != nil {
		return err
	}
	nodes := s.CustomNodes()
	for _, n := range nodes {
		if n == node {
			return nil
		}
	}
	if err := s.db.SaveSetting(customNodesListDBKey, append(nodes, node)); err != nil {
		return fmt.Errorf("error saving wallet.%s to db: %v", customNodesListDBKey, err)
	}
	return nil
}

// RemoveCustomNode deletes a saved node address.
func (s *Settings) RemoveCustomNode(node string) error {
	nodes := s.CustomNodes()
	kept := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n != node {
			kept = append(kept, n)
		}
	}
	if err := s.db.SaveSetting(customNodesListDBKey, kept); err != nil {
		return fmt.Errorf("error saving wallet.%s to db: %v", customNodesListDBKey, err)
	}
	return nil
}

// Clear deletes every wallet setting.
func (s *Settings) Clear() error {
	return s.db.ClearSettings()
}

// ValidateNodeAddress checks that node is a host:port address, optionally
// prefixed with an http or https scheme.
func ValidateNodeAddress(node string) error {
	node = strings.TrimSpace(node)
	if node == "" {
		return fmt.Errorf("%w: address is empty", ErrInvalidNodeAddress)
	}

	hostPort := node
	if strings.Contains(node, "://") {
		u, err := url.Parse(node)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidNodeAddress, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidNodeAddress, u.Scheme)
		}
		hostPort = u.Host
	}

	host, port, err := net.SplitHostPort(hostPort)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNodeAddress, err)
	}
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidNodeAddress)
	}
	if p, err := strconv.ParseUint(port, 10, 16); err != nil || p == 0 {
		return fmt.Errorf("%w: invalid port %q", ErrInvalidNodeAddress, port)
	}
	return nil
}
