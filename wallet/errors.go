package wallet

import "errors"

var (
	// ErrNoSeed means the persisted seed is missing or unreadable.
	ErrNoSeed = errors.New("wallet seed not found")
	// ErrWalletExists is returned when creating or restoring over an
	// existing wallet. Remove the existing wallet first.
	ErrWalletExists = errors.New("a wallet already exists")
	// ErrInvalidRestorePoint is returned for a restore height or date that
	// cannot be parsed.
	ErrInvalidRestorePoint = errors.New("invalid restore height or date")
)
