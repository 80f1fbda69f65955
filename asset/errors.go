package asset

import "errors"

var (
	ErrInvalidPassphrase  = errors.New("invalid passphrase")
	ErrCorruptData        = errors.New("encrypted data is corrupt")
	ErrInvalidNodeAddress = errors.New("invalid node address")
)
