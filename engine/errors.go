package engine

import "errors"

var (
	// ErrNotEnoughBalance is returned by Send when the unlocked balance does
	// not cover the amount and fee.
	ErrNotEnoughBalance = errors.New("not enough unlocked balance")
	// ErrInvalidAmount is returned for a zero amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidAddress is returned for a malformed destination address.
	ErrInvalidAddress = errors.New("invalid address")
)
