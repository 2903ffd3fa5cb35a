package wallet

import "errors"

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrEntryNotFound       = errors.New("ledger entry not found")
	ErrEntryNotPending     = errors.New("ledger entry is not pending")
)
