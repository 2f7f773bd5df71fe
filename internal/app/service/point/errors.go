package point

import "errors"

var (
	// ErrInvalidAmount rejects non-positive accrual amounts.
	ErrInvalidAmount = errors.New("point: amount must be positive")
	// ErrWalletNotFound means a reversal targeted a user who never earned.
	ErrWalletNotFound = errors.New("point: wallet not found")
	// ErrLedgerEntryNotFound means there is nothing to reverse for the key.
	ErrLedgerEntryNotFound = errors.New("point: ledger entry not found")
)
