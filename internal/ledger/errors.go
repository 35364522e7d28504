package ledger

import "errors"

var (
	// ErrAccountNotFound is returned by balance and history reads when the
	// account id does not resolve.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAccount covers self-transfers, non-positive amounts and
	// transfers where either side does not exist.
	ErrInvalidAccount = errors.New("invalid account")

	// ErrInsufficientBalance is returned when the debit account's available
	// balance cannot cover the transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrPoolNotFound is returned by investment operations on a missing pool.
	ErrPoolNotFound = errors.New("investment pool not found")
)
