package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest indicates malformed or missing input, or an account
	// reference that does not resolve. Caller error, retrying without a
	// correction will not help.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNotActive indicates a transfer endpoint that is not ACTIVE.
	ErrAccountNotActive = errors.New("account is not active")
	// ErrTransactionNotFound indicates no transaction exists for the lookup.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrDuplicateIdempotencyKey is the store-level signal that an insert lost
	// the race on the idempotency key's uniqueness constraint.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
	// ErrCommitAborted indicates the atomic commit unit failed and was rolled
	// back; the transaction carries no postings. Retryable with a fresh
	// idempotency key.
	ErrCommitAborted = errors.New("transaction commit aborted")
)

// InsufficientFundsError reports the balance that was observed when the
// sufficiency check failed, so the caller can see how short they are.
type InsufficientFundsError struct {
	Balance   int64
	Requested int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: current balance is %d, requested amount is %d", e.Balance, e.Requested)
}
