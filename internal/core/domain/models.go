package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus is the lifecycle state of an account. Accounts are managed
// elsewhere; the ledger only reads identity and status.
type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountInactive AccountStatus = "INACTIVE"
)

// Account represents a user's wallet. There is no balance field on purpose:
// balances are derived from the ledger entries, never stored.
type Account struct {
	ID        uuid.UUID     `json:"id"`
	OwnerName string        `json:"owner_name"`
	Status    AccountStatus `json:"status"`
	Currency  Currency      `json:"currency"`
	CreatedAt time.Time     `json:"created_at"`
}

// TransactionStatus follows PENDING -> COMPLETED or PENDING -> FAILED.
// REVERSED is terminal and only ever read; no code path here writes it.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
	TransactionReversed  TransactionStatus = "REVERSED"
)

// Transaction represents one requested movement of money between two accounts.
// The idempotency key is unique across all transactions, ever.
type Transaction struct {
	ID             uuid.UUID         `json:"id"`
	FromAccountID  uuid.UUID         `json:"from_account"`
	ToAccountID    uuid.UUID         `json:"to_account"`
	Amount         int64             `json:"amount"` // Cents!
	Currency       Currency          `json:"currency"`
	IdempotencyKey string            `json:"idempotency_key"`
	Status         TransactionStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// EntryDirection marks which side of the double entry a posting is.
type EntryDirection string

const (
	Debit  EntryDirection = "DEBIT"
	Credit EntryDirection = "CREDIT"
)

// LedgerEntry is one immutable posting against one account. Entries are
// created strictly in DEBIT/CREDIT pairs per transaction and never updated
// or deleted once committed.
type LedgerEntry struct {
	ID            uuid.UUID      `json:"id"`
	TransactionID uuid.UUID      `json:"transaction_id"`
	AccountID     uuid.UUID      `json:"account_id"`
	Amount        int64          `json:"amount"`
	Direction     EntryDirection `json:"direction"`
	CreatedAt     time.Time      `json:"created_at"`
}
