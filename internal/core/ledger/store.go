package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/Tiyas17/backend-ledger/internal/core/domain"
)

// Store is everything the transfer flow needs from the storage layer. The
// postgres implementation lives in internal/adapter/storage; tests use an
// in-memory one.
type Store interface {
	// FindAccount returns domain.ErrAccountNotFound when the id does not resolve.
	FindAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// FindTransactionByKey returns domain.ErrTransactionNotFound when no
	// transaction was ever created with the idempotency key.
	FindTransactionByKey(ctx context.Context, idempotencyKey string) (*domain.Transaction, error)

	// CreateTransaction inserts a new transaction row. The store enforces
	// uniqueness of the idempotency key and returns
	// domain.ErrDuplicateIdempotencyKey when the insert loses that race.
	CreateTransaction(ctx context.Context, txn *domain.Transaction) error

	// CreateEntry appends one immutable ledger entry.
	CreateEntry(ctx context.Context, entry *domain.LedgerEntry) error

	// UpdateTransactionStatus moves a transaction from one status to another.
	// It fails when the transaction is not currently in the expected status,
	// so statuses only ever move forward.
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, from, to domain.TransactionStatus) error

	// AccountBalance derives the balance as the signed sum of the account's
	// committed entries: CREDIT positive, DEBIT negative.
	AccountBalance(ctx context.Context, accountID uuid.UUID) (int64, error)

	// Atomic runs fn against a store bound to one all-or-nothing commit unit.
	// Every write fn makes becomes visible together, or not at all, and reads
	// inside fn are isolated from concurrently committing units.
	Atomic(ctx context.Context, fn func(Store) error) error
}

// Notifier queues a notification for the parties of a completed transfer.
// Delivery is best-effort and fully decoupled from the transfer result.
type Notifier interface {
	TransferCompleted(ctx context.Context, txn *domain.Transaction) error
}
