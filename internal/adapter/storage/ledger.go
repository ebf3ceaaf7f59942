package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tiyas17/backend-ledger/internal/core/domain"
	"github.com/Tiyas17/backend-ledger/internal/core/ledger"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same queries
// run standalone or inside an atomic unit.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LedgerStore is the postgres implementation of ledger.Store. Atomic units
// run as SERIALIZABLE transactions, which is what lets the in-unit balance
// re-check actually exclude a concurrent debit.
type LedgerStore struct {
	pool *pgxpool.Pool
	q    querier
}

func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool, q: pool}
}

func (s *LedgerStore) Atomic(ctx context.Context, fn func(ledger.Store) error) error {
	if s.pool == nil {
		// Already bound to a transaction; run in the same unit.
		return fn(s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin atomic unit: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&LedgerStore{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *LedgerStore) FindAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT id, owner_name, status, currency, created_at FROM accounts WHERE id = $1`

	var acc domain.Account
	err := s.q.QueryRow(ctx, query, id).Scan(
		&acc.ID, &acc.OwnerName, &acc.Status, &acc.Currency, &acc.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &acc, nil
}

func (s *LedgerStore) FindTransactionByKey(ctx context.Context, idempotencyKey string) (*domain.Transaction, error) {
	query := `
		SELECT id, from_account, to_account, amount, currency, idempotency_key, status, created_at, updated_at
		FROM transactions
		WHERE idempotency_key = $1
	`

	var txn domain.Transaction
	err := s.q.QueryRow(ctx, query, idempotencyKey).Scan(
		&txn.ID, &txn.FromAccountID, &txn.ToAccountID, &txn.Amount, &txn.Currency,
		&txn.IdempotencyKey, &txn.Status, &txn.CreatedAt, &txn.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction by key: %w", err)
	}
	return &txn, nil
}

func (s *LedgerStore) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, from_account, to_account, amount, currency, idempotency_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.q.Exec(ctx, query,
		txn.ID, txn.FromAccountID, txn.ToAccountID, txn.Amount, txn.Currency,
		txn.IdempotencyKey, txn.Status, txn.CreatedAt, txn.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateIdempotencyKey
	}
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (s *LedgerStore) CreateEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	query := `
		INSERT INTO entries (id, transaction_id, account_id, amount, direction, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.q.Exec(ctx, query,
		entry.ID, entry.TransactionID, entry.AccountID, entry.Amount, entry.Direction, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

func (s *LedgerStore) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, from, to domain.TransactionStatus) error {
	query := `UPDATE transactions SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	tag, err := s.q.Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s is not in status %s", id, from)
	}
	return nil
}

func (s *LedgerStore) AccountBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'CREDIT' THEN amount ELSE -amount END), 0)
		FROM entries
		WHERE account_id = $1
	`

	var balance int64
	if err := s.q.QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("derive balance: %w", err)
	}
	return balance, nil
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
