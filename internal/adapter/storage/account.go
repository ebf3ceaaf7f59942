package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tiyas17/backend-ledger/internal/core/domain"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// CreateAccount opens a new ACTIVE account with no balance (the balance is
// whatever the ledger says, which for a new account is zero).
func (r *AccountRepository) CreateAccount(ctx context.Context, ownerName string, currency domain.Currency) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (owner_name, currency, status)
		VALUES ($1, $2, 'ACTIVE')
		RETURNING id, owner_name, status, currency, created_at
	`

	var acc domain.Account
	err := r.db.QueryRow(ctx, query, ownerName, currency).Scan(
		&acc.ID, &acc.OwnerName, &acc.Status, &acc.Currency, &acc.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &acc, nil
}

func (r *AccountRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT id, owner_name, status, currency, created_at FROM accounts WHERE id = $1`

	var acc domain.Account
	err := r.db.QueryRow(ctx, query, id).Scan(
		&acc.ID, &acc.OwnerName, &acc.Status, &acc.Currency, &acc.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// SaveAPIKey stores the hashed key for the account
func (r *AccountRepository) SaveAPIKey(ctx context.Context, accountID uuid.UUID, keyHash string, keyPrefix string) error {
	query := `INSERT INTO api_keys (account_id, key_hash, key_prefix) VALUES ($1, $2, $3)`

	_, err := r.db.Exec(ctx, query, accountID, keyHash, keyPrefix)
	if err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}

// HistoryItem is one row of an account's recent activity, seen from that
// account's side of the double entry.
type HistoryItem struct {
	TransactionID uuid.UUID                `json:"transaction_id"`
	Amount        int64                    `json:"amount"`
	Currency      domain.Currency          `json:"currency"`
	Direction     domain.EntryDirection    `json:"direction"`
	Status        domain.TransactionStatus `json:"status"`
	CreatedAt     time.Time                `json:"date"`
}

// History fetches the account's most recent postings, newest first.
func (r *AccountRepository) History(ctx context.Context, accountID uuid.UUID) ([]HistoryItem, error) {
	query := `
		SELECT t.id, t.amount, t.currency, e.direction, t.status, t.created_at
		FROM entries e
		JOIN transactions t ON e.transaction_id = t.id
		WHERE e.account_id = $1
		ORDER BY t.created_at DESC
		LIMIT 20
	`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer rows.Close()

	var history []HistoryItem
	for rows.Next() {
		var item HistoryItem
		if err := rows.Scan(&item.TransactionID, &item.Amount, &item.Currency, &item.Direction, &item.Status, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		history = append(history, item)
	}
	return history, rows.Err()
}
