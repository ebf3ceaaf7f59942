package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tiyas17/backend-ledger/internal/core/domain"
)

// NotificationQueue implements ledger.Notifier by queueing a job row for the
// background worker. Enqueueing is the only coupling between a transfer and
// its notification; delivery happens out of band.
type NotificationQueue struct {
	db  *pgxpool.Pool
	url string
}

func NewNotificationQueue(db *pgxpool.Pool, webhookURL string) *NotificationQueue {
	return &NotificationQueue{db: db, url: webhookURL}
}

func (q *NotificationQueue) TransferCompleted(ctx context.Context, txn *domain.Transaction) error {
	if q.url == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		"event": "transfer.completed",
		"data": map[string]any{
			"transaction_id": txn.ID,
			"from_account":   txn.FromAccountID,
			"to_account":     txn.ToAccountID,
			"amount":         txn.Amount,
			"currency":       txn.Currency,
			"status":         txn.Status,
			"timestamp":      time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}

	_, err = q.db.Exec(ctx, `INSERT INTO notification_jobs (url, payload) VALUES ($1, $2)`, q.url, payload)
	if err != nil {
		return fmt.Errorf("queue notification job: %w", err)
	}
	return nil
}
