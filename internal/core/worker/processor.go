package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tiyas17/backend-ledger/internal/core/notifications"
)

const maxAttempts = 5

// StartNotificationWorker polls the notification job queue and delivers
// webhooks in the background. Notification failures stay in this loop; they
// never reach the transfer path.
func StartNotificationWorker(db *pgxpool.Pool, sender *notifications.Sender) {
	go func() {
		slog.Info("👷 Notification worker started")
		for {
			processJob(db, sender)
			time.Sleep(5 * time.Second)
		}
	}()
}

func processJob(db *pgxpool.Pool, sender *notifications.Sender) {
	ctx := context.Background()

	// The whole claim-send-resolve cycle runs in one transaction so that
	// SKIP LOCKED actually keeps two workers off the same job.
	tx, err := db.Begin(ctx)
	if err != nil {
		slog.Error("Worker: failed to begin job transaction", "error", err)
		return
	}
	defer tx.Rollback(ctx)

	query := `
		SELECT id, url, payload, attempts
		FROM notification_jobs
		WHERE status = 'PENDING' AND next_run_at <= NOW()
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`

	var id string
	var url string
	var payload []byte
	var attempts int

	if err := tx.QueryRow(ctx, query).Scan(&id, &url, &payload, &attempts); err != nil {
		return // nothing to do
	}

	slog.Info("Worker: processing job", "url", url, "job_id", id)

	sendErr := sender.Send(url, payload)
	if sendErr != nil {
		slog.Error("Worker: webhook failed", "error", sendErr, "attempts", attempts, "job_id", id)

		if attempts+1 >= maxAttempts {
			_, err = tx.Exec(ctx, `UPDATE notification_jobs SET status = 'FAILED', attempts = attempts + 1 WHERE id = $1`, id)
			slog.Error("Worker: job marked as FAILED (max attempts reached)", "job_id", id)
		} else {
			nextRun := time.Now().Add(time.Duration(attempts*10+10) * time.Second)
			_, err = tx.Exec(ctx, `UPDATE notification_jobs SET attempts = attempts + 1, next_run_at = $2 WHERE id = $1`, id, nextRun)
			slog.Info("Worker: scheduled retry", "job_id", id, "next_run", nextRun)
		}
	} else {
		_, err = tx.Exec(ctx, `UPDATE notification_jobs SET status = 'COMPLETED', attempts = attempts + 1 WHERE id = $1`, id)
		slog.Info("✅ Worker: webhook sent", "job_id", id)
	}

	if err != nil {
		slog.Error("Worker: failed to update job", "error", err, "job_id", id)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		slog.Error("Worker: failed to commit job", "error", err, "job_id", id)
	}
}
