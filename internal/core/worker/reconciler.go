package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StartReconciler sweeps transactions that got stuck in PENDING: the atomic
// commit aborted and the compensating FAILED write failed too, leaving a row
// with no postings. Anything PENDING past maxAge with zero entries is safe to
// resolve to FAILED, since a committed transfer always has its pair.
func StartReconciler(db *pgxpool.Pool, interval, maxAge time.Duration) {
	go func() {
		slog.Info("👷 Reconciler started", "interval", interval, "max_age", maxAge)
		for {
			sweepStuckPending(db, maxAge)
			time.Sleep(interval)
		}
	}()
}

func sweepStuckPending(db *pgxpool.Pool, maxAge time.Duration) {
	ctx := context.Background()
	cutoff := time.Now().Add(-maxAge)

	query := `
		UPDATE transactions t
		SET status = 'FAILED', updated_at = NOW()
		WHERE t.status = 'PENDING'
		  AND t.created_at < $1
		  AND NOT EXISTS (SELECT 1 FROM entries e WHERE e.transaction_id = t.id)
		RETURNING t.id
	`

	rows, err := db.Query(ctx, query, cutoff)
	if err != nil {
		slog.Error("Reconciler: sweep failed", "error", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			slog.Error("Reconciler: scan failed", "error", err)
			return
		}
		slog.Warn("Reconciler: resolved stuck PENDING transaction to FAILED", "transaction_id", id)
	}
	if err := rows.Err(); err != nil {
		slog.Error("Reconciler: sweep failed", "error", err)
	}
}
