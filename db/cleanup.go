package db

import (
	"context"
	"fmt"
	"time"
)

// CleanupResult contains statistics about a cleanup operation.
type CleanupResult struct {
	// Deleted is the number of generation records removed
	Deleted int64
	// Duration is how long the cleanup took
	Duration time.Duration
}

// Cleanup deletes generation records created before cutoff and runs VACUUM
// to reclaim disk space. A VACUUM failure is reported after the delete has
// been committed.
//
// Example:
//
//	result, err := database.Cleanup(ctx, time.Now().AddDate(0, 0, -30))
func (d *Database) Cleanup(ctx context.Context, cutoff time.Time) (CleanupResult, error) {
	start := time.Now()
	var result CleanupResult

	if d == nil || d.conn == nil {
		return result, fmt.Errorf("db: database connection is closed")
	}

	res, err := d.conn.ExecContext(ctx,
		"DELETE FROM generations WHERE created_at < ?",
		cutoff.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return result, fmt.Errorf("db: failed to delete old generations: %w", err)
	}
	result.Deleted, err = res.RowsAffected()
	if err != nil {
		return result, fmt.Errorf("db: failed to get rows affected: %w", err)
	}

	if result.Deleted > 0 {
		// VACUUM must run outside a transaction
		if _, err := d.conn.ExecContext(ctx, "VACUUM"); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("db: cleanup succeeded but VACUUM failed: %w", err)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}
