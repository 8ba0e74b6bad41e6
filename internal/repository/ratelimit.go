package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/ratelimit"
	"github.com/adocavo/adocavo-api/internal/storage"
)

// RateLimitRepository is the exact fallback counter store. All mutations go
// through single conditional UPDATE statements, so concurrent writers on
// the same (identifier, route_key) row never lose an increment, and
// reset_at > updated_at holds after every successful write.
type RateLimitRepository struct {
	db *storage.Postgres
}

func NewRateLimitRepository(db *storage.Postgres) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

var _ ratelimit.CounterStore = (*RateLimitRepository)(nil)

func (r *RateLimitRepository) Allow(ctx context.Context, identifier, routeKey string, limit int, window time.Duration, now time.Time) (ratelimit.StoreDecision, error) {
	db := r.db.DB.WithContext(ctx)
	resetAt := now.Add(window)

	// Make sure the row exists. Losing the race to another inserter is
	// fine; the conditional updates below operate on whatever row won.
	res := db.Exec(`
		INSERT INTO rate_limit_counters (identifier, route_key, count, reset_at, updated_at)
		VALUES (?, ?, 0, ?, ?)
		ON CONFLICT (identifier, route_key) DO NOTHING`,
		identifier, routeKey, resetAt, now)
	if res.Error != nil {
		return ratelimit.StoreDecision{}, fmt.Errorf("ensure counter row: %w", res.Error)
	}

	// Expired window: atomically restart it. The reset_at guard means only
	// one concurrent writer performs the reset.
	res = db.Exec(`
		UPDATE rate_limit_counters
		SET count = 0, reset_at = ?, updated_at = ?
		WHERE identifier = ? AND route_key = ? AND reset_at <= ?`,
		resetAt, now, identifier, routeKey, now)
	if res.Error != nil {
		return ratelimit.StoreDecision{}, fmt.Errorf("reset counter window: %w", res.Error)
	}

	// Increment-with-guard: succeeds only while under the limit and inside
	// a live window. RowsAffected decides admission.
	var row models.RateLimitCounter
	res = db.Raw(`
		UPDATE rate_limit_counters
		SET count = count + 1, updated_at = ?
		WHERE identifier = ? AND route_key = ? AND count < ? AND reset_at > ?
		RETURNING identifier, route_key, count, reset_at, updated_at`,
		now, identifier, routeKey, limit, now).Scan(&row)
	if res.Error != nil {
		return ratelimit.StoreDecision{}, fmt.Errorf("increment counter: %w", res.Error)
	}

	if res.RowsAffected == 1 {
		return ratelimit.StoreDecision{
			Allowed: true,
			Count:   row.Count,
			ResetAt: row.ResetAt,
		}, nil
	}

	// Over quota: fetch the row for the retry hint.
	var existing models.RateLimitCounter
	if err := db.Where("identifier = ? AND route_key = ?", identifier, routeKey).
		First(&existing).Error; err != nil {
		return ratelimit.StoreDecision{}, fmt.Errorf("load counter row: %w", err)
	}

	return ratelimit.StoreDecision{
		Allowed: false,
		Count:   existing.Count,
		ResetAt: existing.ResetAt,
	}, nil
}

// Get returns the persisted counter for an (identifier, routeKey) pair, or
// nil when none exists.
func (r *RateLimitRepository) Get(ctx context.Context, identifier, routeKey string) (*models.RateLimitCounter, error) {
	var counter models.RateLimitCounter
	err := r.db.DB.WithContext(ctx).
		Where("identifier = ? AND route_key = ?", identifier, routeKey).
		First(&counter).Error
	if isNotFound(err) {
		return nil, nil
	}
	return &counter, err
}

// CleanupExpired deletes counters whose window lapsed before the cutoff.
// Run periodically; the limiter never reads stale rows, this only reclaims
// space.
func (r *RateLimitRepository) CleanupExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.DB.WithContext(ctx).
		Where("reset_at < ?", before).
		Delete(&models.RateLimitCounter{})
	return res.RowsAffected, res.Error
}
