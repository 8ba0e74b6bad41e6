package repository

import (
	"context"

	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/storage"
	"gorm.io/gorm/clause"
)

type WaitlistRepository struct {
	db *storage.Postgres
}

func NewWaitlistRepository(db *storage.Postgres) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

// Add inserts the email once; re-joining is a silent no-op.
func (r *WaitlistRepository) Add(ctx context.Context, entry *models.WaitlistEntry) error {
	return r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).Error
}

func (r *WaitlistRepository) List(ctx context.Context, limit, offset int) ([]models.WaitlistEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []models.WaitlistEntry
	err := r.db.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error

	return entries, err
}

func (r *WaitlistRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Count(&count).Error

	return count, err
}
