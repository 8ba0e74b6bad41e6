package repository

import (
	"context"

	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HookRepository struct {
	db *storage.Postgres
}

func NewHookRepository(db *storage.Postgres) *HookRepository {
	return &HookRepository{db: db}
}

// HookFilter narrows List results. Zero values mean "no constraint".
type HookFilter struct {
	Category string
	Platform string
	Search   string
	Status   string
	Limit    int
	Offset   int
}

func (r *HookRepository) Create(ctx context.Context, hook *models.Hook) error {
	return r.db.DB.WithContext(ctx).Create(hook).Error
}

func (r *HookRepository) FindByID(ctx context.Context, id string) (*models.Hook, error) {
	var hook models.Hook
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&hook).Error

	if isNotFound(err) {
		return nil, nil
	}

	return &hook, err
}

func (r *HookRepository) List(ctx context.Context, filter HookFilter) ([]models.Hook, error) {
	q := r.db.DB.WithContext(ctx).Model(&models.Hook{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Platform != "" {
		q = q.Where("platform = ?", filter.Platform)
	}
	if filter.Search != "" {
		q = q.Where("text ILIKE ?", "%"+filter.Search+"%")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var hooks []models.Hook
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&hooks).Error

	return hooks, err
}

func (r *HookRepository) TopRated(ctx context.Context, limit int) ([]models.Hook, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var hooks []models.Hook
	err := r.db.DB.WithContext(ctx).
		Where("status = ? AND rating_count > 0", models.HookStatusApproved).
		Order("avg_rating DESC, rating_count DESC").
		Limit(limit).
		Find(&hooks).Error

	return hooks, err
}

func (r *HookRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.Hook{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Pending returns the admin review queue, oldest first.
func (r *HookRepository) Pending(ctx context.Context, limit, offset int) ([]models.Hook, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var hooks []models.Hook
	err := r.db.DB.WithContext(ctx).
		Where("status = ?", models.HookStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&hooks).Error

	return hooks, err
}

// Rate upserts a user's rating and refreshes the hook's aggregate inside
// one transaction.
func (r *HookRepository) Rate(ctx context.Context, hookID, userID uuid.UUID, stars int) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`
			INSERT INTO ratings (user_id, hook_id, stars, created_at, updated_at)
			VALUES (?, ?, ?, NOW(), NOW())
			ON CONFLICT (user_id, hook_id)
			DO UPDATE SET stars = EXCLUDED.stars, updated_at = NOW()`,
			userID, hookID, stars).Error
		if err != nil {
			return err
		}

		return tx.Exec(`
			UPDATE hooks SET
				avg_rating = sub.avg, rating_count = sub.cnt, updated_at = NOW()
			FROM (
				SELECT AVG(stars)::float AS avg, COUNT(*) AS cnt
				FROM ratings WHERE hook_id = ?
			) sub
			WHERE hooks.id = ?`, hookID, hookID).Error
	})
}
