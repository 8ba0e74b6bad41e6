package repository

import (
	"context"

	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type FavoriteRepository struct {
	db *storage.Postgres
}

func NewFavoriteRepository(db *storage.Postgres) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add is idempotent: favoriting twice is a no-op.
func (r *FavoriteRepository) Add(ctx context.Context, userID, hookID uuid.UUID) error {
	fav := models.Favorite{UserID: userID, HookID: hookID}
	return r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fav).Error
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, hookID uuid.UUID) error {
	return r.db.DB.WithContext(ctx).
		Where("user_id = ? AND hook_id = ?", userID, hookID).
		Delete(&models.Favorite{}).Error
}

// ListHooks returns the user's favorited hooks, most recent first.
func (r *FavoriteRepository) ListHooks(ctx context.Context, userID uuid.UUID) ([]models.Hook, error) {
	var hooks []models.Hook
	err := r.db.DB.WithContext(ctx).
		Model(&models.Hook{}).
		Joins("JOIN favorites ON favorites.hook_id = hooks.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&hooks).Error

	return hooks, err
}
