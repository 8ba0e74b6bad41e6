package repository

import (
	"context"

	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/storage"
	"github.com/google/uuid"
)

type ScriptRepository struct {
	db *storage.Postgres
}

func NewScriptRepository(db *storage.Postgres) *ScriptRepository {
	return &ScriptRepository{db: db}
}

func (r *ScriptRepository) CreateBatch(ctx context.Context, scripts []*models.Script) error {
	if len(scripts) == 0 {
		return nil
	}
	return r.db.DB.WithContext(ctx).Create(&scripts).Error
}

func (r *ScriptRepository) FindByID(ctx context.Context, id string) (*models.Script, error) {
	var script models.Script
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&script).Error

	if isNotFound(err) {
		return nil, nil
	}

	return &script, err
}

func (r *ScriptRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Script, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var scripts []models.Script
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&scripts).Error

	return scripts, err
}

// Delete removes a script only if it belongs to the user.
func (r *ScriptRepository) Delete(ctx context.Context, id string, userID uuid.UUID) (bool, error) {
	res := r.db.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Script{})
	return res.RowsAffected == 1, res.Error
}
