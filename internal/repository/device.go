package repository

import (
	"context"
	"time"

	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/storage"
	"github.com/google/uuid"
)

type DeviceRepository struct {
	db *storage.Postgres
}

func NewDeviceRepository(db *storage.Postgres) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, device *models.DeviceToken) error {
	return r.db.DB.WithContext(ctx).Create(device).Error
}

func (r *DeviceRepository) FindByHash(ctx context.Context, hash string) (*models.DeviceToken, error) {
	var device models.DeviceToken
	err := r.db.DB.WithContext(ctx).
		Where("token_hash = ? AND is_active = ?", hash, true).
		First(&device).Error

	if isNotFound(err) {
		return nil, nil
	}

	return &device, err
}

func (r *DeviceRepository) UpdateLastSeen(ctx context.Context, id uuid.UUID) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.DeviceToken{}).
		Where("id = ?", id).
		Update("last_seen_at", time.Now()).Error
}
