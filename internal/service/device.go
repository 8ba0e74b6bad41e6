package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/repository"
	"github.com/adocavo/adocavo-api/internal/storage"
	"github.com/google/uuid"
)

// DeviceService issues and validates guest-mode device tokens. Tokens give
// a browser a stable quota identity that survives IP churn; only the hash
// is persisted.
type DeviceService struct {
	repo  *repository.DeviceRepository
	redis *storage.RedisClient
}

func NewDeviceService(repo *repository.DeviceRepository, redis *storage.RedisClient) *DeviceService {
	return &DeviceService{repo: repo, redis: redis}
}

// Issue creates a new device token. The plain token is returned once; the
// client echoes it back in the x-device-id header.
func (s *DeviceService) Issue(ctx context.Context) (string, error) {
	tokenBytes := make([]byte, 24)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate device token: %w", err)
	}

	token := "dev_" + base64.URLEncoding.EncodeToString(tokenBytes)

	hash := sha256.Sum256([]byte(token))
	device := models.DeviceToken{
		TokenHash: hex.EncodeToString(hash[:]),
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, &device); err != nil {
		return "", fmt.Errorf("failed to create device token: %w", err)
	}

	return token, nil
}

// Validate resolves a device token to its id, cache first, database on
// miss. Unknown tokens resolve to nil without error.
func (s *DeviceService) Validate(ctx context.Context, token string) (*models.DeviceToken, error) {
	hash := sha256.Sum256([]byte(token))
	tokenHash := hex.EncodeToString(hash[:])

	// Check cache first
	cacheKey := "device:cache:" + tokenHash
	if cached, err := s.redis.Get(ctx, cacheKey); err == nil && cached != "" {
		if id, err := uuid.Parse(cached); err == nil {
			return &models.DeviceToken{ID: id, TokenHash: tokenHash, IsActive: true}, nil
		}
	}

	// Cache miss - query database
	device, err := s.repo.FindByHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, nil
	}

	_ = s.redis.Set(ctx, cacheKey, device.ID.String(), 5*time.Minute)

	go func() {
		_ = s.repo.UpdateLastSeen(context.Background(), device.ID)
	}()

	return device, nil
}
