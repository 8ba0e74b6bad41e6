package service

import (
	"context"
	"strings"

	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/repository"
)

type WaitlistService struct {
	repo *repository.WaitlistRepository
}

func NewWaitlistService(repo *repository.WaitlistRepository) *WaitlistService {
	return &WaitlistService{repo: repo}
}

// Join records a signup. Duplicate emails are accepted silently so the
// endpoint cannot be used to probe membership.
func (s *WaitlistService) Join(ctx context.Context, email, source string) error {
	entry := &models.WaitlistEntry{
		Email:  strings.ToLower(strings.TrimSpace(email)),
		Source: source,
	}
	return s.repo.Add(ctx, entry)
}
