package service

import (
	"context"

	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/repository"
)

// AdminService backs the review queue and user administration endpoints.
type AdminService struct {
	hooks    *repository.HookRepository
	users    *repository.UserRepository
	waitlist *repository.WaitlistRepository
}

func NewAdminService(hooks *repository.HookRepository, users *repository.UserRepository, waitlist *repository.WaitlistRepository) *AdminService {
	return &AdminService{hooks: hooks, users: users, waitlist: waitlist}
}

// ReviewQueue lists hooks awaiting review, oldest first.
func (s *AdminService) ReviewQueue(ctx context.Context, limit, offset int) ([]models.Hook, error) {
	return s.hooks.Pending(ctx, limit, offset)
}

// Approve publishes a pending hook into the library.
func (s *AdminService) Approve(ctx context.Context, hookID string) error {
	return s.setStatus(ctx, hookID, models.HookStatusApproved)
}

// Reject removes a pending hook from the queue without publishing it.
func (s *AdminService) Reject(ctx context.Context, hookID string) error {
	return s.setStatus(ctx, hookID, models.HookStatusRejected)
}

func (s *AdminService) setStatus(ctx context.Context, hookID, status string) error {
	hook, err := s.hooks.FindByID(ctx, hookID)
	if err != nil {
		return err
	}
	if hook == nil || hook.Status != models.HookStatusPending {
		return ErrNotFound
	}
	return s.hooks.UpdateStatus(ctx, hookID, status)
}

func (s *AdminService) Users(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.users.List(ctx, limit, offset)
}

// GrantCredits tops up a user's balance.
func (s *AdminService) GrantCredits(ctx context.Context, userID string, amount int) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	return s.users.GrantCredits(ctx, userID, amount)
}

func (s *AdminService) Waitlist(ctx context.Context, limit, offset int) ([]models.WaitlistEntry, int64, error) {
	entries, err := s.waitlist.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.waitlist.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return entries, count, nil
}
