package service

import (
	"context"

	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/repository"
	"github.com/google/uuid"
)

type HookService struct {
	hooks     *repository.HookRepository
	favorites *repository.FavoriteRepository
}

func NewHookService(hooks *repository.HookRepository, favorites *repository.FavoriteRepository) *HookService {
	return &HookService{hooks: hooks, favorites: favorites}
}

// List returns approved hooks matching the filter.
func (s *HookService) List(ctx context.Context, filter repository.HookFilter) ([]models.Hook, error) {
	filter.Status = models.HookStatusApproved
	return s.hooks.List(ctx, filter)
}

func (s *HookService) Get(ctx context.Context, id string) (*models.Hook, error) {
	hook, err := s.hooks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hook == nil || hook.Status != models.HookStatusApproved {
		return nil, ErrNotFound
	}
	return hook, nil
}

func (s *HookService) TopRated(ctx context.Context, limit int) ([]models.Hook, error) {
	return s.hooks.TopRated(ctx, limit)
}

// Submit puts a user-contributed hook into the review queue.
func (s *HookService) Submit(ctx context.Context, userID uuid.UUID, text, category, platform string) (*models.Hook, error) {
	hook := &models.Hook{
		Text:        text,
		Category:    category,
		Platform:    platform,
		Status:      models.HookStatusPending,
		SubmittedBy: &userID,
	}
	if err := s.hooks.Create(ctx, hook); err != nil {
		return nil, err
	}
	return hook, nil
}

func (s *HookService) Rate(ctx context.Context, hookID string, userID uuid.UUID, stars int) error {
	hook, err := s.Get(ctx, hookID)
	if err != nil {
		return err
	}
	return s.hooks.Rate(ctx, hook.ID, userID, stars)
}

func (s *HookService) Favorite(ctx context.Context, hookID string, userID uuid.UUID) error {
	hook, err := s.Get(ctx, hookID)
	if err != nil {
		return err
	}
	return s.favorites.Add(ctx, userID, hook.ID)
}

func (s *HookService) Unfavorite(ctx context.Context, hookID string, userID uuid.UUID) error {
	id, err := uuid.Parse(hookID)
	if err != nil {
		return ErrNotFound
	}
	return s.favorites.Remove(ctx, userID, id)
}

func (s *HookService) Favorites(ctx context.Context, userID uuid.UUID) ([]models.Hook, error) {
	return s.favorites.ListHooks(ctx, userID)
}
