package repository

import (
	"context"

	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/storage"
)

type UserRepository struct {
	db *storage.Postgres
}

func NewUserRepository(db *storage.Postgres) *UserRepository {
	return &UserRepository{db: db}
}

// Inserts a new user into the database
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.DB.WithContext(ctx).Create(user).Error
}

// Retrieves user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.DB.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if isNotFound(err) {
		return nil, nil
	}

	return &user, err
}

// Retrieves user by id
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if isNotFound(err) {
		return nil, nil
	}

	return &user, err
}

// Retrieves all users
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error

	return users, err
}

// SpendCredit deducts one credit if any remain. The guard makes the
// deduction atomic under concurrent generations by the same user.
func (r *UserRepository) SpendCredit(ctx context.Context, id string) (bool, error) {
	res := r.db.DB.WithContext(ctx).Exec(`
		UPDATE users SET credits = credits - 1, updated_at = NOW()
		WHERE id = ? AND credits > 0`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GrantCredits adds credits to a user (admin operation).
func (r *UserRepository) GrantCredits(ctx context.Context, id string, amount int) error {
	return r.db.DB.WithContext(ctx).Exec(`
		UPDATE users SET credits = credits + ?, updated_at = NOW()
		WHERE id = ?`, amount, id).Error
}
