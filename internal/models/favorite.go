package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite links a user to a hook they saved.
type Favorite struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	HookID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"hook_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// Rating is a single 1-5 star rating of a hook by a user.
type Rating struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	HookID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"hook_id"`
	Stars     int       `gorm:"not null" json:"stars"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}
