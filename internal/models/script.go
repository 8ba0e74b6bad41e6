package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Script is an AI-generated ad script owned by a user.
type Script struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	HookID    *uuid.UUID `gorm:"type:uuid;index" json:"hook_id,omitempty"`
	Product   string     `gorm:"not null" json:"product"`
	Tone      string     `json:"tone"`
	Platform  string     `json:"platform"`
	Title     string     `json:"title"`
	Body      string     `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time  `json:"created_at"`
}

func (s *Script) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (Script) TableName() string {
	return "scripts"
}
