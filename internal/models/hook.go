package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hook statuses. Submitted hooks sit in the review queue until an admin
// approves or rejects them.
const (
	HookStatusPending  = "pending"
	HookStatusApproved = "approved"
	HookStatusRejected = "rejected"
)

// Hook is a short-video advertising hook in the library.
type Hook struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Text        string     `gorm:"not null" json:"text"`
	Category    string     `gorm:"index;not null" json:"category"`
	Platform    string     `gorm:"index;not null" json:"platform"` // "tiktok", "reels", "shorts"
	Author      string     `json:"author"`
	Status      string     `gorm:"index;default:'approved'" json:"status"`
	SubmittedBy *uuid.UUID `gorm:"index" json:"submitted_by,omitempty"`
	AvgRating   float64    `gorm:"default:0" json:"avg_rating"`
	RatingCount int        `gorm:"default:0" json:"rating_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (h *Hook) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

func (Hook) TableName() string {
	return "hooks"
}
