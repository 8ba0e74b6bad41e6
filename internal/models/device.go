package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeviceToken identifies a guest-mode browser so its quota survives IP
// churn. Only the SHA-256 hash of the issued token is stored.
type DeviceToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TokenHash  string     `gorm:"uniqueIndex;not null" json:"-"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

func (d *DeviceToken) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (DeviceToken) TableName() string {
	return "device_tokens"
}
