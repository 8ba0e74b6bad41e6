package models

import (
	"time"
)

// RateLimitCounter is the durable fallback counter used when the Redis fast
// path is unavailable. Rows are keyed by (identifier, route_key) and mutated
// only through conditional UPDATE statements in the repository, which keep
// count >= 0 and reset_at > updated_at.
type RateLimitCounter struct {
	Identifier string    `gorm:"primaryKey;size:255" json:"identifier"`
	RouteKey   string    `gorm:"primaryKey;size:128" json:"route_key"`
	Count      int       `gorm:"not null;default:0;check:count >= 0" json:"count"`
	ResetAt    time.Time `gorm:"not null" json:"reset_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (RateLimitCounter) TableName() string {
	return "rate_limit_counters"
}
