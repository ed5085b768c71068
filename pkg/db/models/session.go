package models

import (
	"time"

	"github.com/google/uuid"
)

// Session stores hashed login sessions for the web frontend.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	TokenHash string    `gorm:"column:token_hash;type:text;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"column:expires_at;type:timestamptz;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
