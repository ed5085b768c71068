package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockpinghq/stockping-backend/pkg/enums"
)

// User belongs to exactly one tenant and owns thresholds and alerts.
type User struct {
	ID                  uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID            uuid.UUID             `gorm:"column:tenant_id;type:uuid;not null;index"`
	Email               string                `gorm:"type:text;not null"`
	NotificationEmail   *string               `gorm:"column:notification_email;type:text"`
	DigestFrequency     enums.DigestFrequency `gorm:"column:digest_frequency;type:digest_frequency;not null;default:'daily'"`
	NotificationEnabled bool                  `gorm:"column:notification_enabled;not null;default:true"`
	CreatedAt           time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// RecipientEmail resolves the address digests should be delivered to.
func (u User) RecipientEmail() string {
	if u.NotificationEmail != nil && *u.NotificationEmail != "" {
		return *u.NotificationEmail
	}
	return u.Email
}
