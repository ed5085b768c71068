package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockpinghq/stockping-backend/pkg/enums"
)

// Tenant is one connected Bsale account; every user, alert and threshold
// hangs off a tenant.
type Tenant struct {
	ID                 uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string                   `gorm:"type:text;not null"`
	BsaleClientCode    string                   `gorm:"column:bsale_client_code;type:text;not null;uniqueIndex"`
	BsaleAccessToken   string                   `gorm:"column:bsale_access_token;type:text;not null"` // opaque, encrypted by the sync service
	SyncStatus         enums.SyncStatus         `gorm:"column:sync_status;type:sync_status;not null;default:'pending'"`
	SubscriptionStatus enums.SubscriptionStatus `gorm:"column:subscription_status;type:subscription_status;not null;default:'trialing'"`
	Plan               enums.Plan               `gorm:"type:billing_plan;not null;default:'free'"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
