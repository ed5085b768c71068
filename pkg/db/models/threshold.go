package models

import (
	"time"

	"github.com/google/uuid"
)

// Threshold is a per-variant minimum stock rule configured by a user.
type Threshold struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	BsaleVariantID int64     `gorm:"column:bsale_variant_id;not null"`
	BsaleOfficeID  int64     `gorm:"column:bsale_office_id;not null"`
	MinQuantity    int       `gorm:"column:min_quantity;not null"`
	Enabled        bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
