package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpinghq/stockping-backend/pkg/enums"
)

// Alert is a single pending or delivered stock alert. It transitions
// pending -> sent exactly once, only after the digest email carrying it was
// accepted by the mail provider, and never transitions back.
type Alert struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID          uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;index"`
	UserID            uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	BsaleVariantID    int64            `gorm:"column:bsale_variant_id;not null"`
	BsaleOfficeID     int64            `gorm:"column:bsale_office_id;not null"`
	SKU               *string          `gorm:"column:sku;type:text"`
	ProductName       *string          `gorm:"column:product_name;type:text"`
	AlertType         enums.AlertType  `gorm:"column:alert_type;type:alert_type;not null"`
	CurrentQuantity   int              `gorm:"column:current_quantity;not null"`
	ThresholdQuantity *int             `gorm:"column:threshold_quantity"`
	DaysToStockout    *decimal.Decimal `gorm:"column:days_to_stockout;type:numeric(10,2)"`
	Status            enums.AlertStatus `gorm:"type:alert_status;not null;default:'pending'"`
	SentAt            *time.Time       `gorm:"column:sent_at;type:timestamptz"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
}
