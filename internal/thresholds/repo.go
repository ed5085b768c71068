package thresholds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockpinghq/stockping-backend/pkg/db/models"
	"github.com/stockpinghq/stockping-backend/pkg/enums"
)

// Repository handles threshold persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to threshold operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CountEnabledByUser returns how many thresholds the user has enabled.
func (r *Repository) CountEnabledByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Threshold{}).
		Where("user_id = ? AND enabled", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListEnabledByUser returns the user's enabled thresholds oldest first; the
// plan allowance keeps the oldest ones active.
func (r *Repository) ListEnabledByUser(ctx context.Context, userID uuid.UUID) ([]models.Threshold, error) {
	var thresholds []models.Threshold
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND enabled", userID).
		Order("created_at ASC").
		Find(&thresholds).Error
	if err != nil {
		return nil, err
	}
	return thresholds, nil
}

// GetUserPlan resolves the billing plan of the tenant owning the user.
func (r *Repository) GetUserPlan(ctx context.Context, userID uuid.UUID) (enums.Plan, error) {
	var plan enums.Plan
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("tenants.plan").
		Joins("JOIN tenants ON tenants.id = users.tenant_id").
		Where("users.id = ?", userID).
		Scan(&plan).Error
	if err != nil {
		return "", err
	}
	if plan == "" {
		return "", gorm.ErrRecordNotFound
	}
	return plan, nil
}
