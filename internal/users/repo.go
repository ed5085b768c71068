package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockpinghq/stockping-backend/pkg/db/models"
	"github.com/stockpinghq/stockping-backend/pkg/enums"
)

// Repository handles user persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to user operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetWithDigestEnabled returns the tenant's users subscribed to digests at
// the given cadence.
func (r *Repository) GetWithDigestEnabled(ctx context.Context, tenantID uuid.UUID, frequency enums.DigestFrequency) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND digest_frequency = ? AND notification_enabled", tenantID, frequency).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindByID loads a user by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
