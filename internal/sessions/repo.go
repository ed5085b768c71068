package sessions

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/stockpinghq/stockping-backend/pkg/db/models"
)

// Repository handles session persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to session operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DeleteExpired removes sessions whose expiry has passed.
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
