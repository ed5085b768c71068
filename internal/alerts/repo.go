package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockpinghq/stockping-backend/pkg/db/models"
	"github.com/stockpinghq/stockping-backend/pkg/enums"
)

// Repository handles alert persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to alert operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetPendingByTenant returns every pending alert for the tenant, oldest
// first so digests read chronologically.
func (r *Repository) GetPendingByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, enums.AlertStatusPending).
		Order("created_at ASC").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// MarkAsSent flips the given alerts to sent in one batched write. Only rows
// still pending are touched, so re-marking after a partial failure is
// idempotent.
func (r *Repository) MarkAsSent(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("id IN ? AND status = ?", ids, enums.AlertStatusPending).
		Updates(map[string]any{
			"status":  enums.AlertStatusSent,
			"sent_at": time.Now().UTC(),
		}).Error
}

// DeleteSentOlderThan removes delivered alerts past the retention window.
func (r *Repository) DeleteSentOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	result := conn.WithContext(ctx).
		Where("status = ? AND sent_at < ?", enums.AlertStatusSent, cutoff).
		Delete(&models.Alert{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
