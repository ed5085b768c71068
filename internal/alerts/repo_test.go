package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockpinghq/stockping-backend/pkg/db/models"
	"github.com/stockpinghq/stockping-backend/pkg/enums"
)

func setupAlertsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS alerts (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  bsale_variant_id INTEGER NOT NULL,
  bsale_office_id INTEGER NOT NULL,
  sku TEXT,
  product_name TEXT,
  alert_type TEXT NOT NULL,
  current_quantity INTEGER NOT NULL,
  threshold_quantity INTEGER,
  days_to_stockout NUMERIC,
  status TEXT NOT NULL DEFAULT 'pending',
  sent_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM alerts").Error)
	return db
}

func seedAlert(t *testing.T, db *gorm.DB, tenantID uuid.UUID, status enums.AlertStatus, createdAt time.Time) models.Alert {
	t.Helper()
	alert := models.Alert{
		ID:              uuid.New(),
		TenantID:        tenantID,
		UserID:          uuid.New(),
		BsaleVariantID:  100,
		BsaleOfficeID:   1,
		AlertType:       enums.AlertTypeLowStock,
		CurrentQuantity: 2,
		Status:          status,
		CreatedAt:       createdAt,
	}
	if status == enums.AlertStatusSent {
		sentAt := createdAt.Add(time.Hour)
		alert.SentAt = &sentAt
	}
	require.NoError(t, db.Create(&alert).Error)
	return alert
}

func TestGetPendingByTenantReturnsOldestFirst(t *testing.T) {
	db := setupAlertsTestDB(t)
	repo := NewRepository(db)
	tenantID := uuid.New()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	newer := seedAlert(t, db, tenantID, enums.AlertStatusPending, base.Add(2*time.Hour))
	older := seedAlert(t, db, tenantID, enums.AlertStatusPending, base)
	seedAlert(t, db, tenantID, enums.AlertStatusSent, base)
	seedAlert(t, db, uuid.New(), enums.AlertStatusPending, base)

	pending, err := repo.GetPendingByTenant(context.Background(), tenantID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, older.ID, pending[0].ID)
	assert.Equal(t, newer.ID, pending[1].ID)
}

func TestMarkAsSentFlipsOnlyPendingAlerts(t *testing.T) {
	db := setupAlertsTestDB(t)
	repo := NewRepository(db)
	tenantID := uuid.New()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	pending := seedAlert(t, db, tenantID, enums.AlertStatusPending, base)
	alreadySent := seedAlert(t, db, tenantID, enums.AlertStatusSent, base)
	originalSentAt := *alreadySent.SentAt

	err := repo.MarkAsSent(context.Background(), []uuid.UUID{pending.ID, alreadySent.ID})
	require.NoError(t, err)

	var reloaded models.Alert
	require.NoError(t, db.First(&reloaded, "id = ?", pending.ID).Error)
	assert.Equal(t, enums.AlertStatusSent, reloaded.Status)
	require.NotNil(t, reloaded.SentAt)

	reloaded = models.Alert{}
	require.NoError(t, db.First(&reloaded, "id = ?", alreadySent.ID).Error)
	require.NotNil(t, reloaded.SentAt)
	assert.WithinDuration(t, originalSentAt, *reloaded.SentAt, time.Second)
}

func TestMarkAsSentWithNoIDsIsNoOp(t *testing.T) {
	db := setupAlertsTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.MarkAsSent(context.Background(), nil))
}

func TestDeleteSentOlderThanKeepsPendingAndRecentRows(t *testing.T) {
	db := setupAlertsTestDB(t)
	repo := NewRepository(db)
	tenantID := uuid.New()
	cutoff := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	oldSent := seedAlert(t, db, tenantID, enums.AlertStatusSent, cutoff.Add(-40*24*time.Hour))
	recentSent := seedAlert(t, db, tenantID, enums.AlertStatusSent, cutoff.Add(24*time.Hour))
	oldPending := seedAlert(t, db, tenantID, enums.AlertStatusPending, cutoff.Add(-400*24*time.Hour))

	deleted, err := repo.DeleteSentOlderThan(context.Background(), nil, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var count int64
	require.NoError(t, db.Model(&models.Alert{}).Where("id = ?", oldSent.ID).Count(&count).Error)
	assert.Zero(t, count)

	for _, keep := range []uuid.UUID{recentSent.ID, oldPending.ID} {
		require.NoError(t, db.Model(&models.Alert{}).Where("id = ?", keep).Count(&count).Error)
		assert.Equal(t, int64(1), count, "row %s must survive", keep)
	}
}
