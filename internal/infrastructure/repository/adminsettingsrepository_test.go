package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"marzhelp/internal/domain/quota"
	"marzhelp/internal/infrastructure/persistence/models"
	apperrors "marzhelp/internal/shared/errors"
)

// setupTestDB opens the bot test database named by MARZHELP_TEST_BOT_DSN.
// The tests are skipped when no database is configured.
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := os.Getenv("MARZHELP_TEST_BOT_DSN")
	if dsn == "" {
		t.Skip("MARZHELP_TEST_BOT_DSN not set, skipping integration test")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.AdminSettingsModel{}, &models.AdminUsageModel{}))

	t.Cleanup(func() {
		db.Exec("DELETE FROM admin_settings")
		db.Exec("DELETE FROM admin_usage")
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func seedSettings(t *testing.T, db *gorm.DB, row *models.AdminSettingsModel) {
	require.NoError(t, db.Create(row).Error)
}

func TestAdminSettingsRepositoryFindByAdminID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminSettingsRepository(db)
	ctx := context.Background()

	total := int64(107374182400)
	limit := 10
	seedSettings(t, db, &models.AdminSettingsModel{
		AdminID:         1,
		TotalTraffic:    &total,
		UserLimit:       &limit,
		CalculateVolume: "used_traffic",
		Status:          []byte(`{"time":"active","data":"active","users":"active"}`),
	})

	settings, err := repo.FindByAdminID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), settings.AdminID())
	assert.Equal(t, quota.ModeUsed, settings.Mode())
	require.NotNil(t, settings.TotalTraffic())
	assert.Equal(t, quota.GBValue(100), *settings.TotalTraffic())
	assert.Equal(t, quota.DefaultStatus(), settings.Status())
}

func TestAdminSettingsRepositoryNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminSettingsRepository(db)

	_, err := repo.FindByAdminID(context.Background(), 999)
	assert.True(t, apperrors.IsNotFoundError(err), "expected not found, got %v", err)
}

func TestAdminSettingsRepositoryCorruptStatusDefaultsToActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminSettingsRepository(db)

	seedSettings(t, db, &models.AdminSettingsModel{
		AdminID:         2,
		CalculateVolume: "used_traffic",
		Status:          []byte(`"not an object"`),
	})

	settings, err := repo.FindByAdminID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, quota.DefaultStatus(), settings.Status())
}

func TestAdminSettingsRepositoryUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminSettingsRepository(db)
	ctx := context.Background()

	seedSettings(t, db, &models.AdminSettingsModel{
		AdminID:         3,
		CalculateVolume: "used_traffic",
	})

	status := quota.Status{Time: quota.StateExpired, Data: quota.StateActive, Users: quota.StateActive}
	require.NoError(t, repo.UpdateStatus(ctx, 3, status))

	settings, err := repo.FindByAdminID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, status, settings.Status())

	err = repo.UpdateStatus(ctx, 999, status)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestAdminSettingsRepositoryCursorUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminSettingsRepository(db)
	ctx := context.Background()

	seedSettings(t, db, &models.AdminSettingsModel{
		AdminID:         4,
		CalculateVolume: "created_traffic",
	})

	threshold := 200
	require.NoError(t, repo.UpdateTrafficWarningCursor(ctx, 4, &threshold))
	sentAt := time.Now().Truncate(time.Second)
	require.NoError(t, repo.UpdateExpiryWarningTimestamp(ctx, 4, &sentAt))

	settings, err := repo.FindByAdminID(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, settings.TrafficWarningCursor())
	assert.Equal(t, 200, *settings.TrafficWarningCursor())
	require.NotNil(t, settings.ExpiryWarningTimestamp())
	assert.WithinDuration(t, sentAt, *settings.ExpiryWarningTimestamp(), time.Second)

	// Clearing both cursors resets the ladders.
	require.NoError(t, repo.UpdateTrafficWarningCursor(ctx, 4, nil))
	require.NoError(t, repo.UpdateExpiryWarningTimestamp(ctx, 4, nil))

	settings, err = repo.FindByAdminID(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, settings.TrafficWarningCursor())
	assert.Nil(t, settings.ExpiryWarningTimestamp())
}

func TestAdminUsageRepositoryAppend(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminUsageRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, 5, quota.GBValue(12.34), time.Now()))
	require.NoError(t, repo.Append(ctx, 5, quota.GBValue(13.57), time.Now()))

	var count int64
	require.NoError(t, db.Model(&models.AdminUsageModel{}).Where("admin_id = ?", 5).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
