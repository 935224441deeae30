package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"marzhelp/internal/domain/quota"
	"marzhelp/internal/infrastructure/persistence/mappers"
	"marzhelp/internal/infrastructure/persistence/models"
	apperrors "marzhelp/internal/shared/errors"
)

type adminSettingsRepository struct {
	db     *gorm.DB
	mapper *mappers.AdminSettingsMapper
}

// NewAdminSettingsRepository creates a SettingsRepository over the bot
// database.
func NewAdminSettingsRepository(botDB *gorm.DB) quota.SettingsRepository {
	return &adminSettingsRepository{
		db:     botDB,
		mapper: mappers.NewAdminSettingsMapper(),
	}
}

func (r *adminSettingsRepository) FindByAdminID(ctx context.Context, adminID uint) (*quota.Settings, error) {
	var row models.AdminSettingsModel
	err := r.db.WithContext(ctx).Where("admin_id = ?", adminID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, quota.NewSettingsNotFoundError(adminID)
		}
		return nil, apperrors.NewUnavailableError("failed to find admin settings", err.Error())
	}
	return r.mapper.ToDomain(&row)
}

// UpdateStatus writes the status document back as one unit. Partial
// per-dimension writes are never issued.
func (r *adminSettingsRepository) UpdateStatus(ctx context.Context, adminID uint, status quota.Status) error {
	result := r.db.WithContext(ctx).
		Model(&models.AdminSettingsModel{}).
		Where("admin_id = ?", adminID).
		Update("status", datatypes.JSON(status.Marshal()))
	if result.Error != nil {
		return apperrors.NewUnavailableError("failed to update status", result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return quota.NewSettingsNotFoundError(adminID)
	}
	return nil
}

func (r *adminSettingsRepository) UpdateTrafficWarningCursor(ctx context.Context, adminID uint, threshold *int) error {
	err := r.db.WithContext(ctx).
		Model(&models.AdminSettingsModel{}).
		Where("admin_id = ?", adminID).
		Update("last_traffic_notification", threshold).Error
	if err != nil {
		return apperrors.NewUnavailableError("failed to update traffic warning cursor", err.Error())
	}
	return nil
}

func (r *adminSettingsRepository) UpdateExpiryWarningTimestamp(ctx context.Context, adminID uint, at *time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.AdminSettingsModel{}).
		Where("admin_id = ?", adminID).
		Update("last_expiry_notification", at).Error
	if err != nil {
		return apperrors.NewUnavailableError("failed to update expiry warning timestamp", err.Error())
	}
	return nil
}
