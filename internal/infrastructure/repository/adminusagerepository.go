package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marzhelp/internal/domain/quota"
	"marzhelp/internal/infrastructure/persistence/models"
	apperrors "marzhelp/internal/shared/errors"
)

type adminUsageRepository struct {
	db *gorm.DB
}

// NewAdminUsageRepository creates a UsageArchiveRepository over the bot
// database.
func NewAdminUsageRepository(botDB *gorm.DB) quota.UsageArchiveRepository {
	return &adminUsageRepository{db: botDB}
}

func (r *adminUsageRepository) Append(ctx context.Context, adminID uint, usedTraffic quota.GBValue, at time.Time) error {
	row := models.AdminUsageModel{
		AdminID:       adminID,
		UsedTrafficGB: usedTraffic.Float64(),
		CreatedAt:     at,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return apperrors.NewUnavailableError("failed to append usage sample", err.Error())
	}
	return nil
}
