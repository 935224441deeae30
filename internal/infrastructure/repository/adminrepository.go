package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marzhelp/internal/domain/quota"
	"marzhelp/internal/infrastructure/persistence/mappers"
	"marzhelp/internal/infrastructure/persistence/models"
	apperrors "marzhelp/internal/shared/errors"
)

type adminRepository struct {
	db     *gorm.DB
	mapper *mappers.AdminMapper
}

// NewAdminRepository creates an AdminRepository over the panel database.
func NewAdminRepository(panelDB *gorm.DB) quota.AdminRepository {
	return &adminRepository{
		db:     panelDB,
		mapper: mappers.NewAdminMapper(),
	}
}

func (r *adminRepository) List(ctx context.Context) ([]*quota.Admin, error) {
	var rows []*models.AdminModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, apperrors.NewUnavailableError("failed to list admins", err.Error())
	}
	return r.mapper.ToDomainList(rows), nil
}

func (r *adminRepository) FindByID(ctx context.Context, id uint) (*quota.Admin, error) {
	var row models.AdminModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, quota.NewAdminNotFoundError(id)
		}
		return nil, apperrors.NewUnavailableError("failed to find admin", err.Error())
	}
	return r.mapper.ToDomain(&row), nil
}
