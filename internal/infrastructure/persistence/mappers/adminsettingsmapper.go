package mappers

import (
	"marzhelp/internal/domain/quota"
	"marzhelp/internal/infrastructure/persistence/models"
)

// AdminSettingsMapper converts between the settings storage model and
// the domain entity.
type AdminSettingsMapper struct{}

// NewAdminSettingsMapper creates a new AdminSettingsMapper
func NewAdminSettingsMapper() *AdminSettingsMapper {
	return &AdminSettingsMapper{}
}

// ToDomain converts a storage model to a domain entity.
func (m *AdminSettingsMapper) ToDomain(model *models.AdminSettingsModel) (*quota.Settings, error) {
	status := quota.ParseStatus(model.Status)
	return quota.ReconstructSettings(
		model.AdminID,
		model.TotalTraffic,
		model.ExpiryDate,
		model.UserLimit,
		quota.AccountingMode(model.CalculateVolume),
		status,
		model.LastTrafficNotification,
		model.LastExpiryNotification,
	)
}
