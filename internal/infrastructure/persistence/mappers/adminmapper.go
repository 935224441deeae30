package mappers

import (
	"marzhelp/internal/domain/quota"
	"marzhelp/internal/infrastructure/persistence/models"
)

// AdminMapper converts panel administrator rows to domain entities.
type AdminMapper struct{}

// NewAdminMapper creates a new AdminMapper
func NewAdminMapper() *AdminMapper {
	return &AdminMapper{}
}

// ToDomain converts a storage model to a domain entity.
func (m *AdminMapper) ToDomain(model *models.AdminModel) *quota.Admin {
	return quota.ReconstructAdmin(model.ID, model.Username, model.TelegramID)
}

// ToDomainList converts a slice of storage models.
func (m *AdminMapper) ToDomainList(list []*models.AdminModel) []*quota.Admin {
	admins := make([]*quota.Admin, 0, len(list))
	for _, model := range list {
		admins = append(admins, m.ToDomain(model))
	}
	return admins
}
