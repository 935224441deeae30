package quota

import (
	"fmt"

	"marzhelp/internal/shared/errors"
)

// NewSettingsNotFoundError reports a tenant with no quota configuration.
func NewSettingsNotFoundError(adminID uint) *errors.AppError {
	return errors.NewNotFoundError("settings not found", fmt.Sprintf("admin_id: %d", adminID))
}

// NewAdminNotFoundError reports an unknown panel administrator.
func NewAdminNotFoundError(id uint) *errors.AppError {
	return errors.NewNotFoundError("admin not found", fmt.Sprintf("id: %d", id))
}
