package models

import (
	"time"

	"gorm.io/datatypes"
)

// AdminSettingsModel maps a tenant's quota configuration row in the bot
// database. Status is stored as a single JSON document.
type AdminSettingsModel struct {
	AdminID                 uint           `gorm:"column:admin_id;primaryKey"`
	TotalTraffic            *int64         `gorm:"column:total_traffic"`
	ExpiryDate              *time.Time     `gorm:"column:expiry_date"`
	Status                  datatypes.JSON `gorm:"column:status"`
	UserLimit               *int           `gorm:"column:user_limit"`
	CalculateVolume         string         `gorm:"column:calculate_volume;default:used_traffic"`
	LastTrafficNotification *int           `gorm:"column:last_traffic_notification"`
	LastExpiryNotification  *time.Time     `gorm:"column:last_expiry_notification"`
}

// TableName returns the table name for AdminSettingsModel
func (AdminSettingsModel) TableName() string {
	return "admin_settings"
}
