package models

import "time"

// AdminUsageModel maps one archived usage sample in the bot database.
type AdminUsageModel struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement"`
	AdminID       uint      `gorm:"column:admin_id;index"`
	UsedTrafficGB float64   `gorm:"column:used_traffic_gb;type:decimal(10,2)"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

// TableName returns the table name for AdminUsageModel
func (AdminUsageModel) TableName() string {
	return "admin_usage"
}
