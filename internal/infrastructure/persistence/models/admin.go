package models

// AdminModel maps a panel administrator row. The panel owns this table;
// the worker never writes to it.
type AdminModel struct {
	ID         uint   `gorm:"column:id;primaryKey"`
	Username   string `gorm:"column:username"`
	TelegramID *int64 `gorm:"column:telegram_id"`
}

// TableName returns the table name for AdminModel
func (AdminModel) TableName() string {
	return "admins"
}
