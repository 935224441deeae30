package quota

// Admin is a panel administrator, the tenant unit of reconciliation.
// The panel database owns this record; the worker only reads it.
type Admin struct {
	id         uint
	username   string
	telegramID *int64
}

// ReconstructAdmin rebuilds an Admin from a panel row.
func ReconstructAdmin(id uint, username string, telegramID *int64) *Admin {
	return &Admin{id: id, username: username, telegramID: telegramID}
}

func (a *Admin) ID() uint           { return a.id }
func (a *Admin) Username() string   { return a.username }
func (a *Admin) TelegramID() *int64 { return a.telegramID }
