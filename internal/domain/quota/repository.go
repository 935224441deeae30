package quota

import (
	"context"
	"time"

	"marzhelp/internal/shared/utils/setutil"
)

// UserCounts summarizes a tenant's users as read from the panel database.
type UserCounts struct {
	Total   int
	Active  int
	Online  int
	Expired int
	Limited int
}

// AdminRepository reads panel administrators.
type AdminRepository interface {
	List(ctx context.Context) ([]*Admin, error)
	FindByID(ctx context.Context, id uint) (*Admin, error)
}

// SettingsRepository persists tenant quota settings and the
// notification cursors. FindByAdminID returns a not-found error for
// tenants that were never configured; callers skip those tenants.
type SettingsRepository interface {
	FindByAdminID(ctx context.Context, adminID uint) (*Settings, error)
	UpdateStatus(ctx context.Context, adminID uint, status Status) error
	UpdateTrafficWarningCursor(ctx context.Context, adminID uint, threshold *int) error
	UpdateExpiryWarningTimestamp(ctx context.Context, adminID uint, at *time.Time) error
}

// UsageRepository aggregates consumption figures from the panel
// database. Both traffic queries return bytes; conversion to gigabytes
// happens exactly once, in the aggregator.
type UsageRepository interface {
	UsedTrafficBytes(ctx context.Context, adminID uint) (int64, error)
	CreatedTrafficBytes(ctx context.Context, adminID uint) (int64, error)
	CountUsers(ctx context.Context, adminID uint) (UserCounts, error)
}

// UsageArchiveRepository appends point-in-time usage samples for
// historical charting.
type UsageArchiveRepository interface {
	Append(ctx context.Context, adminID uint, usedTraffic GBValue, at time.Time) error
}

// RuleStore installs enforcement rules in the panel database and reads
// back current membership. Apply is idempotent: applying the same rule
// twice leaves the store unchanged.
type RuleStore interface {
	Members(ctx context.Context, kind PolicyKind) (*setutil.UintSet, error)
	Apply(ctx context.Context, rule PolicyRule) error
}

// SnapshotCache keeps the latest usage snapshot per tenant for cheap
// reads outside the reconciliation loop. Best effort; failures are
// logged and never fail a pass.
type SnapshotCache interface {
	Put(ctx context.Context, snapshot UsageSnapshot) error
	Get(ctx context.Context, adminID uint) (*UsageSnapshot, error)
}
