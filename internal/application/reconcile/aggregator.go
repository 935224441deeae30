package reconcile

import (
	"context"
	"time"

	"marzhelp/internal/domain/quota"
)

// Aggregator assembles the per-tenant usage snapshot from the panel
// database.
type Aggregator struct {
	usage quota.UsageRepository
}

// NewAggregator creates an Aggregator over a usage repository.
func NewAggregator(usage quota.UsageRepository) *Aggregator {
	return &Aggregator{usage: usage}
}

// BuildSnapshot reads all figures for one tenant in a single pass. The
// traffic source follows the tenant's accounting mode; byte totals are
// converted to gigabytes here and nowhere else.
func (a *Aggregator) BuildSnapshot(ctx context.Context, adminID uint, mode quota.AccountingMode, now time.Time) (quota.UsageSnapshot, error) {
	var trafficBytes int64
	var err error
	if mode == quota.ModeCreated {
		trafficBytes, err = a.usage.CreatedTrafficBytes(ctx, adminID)
	} else {
		trafficBytes, err = a.usage.UsedTrafficBytes(ctx, adminID)
	}
	if err != nil {
		return quota.UsageSnapshot{}, err
	}

	counts, err := a.usage.CountUsers(ctx, adminID)
	if err != nil {
		return quota.UsageSnapshot{}, err
	}

	return quota.UsageSnapshot{
		AdminID:      adminID,
		UsedTraffic:  quota.GBFromBytes(trafficBytes),
		TotalUsers:   counts.Total,
		ActiveUsers:  counts.Active,
		OnlineUsers:  counts.Online,
		ExpiredUsers: counts.Expired,
		LimitedUsers: counts.Limited,
		TakenAt:      now,
	}, nil
}
