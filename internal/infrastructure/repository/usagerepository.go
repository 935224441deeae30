package repository

import (
	"context"

	"gorm.io/gorm"

	"marzhelp/internal/domain/quota"
	apperrors "marzhelp/internal/shared/errors"
)

// Minutes since last handshake within which a user counts as online.
const onlineWindowMinutes = 5

type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a UsageRepository over the panel database.
func NewUsageRepository(panelDB *gorm.DB) quota.UsageRepository {
	return &usageRepository{db: panelDB}
}

// UsedTrafficBytes totals traffic the tenant's users actually consumed:
// live counters, usage recorded before resets, and usage carried on
// deleted users.
func (r *usageRepository) UsedTrafficBytes(ctx context.Context, adminID uint) (int64, error) {
	query := `
		SELECT
			IFNULL((SELECT SUM(u.used_traffic) FROM users u WHERE u.admin_id = ?), 0) +
			IFNULL((SELECT SUM(l.used_traffic_at_reset) FROM user_usage_logs l
				WHERE l.user_id IN (SELECT id FROM users WHERE admin_id = ?)), 0) +
			IFNULL((SELECT SUM(d.used_traffic + d.reseted_usage) FROM user_deletions d
				WHERE d.admin_id = ?), 0) AS total`

	var total int64
	err := r.db.WithContext(ctx).Raw(query, adminID, adminID, adminID).Scan(&total).Error
	if err != nil {
		return 0, apperrors.NewUnavailableError("failed to sum used traffic", err.Error())
	}
	return total, nil
}

// CreatedTrafficBytes totals traffic the tenant allocated: each user's
// data limit, or their consumption when no limit is set, plus reset and
// deletion bookkeeping.
func (r *usageRepository) CreatedTrafficBytes(ctx context.Context, adminID uint) (int64, error) {
	query := `
		SELECT
			IFNULL((SELECT SUM(IFNULL(u.data_limit, u.used_traffic)) FROM users u
				WHERE u.admin_id = ?), 0) +
			IFNULL((SELECT SUM(l.used_traffic_at_reset) FROM user_usage_logs l
				WHERE l.user_id IN (SELECT id FROM users WHERE admin_id = ?)), 0) +
			IFNULL((SELECT SUM(d.reseted_usage) FROM user_deletions d
				WHERE d.admin_id = ?), 0) AS total`

	var total int64
	err := r.db.WithContext(ctx).Raw(query, adminID, adminID, adminID).Scan(&total).Error
	if err != nil {
		return 0, apperrors.NewUnavailableError("failed to sum created traffic", err.Error())
	}
	return total, nil
}

func (r *usageRepository) CountUsers(ctx context.Context, adminID uint) (quota.UserCounts, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			IFNULL(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) AS active,
			IFNULL(SUM(CASE WHEN online_at IS NOT NULL
				AND TIMESTAMPDIFF(MINUTE, online_at, NOW()) <= ? THEN 1 ELSE 0 END), 0) AS online,
			IFNULL(SUM(CASE WHEN status = 'expired' THEN 1 ELSE 0 END), 0) AS expired,
			IFNULL(SUM(CASE WHEN status = 'limited' THEN 1 ELSE 0 END), 0) AS limited
		FROM users
		WHERE admin_id = ?`

	var row struct {
		Total   int
		Active  int
		Online  int
		Expired int
		Limited int
	}
	err := r.db.WithContext(ctx).Raw(query, onlineWindowMinutes, adminID).Scan(&row).Error
	if err != nil {
		return quota.UserCounts{}, apperrors.NewUnavailableError("failed to count users", err.Error())
	}
	return quota.UserCounts{
		Total:   row.Total,
		Active:  row.Active,
		Online:  row.Online,
		Expired: row.Expired,
		Limited: row.Limited,
	}, nil
}
