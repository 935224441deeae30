package quota

import (
	"math"
	"time"

	"marzhelp/internal/shared/errors"
)

// AccountingMode selects how a tenant's consumed traffic is measured.
type AccountingMode string

const (
	// ModeUsed counts traffic actually consumed by the tenant's users,
	// including usage recorded before resets and on deleted users.
	ModeUsed AccountingMode = "used_traffic"
	// ModeCreated counts traffic allocated to the tenant's users: each
	// user's data limit, or their consumption when no limit is set.
	ModeCreated AccountingMode = "created_traffic"
)

// Settings is a tenant's quota configuration together with the
// notification cursors the reconciliation loop maintains. A nil total
// traffic, expiry date, or user limit means that axis is unlimited.
type Settings struct {
	adminID                uint
	totalTrafficBytes      *int64
	expiryDate             *time.Time
	userLimit              *int
	mode                   AccountingMode
	status                 Status
	trafficWarningCursor   *int
	expiryWarningTimestamp *time.Time
}

// ReconstructSettings rebuilds a Settings entity from persisted state.
func ReconstructSettings(
	adminID uint,
	totalTrafficBytes *int64,
	expiryDate *time.Time,
	userLimit *int,
	mode AccountingMode,
	status Status,
	trafficWarningCursor *int,
	expiryWarningTimestamp *time.Time,
) (*Settings, error) {
	if adminID == 0 {
		return nil, errors.NewValidationError("admin id is required")
	}
	if mode != ModeUsed && mode != ModeCreated {
		mode = ModeUsed
	}
	return &Settings{
		adminID:                adminID,
		totalTrafficBytes:      totalTrafficBytes,
		expiryDate:             expiryDate,
		userLimit:              userLimit,
		mode:                   mode,
		status:                 status,
		trafficWarningCursor:   trafficWarningCursor,
		expiryWarningTimestamp: expiryWarningTimestamp,
	}, nil
}

func (s *Settings) AdminID() uint          { return s.adminID }
func (s *Settings) Mode() AccountingMode   { return s.mode }
func (s *Settings) Status() Status         { return s.status }
func (s *Settings) UserLimit() *int        { return s.userLimit }
func (s *Settings) ExpiryDate() *time.Time { return s.expiryDate }

// TotalTraffic returns the tenant's traffic allowance in gigabytes, or
// nil when the allowance is unlimited.
func (s *Settings) TotalTraffic() *GBValue {
	if s.totalTrafficBytes == nil {
		return nil
	}
	v := GBFromBytes(*s.totalTrafficBytes)
	return &v
}

// TotalTrafficBytes returns the raw allowance in bytes, or nil when
// unlimited.
func (s *Settings) TotalTrafficBytes() *int64 {
	return s.totalTrafficBytes
}

// DaysLeft returns the whole days remaining until expiry, rounding any
// partial day up, or nil when the tenant never expires. A past expiry
// yields zero or a negative count.
func (s *Settings) DaysLeft(now time.Time) *int {
	if s.expiryDate == nil {
		return nil
	}
	secs := s.expiryDate.Sub(now).Seconds()
	d := int(math.Ceil(secs / 86400))
	return &d
}

// IsExpired reports whether the tenant's time allowance has run out.
func (s *Settings) IsExpired(now time.Time) bool {
	d := s.DaysLeft(now)
	return d != nil && *d <= 0
}

func (s *Settings) TrafficWarningCursor() *int         { return s.trafficWarningCursor }
func (s *Settings) ExpiryWarningTimestamp() *time.Time { return s.expiryWarningTimestamp }

// SetStatus replaces the stored status document.
func (s *Settings) SetStatus(status Status) {
	s.status = status
}

// SetTrafficWarningCursor records the last traffic threshold notified,
// or clears it when nil.
func (s *Settings) SetTrafficWarningCursor(threshold *int) {
	s.trafficWarningCursor = threshold
}

// SetExpiryWarningTimestamp records when the last expiry warning was
// sent, or clears it when nil.
func (s *Settings) SetExpiryWarningTimestamp(at *time.Time) {
	s.expiryWarningTimestamp = at
}
