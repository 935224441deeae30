package quota

import "time"

// UsageSnapshot is the per-tenant picture assembled at the start of a
// reconciliation pass. Every downstream decision in the same pass reads
// from this snapshot so the tenant is judged against one consistent view.
type UsageSnapshot struct {
	AdminID      uint
	UsedTraffic  GBValue
	TotalUsers   int
	ActiveUsers  int
	OnlineUsers  int
	ExpiredUsers int
	LimitedUsers int
	TakenAt      time.Time
}

// Remaining returns the traffic left against the given total. The result
// is rounded once, like every other gigabyte figure.
func (s UsageSnapshot) Remaining(total GBValue) GBValue {
	return RoundGB(total.Float64() - s.UsedTraffic.Float64())
}
