package quota

import "time"

// Traffic warning thresholds in gigabytes remaining, highest first.
// Each threshold owns the band reaching 100 GB down from it.
var TrafficWarningThresholds = []int{300, 200, 100}

// Expiry warning thresholds in days remaining, furthest first.
var ExpiryWarningDays = []int{7, 3, 1}

// NextTrafficWarning decides whether a tenant's remaining traffic has
// crossed into a new warning band. The cursor is the last threshold
// notified; a warning fires at most once per threshold until the tenant
// climbs back above the top threshold, which resets the ladder.
//
// Returns the threshold to notify and fire=true when a warning is due,
// or reset=true when the cursor should be cleared. Both false means no
// change this pass.
func NextTrafficWarning(remaining GBValue, cursor *int) (threshold int, fire bool, reset bool) {
	r := remaining.Float64()
	top := float64(TrafficWarningThresholds[0])
	if r > top {
		return 0, false, cursor != nil
	}
	for _, t := range TrafficWarningThresholds {
		lo := float64(t - 100)
		if r <= float64(t) && r > lo {
			if cursor == nil || *cursor != t {
				return t, true, false
			}
			return 0, false, false
		}
	}
	return 0, false, false
}

// Expiry re-warn spacing: a 3-day warning repeats only if the last one
// went out more than four days ago, a 1-day warning only after more
// than two days. The 7-day warning never repeats within one countdown.
const (
	expiryRewarnAfter3Day = 4 * 24 * time.Hour
	expiryRewarnAfter1Day = 2 * 24 * time.Hour
)

// NextExpiryWarning decides whether an expiry countdown warning is due.
// lastSent is when the previous warning for this countdown went out;
// the ladder resets once the tenant is renewed past the 7-day mark.
func NextExpiryWarning(daysLeft int, lastSent *time.Time, now time.Time) (days int, fire bool, reset bool) {
	if daysLeft > ExpiryWarningDays[0] {
		return 0, false, lastSent != nil
	}
	if daysLeft <= 0 {
		return 0, false, false
	}
	switch {
	case daysLeft > 3:
		if lastSent == nil {
			return 7, true, false
		}
	case daysLeft > 1:
		if lastSent == nil || lastSent.Before(now.Add(-expiryRewarnAfter3Day)) {
			return 3, true, false
		}
	default:
		if lastSent == nil || lastSent.Before(now.Add(-expiryRewarnAfter1Day)) {
			return 1, true, false
		}
	}
	return 0, false, false
}
