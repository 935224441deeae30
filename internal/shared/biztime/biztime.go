// Package biztime centralizes the business timezone used for day-granular
// calculations such as expiry countdowns and the daily capacity-warning slot.
package biztime

import (
	"sync"
	"time"
)

const defaultTimezone = "Asia/Tehran"

var (
	mu       sync.RWMutex
	location = mustLoad(defaultTimezone)
)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SetTimezone overrides the business timezone. Invalid names are ignored
// so a bad config value cannot take the worker down mid-flight.
func SetTimezone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	mu.Lock()
	location = loc
	mu.Unlock()
	return nil
}

// Location returns the configured business timezone.
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return location
}

// Now returns the current time in the business timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// StartOfDay truncates t to midnight in the business timezone.
func StartOfDay(t time.Time) time.Time {
	t = t.In(Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
