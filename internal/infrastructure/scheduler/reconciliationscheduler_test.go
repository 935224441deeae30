package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"marzhelp/internal/shared/logger"
)

type countingReconciler struct {
	ticks    atomic.Int32
	archives atomic.Int32
	warnings atomic.Int32
}

func (r *countingReconciler) RunTick(_ context.Context) error {
	r.ticks.Add(1)
	return nil
}

func (r *countingReconciler) ArchiveUsage(_ context.Context) error {
	r.archives.Add(1)
	return nil
}

func (r *countingReconciler) SendCapacityWarnings(_ context.Context) error {
	r.warnings.Add(1)
	return nil
}

func TestDue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		last  time.Time
		every time.Duration
		want  bool
	}{
		{"never ran", time.Time{}, 15 * time.Minute, true},
		{"interval elapsed", now.Add(-20 * time.Minute), 15 * time.Minute, true},
		{"exactly at interval", now.Add(-15 * time.Minute), 15 * time.Minute, true},
		{"interval not elapsed", now.Add(-5 * time.Minute), 15 * time.Minute, false},
		{"disabled interval", time.Time{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := due(tt.last, now, tt.every); got != tt.want {
				t.Errorf("due() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSchedulerRunsImmediatelyAndStops(t *testing.T) {
	r := &countingReconciler{}
	s := NewReconciliationScheduler(r, time.Hour, time.Hour, time.Hour, logger.NewLogger())

	s.Start()
	// The first pass runs at startup, before any ticker fires; the slow
	// jobs are due immediately because they have never run.
	assert.Eventually(t, func() bool {
		return r.ticks.Load() == 1 && r.archives.Load() == 1 && r.warnings.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	s.Stop() // second Stop must be a no-op

	assert.Equal(t, int32(1), r.ticks.Load())
}
