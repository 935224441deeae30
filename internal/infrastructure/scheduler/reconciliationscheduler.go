// Package scheduler drives the periodic reconciliation work.
package scheduler

import (
	"context"
	"sync"
	"time"

	"marzhelp/internal/shared/logger"
)

// Reconciler is the work a scheduler tick can trigger.
type Reconciler interface {
	RunTick(ctx context.Context) error
	SendCapacityWarnings(ctx context.Context) error
	ArchiveUsage(ctx context.Context) error
}

// ReconciliationScheduler runs the reconciliation pass on every tick
// and folds the slower jobs into the same loop: usage archiving and
// capacity warnings run whenever their interval has elapsed since the
// last run, measured by the scheduler itself. A single worker goroutine
// executes everything, so passes never overlap.
type ReconciliationScheduler struct {
	reconciler       Reconciler
	tickInterval     time.Duration
	archiveInterval  time.Duration
	capacityInterval time.Duration

	lastArchive  time.Time
	lastCapacity time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   logger.Interface
}

// NewReconciliationScheduler creates a scheduler over the given
// reconciler and intervals.
func NewReconciliationScheduler(
	reconciler Reconciler,
	tickInterval, archiveInterval, capacityInterval time.Duration,
	log logger.Interface,
) *ReconciliationScheduler {
	return &ReconciliationScheduler{
		reconciler:       reconciler,
		tickInterval:     tickInterval,
		archiveInterval:  archiveInterval,
		capacityInterval: capacityInterval,
		stopChan:         make(chan struct{}),
		logger:           log,
	}
}

// Start launches the scheduler loop. The first pass runs immediately.
func (s *ReconciliationScheduler) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Infow("reconciliation scheduler started",
		"tick_interval", s.tickInterval,
		"archive_interval", s.archiveInterval,
		"capacity_interval", s.capacityInterval)
}

// Stop shuts the scheduler down and waits for an in-flight pass to
// finish.
func (s *ReconciliationScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	s.logger.Infow("reconciliation scheduler stopped")
}

func (s *ReconciliationScheduler) run() {
	defer s.wg.Done()

	s.runPass()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runPass()
		case <-s.stopChan:
			return
		}
	}
}

func (s *ReconciliationScheduler) runPass() {
	ctx, cancel := context.WithTimeout(context.Background(), s.tickInterval)
	defer cancel()

	if err := s.reconciler.RunTick(ctx); err != nil {
		s.logger.Errorw("reconciliation pass failed", "error", err)
	}

	now := time.Now()
	if due(s.lastArchive, now, s.archiveInterval) {
		if err := s.reconciler.ArchiveUsage(ctx); err != nil {
			s.logger.Errorw("usage archive failed", "error", err)
		} else {
			s.lastArchive = now
		}
	}
	if due(s.lastCapacity, now, s.capacityInterval) {
		if err := s.reconciler.SendCapacityWarnings(ctx); err != nil {
			s.logger.Errorw("capacity warnings failed", "error", err)
		} else {
			s.lastCapacity = now
		}
	}
}

// due reports whether a slow job should run this pass. A zero last-run
// time means the job has not run since startup and is due immediately.
func due(last, now time.Time, every time.Duration) bool {
	if every <= 0 {
		return false
	}
	return last.IsZero() || now.Sub(last) >= every
}
