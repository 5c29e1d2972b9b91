package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"mail-assistant-go/internal/service"
)

// Resetter restores the mailbox to its seed content
type Resetter interface {
	ResetToSeed(ctx context.Context, trigger string) error
}

// Scheduler periodically resets the mailbox
type Scheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	spec      string
	resetter  Resetter
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
	mu        sync.RWMutex
}

// NewScheduler creates a scheduler for a cron spec with seconds
func NewScheduler(spec string, resetter Resetter) *Scheduler {
	return &Scheduler{
		spec:     spec,
		resetter: resetter,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	c := cron.New(cron.WithSeconds())
	entryID, err := c.AddFunc(s.spec, s.resetMailbox)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = c
	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Reset scheduler started with schedule: %s", s.spec)
	return nil
}

// Stop stops the scheduler and waits for a running reset to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	c := s.cron
	s.mu.Unlock()

	// jobs take the read lock, so wait without holding it.
	// The returned context is done once running resets finish.
	ctx := c.Stop()

	select {
	case <-ctx.Done():
		logrus.Info("Reset scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Reset scheduler stop timeout, forcing shutdown")
	}

	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Scheduler) resetMailbox() {
	s.mu.RLock()
	if !s.isRunning {
		s.mu.RUnlock()
		logrus.Info("Reset scheduler not running, skipping reset")
		return
	}
	ctx := s.ctx
	s.mu.RUnlock()

	if err := s.resetter.ResetToSeed(ctx, service.TriggerSchedule); err != nil {
		logrus.Errorf("Scheduled reset failed: %v", err)
	}
}

// RunOnce resets the mailbox immediately
func (s *Scheduler) RunOnce(ctx context.Context) error {
	logrus.Info("Running mailbox reset once")
	return s.resetter.ResetToSeed(ctx, service.TriggerSchedule)
}

// GetNextRun returns the time of the next scheduled reset
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}
