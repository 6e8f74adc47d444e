package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/quillboard/quillboard/internal/identity/store"
)

// HousekeepingService periodically sweeps dead rows out of the store.
// Expired entries already read as absent, so this is space reclamation
// for revocation entries and reset tokens, not correctness.
type HousekeepingService struct {
	Store    store.KV
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the
// given interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(kv store.KV, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    kv,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs the sweep.
// Non-blocking; call Stop to shut the worker down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker, blocking until any
// in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx := context.Background()

	deleted, err := s.Store.DeleteExpired(ctx)
	if err != nil {
		s.Logger.Error("housekeeping sweep failed", "error", err)
		return
	}

	s.Logger.Info("housekeeping sweep completed", "deleted", deleted)
}
