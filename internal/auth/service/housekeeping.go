package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/pressauth/internal/auth/store"
	"github.com/aussiebroadwan/pressauth/pkg/bruteforce"
)

// HousekeepingService periodically deletes expired tokens and stale
// brute-force records. Token checks never rely on it having run.
type HousekeepingService struct {
	Store    store.Store
	Guard    *bruteforce.Guard
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults interval to one hour when it is not positive.
func NewHousekeepingService(st store.Store, guard *bruteforce.Guard, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HousekeepingService{
		Store:    st,
		Guard:    guard,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start is non-blocking. Call Stop to shut the worker down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each deletion is independent.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	var total int64

	if n, err := s.Store.AccessTokens().DeleteExpiredAccessTokens(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired access tokens", "error", err)
	} else {
		total += n
	}

	if n, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", "error", err)
	} else {
		total += n
	}

	if s.Guard != nil {
		if n, err := s.Guard.Prune(ctx); err != nil {
			s.Logger.Error("failed to prune brute-force records", "error", err)
		} else {
			total += n
		}
	}

	s.Logger.Debug("housekeeping cleanup completed", "deleted", total)
}
