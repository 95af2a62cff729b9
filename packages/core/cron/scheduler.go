package cron

import (
	"context"
	"log"
	"log/slog"
	"sync"

	authUtils "pelada-api/packages/auth/utils"
	"pelada-api/packages/core/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	// At second 0 of every minute.
	matchClockSpec = "0 * * * * *"
	// At minute 0 of every hour.
	tokenCleanupSpec = "0 0 * * * *"
)

type Scheduler struct {
	cron         *cron.Cron
	clockService *services.MatchClockService
	db           *gorm.DB
	clockEnabled bool

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

func NewScheduler(clockService *services.MatchClockService, db *gorm.DB, clockEnabled bool) *Scheduler {
	c := cron.New(cron.WithSeconds(), cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:         c,
		clockService: clockService,
		db:           db,
		clockEnabled: clockEnabled,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	if s.clockEnabled {
		if _, err := s.cron.AddFunc(matchClockSpec, s.runMatchClock); err != nil {
			slog.Error("failed to schedule match clock", "error", err)
			return err
		}
	} else {
		slog.Info("match clock disabled")
	}

	if _, err := s.cron.AddFunc(tokenCleanupSpec, s.runTokenCleanup); err != nil {
		slog.Error("failed to schedule refresh token cleanup", "error", err)
		return err
	}

	s.cron.Start()
	slog.Info("cron scheduler started", "match_clock", s.clockEnabled)
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	slog.Info("cron scheduler stopped")
}

// runMatchClock advances every running match by one minute. Ticks never
// overlap.
func (s *Scheduler) runMatchClock() {
	if !s.mu.TryLock() {
		slog.Warn("previous match clock tick still running, skipping")
		return
	}
	defer s.mu.Unlock()

	running, err := s.clockService.GetRunningMatchesCount(s.ctx)
	if err != nil {
		slog.Error("failed to count running matches", "error", err)
		return
	}
	if running == 0 {
		return
	}

	advanced, finished, err := s.clockService.AdvanceRunningMatches(s.ctx)
	if err != nil {
		slog.Error("match clock tick failed", "error", err)
		return
	}

	slog.Info("match clock tick", "advanced", advanced, "finished", finished)
}

func (s *Scheduler) runTokenCleanup() {
	removed, err := authUtils.CleanExpiredTokens(s.db.WithContext(s.ctx))
	if err != nil {
		slog.Error("failed to clean expired refresh tokens", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("expired refresh tokens removed", "count", removed)
	}
}

// RunNow triggers one match clock tick immediately.
func (s *Scheduler) RunNow() {
	s.runMatchClock()
}
