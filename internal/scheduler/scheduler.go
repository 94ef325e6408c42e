// Package scheduler runs the periodic menu availability rebuild.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Benediks/Sidaya/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Recalculator rebuilds every cached menu availability value.
type Recalculator interface {
	RecalculateAllMenus(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	recalc Recalculator
	cfg    config.SchedulerConfig
	logger *zap.Logger
}

// NewScheduler creates a scheduler in cfg.Timezone, falling back to UTC
// when the zone is unknown.
func NewScheduler(cfg config.SchedulerConfig, recalc Recalculator, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		} else {
			logger.Warn("unknown scheduler timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		}
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		recalc: recalc,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the jobs and starts the cron loop. An empty
// RecalcCron leaves the scheduler idle.
func (s *Scheduler) Start() error {
	if s.cfg.RecalcCron == "" {
		s.logger.Info("menu recalculation job disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.RecalcCron, s.recalculate); err != nil {
		return fmt.Errorf("schedule menu recalculation %q: %w", s.cfg.RecalcCron, err)
	}

	s.logger.Info("starting scheduler", zap.String("recalc_cron", s.cfg.RecalcCron))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) recalculate() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// the service logs the outcome
	if _, err := s.recalc.RecalculateAllMenus(ctx); err != nil {
		s.logger.Error("scheduled menu recalculation failed", zap.Error(err))
	}
}
