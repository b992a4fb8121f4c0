package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"yclients_sync/config"
)

// Runner is the unit of scheduled work: one full sync across all resources.
type Runner interface {
	RunAll(ctx context.Context) error
}

// Scheduler repeats full sync runs on a fixed interval (default 24h) or a
// cron expression. Stop (or context cancellation) ends the loop cleanly
// between iterations; a run already in flight finishes first.
type Scheduler struct {
	cfg    *config.SchedulerConfig
	runner Runner
	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}
}

func New(cfg *config.SchedulerConfig, runner Runner) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Cron)
		_, err := s.cron.AddFunc(s.cfg.Cron, func() {
			if err := s.runner.RunAll(ctx); err != nil {
				log.Printf("Scheduled run error: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
		return nil
	}

	if s.cfg.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.cfg.Interval)
	}

	log.Printf("Starting scheduler with interval: %s", s.cfg.Interval)
	s.ticker = time.NewTicker(s.cfg.Interval)
	go func() {
		// First run happens immediately; the ticker covers the repeats.
		if err := s.runner.RunAll(ctx); err != nil {
			log.Printf("Initial run error: %v", err)
		}
		for {
			select {
			case <-s.ticker.C:
				if err := s.runner.RunAll(ctx); err != nil {
					log.Printf("Scheduled run error: %v", err)
				}
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}
