// Package scheduler triggers periodic pipeline runs with cron schedules.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/signals"
)

// Scheduler runs the signal engine on a cron schedule
type Scheduler struct {
	engine *signals.Engine
	cron   *cron.Cron
	logger arbor.ILogger
}

// NewScheduler creates a pipeline scheduler
func NewScheduler(engine *signals.Engine, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		engine: engine,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start begins scheduled runs
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		// Default: every 4 hours
		schedule = "0 */4 * * *"
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.runPipeline()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Msg("Pipeline scheduler started")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("Pipeline scheduler stopped")
}

// RunNow triggers an immediate pipeline run
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("Triggering immediate pipeline run")
	go s.runPipeline()
}

func (s *Scheduler) runPipeline() {
	// The engine bounds the run with its own timeout
	if _, _, err := s.engine.Run(context.Background()); err != nil {
		s.logger.Error().
			Err(err).
			Msg("Scheduled pipeline run failed")
	}
}
