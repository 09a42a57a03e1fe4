// Package jobs runs the bot's periodic background tasks on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// IdleSweeper drops game sessions nobody has touched for too long.
type IdleSweeper interface {
	SweepIdleSessions(ctx context.Context, now time.Time) int
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron    *cron.Cron
	sweeper IdleSweeper
	spec    string
	now     func() time.Time
}

// NewScheduler creates a scheduler that sweeps idle sessions on spec,
// a robfig/cron expression such as "@every 1m".
func NewScheduler(sweeper IdleSweeper, spec string) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		sweeper: sweeper,
		spec:    spec,
		now:     time.Now,
	}
}

// Start registers the jobs and starts the runner.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.sweep(ctx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Info().Str("schedule", s.spec).Msg("Job scheduler started")
	return nil
}

func (s *Scheduler) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if n := s.sweeper.SweepIdleSessions(ctx, s.now()); n > 0 {
		log.Info().Int("sessions", n).Msg("[CRON] Idle game sessions expired")
	}
}

// Stop waits for running jobs and stops the runner.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Job scheduler stopped")
}
