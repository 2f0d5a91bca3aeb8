package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper runs the retention sweep on a cron schedule. It is a secondary,
// coarser cleanup next to the store's own row TTL.
type Sweeper struct {
	cron   *cron.Cron
	logger *EventLogger
	days   int
	log    zerolog.Logger
}

// NewSweeper schedules DeleteOldLogs(days) at the given cron spec. An empty
// schedule disables the sweeper and returns nil.
func NewSweeper(logger *EventLogger, schedule string, days int, log zerolog.Logger) (*Sweeper, error) {
	if schedule == "" {
		return nil, nil
	}
	s := &Sweeper{cron: cron.New(), logger: logger, days: days, log: log}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) run() {
	deleted, err := s.logger.DeleteOldLogs(context.Background(), s.days)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled retention sweep failed")
		return
	}
	s.log.Info().Int("deleted", deleted).Msg("scheduled retention sweep done")
}

// Start begins the schedule.
func (s *Sweeper) Start() {
	if s == nil {
		return
	}
	s.cron.Start()
}

// Stop halts the schedule; a sweep already running completes.
func (s *Sweeper) Stop() {
	if s == nil {
		return
	}
	s.cron.Stop()
}
