// Package scheduler runs the bot's periodic jobs
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/tablebot/internal/services/game"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// rolloverTimeout bounds one season rollover run
const rolloverTimeout = time.Minute

// Config holds configuration for the scheduler
type Config struct {
	GameService game.Service

	// SeasonSchedule is a standard cron spec or descriptor such as @weekly
	SeasonSchedule string

	// Optional; defaults to a no-op logger
	Logger *zap.Logger
}

// Scheduler owns the cron runner
type Scheduler struct {
	cron        *cron.Cron
	gameService game.Service
	logger      *zap.Logger
}

// New validates the schedule and registers the jobs. Nothing runs until
// Start.
func New(cfg *Config) (*Scheduler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.GameService == nil {
		return nil, errors.New("game service cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		cron:        cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		gameService: cfg.GameService,
		logger:      logger,
	}

	if _, err := s.cron.AddFunc(cfg.SeasonSchedule, s.rolloverSeasons); err != nil {
		return nil, fmt.Errorf("invalid season schedule %q: %w", cfg.SeasonSchedule, err)
	}

	return s, nil
}

// Start runs the jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Time("next_season_rollover", s.Next()))
}

// Stop prevents new runs and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Next returns when the season job runs next; zero before Start
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) rolloverSeasons() {
	ctx, cancel := context.WithTimeout(context.Background(), rolloverTimeout)
	defer cancel()

	s.logger.Info("rolling over seasons")
	out, err := s.gameService.RolloverSeasons(ctx, &game.RolloverSeasonsInput{})
	if err != nil {
		s.logger.Error("season rollover failed", zap.Error(err))
	}
	if out != nil {
		s.logger.Info("seasons rolled over", zap.Int("guilds", len(out.Seasons)))
	}
}
