package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

// Cleaner is the job run on schedule
type Cleaner interface {
	Run(ctx context.Context) (model.CleanupResult, error)
}

// Scheduler runs background jobs
type Scheduler struct {
	cleaner Cleaner
	spec    string
	cron    *cron.Cron
	logger  *zap.Logger
}

func NewScheduler(cleaner Cleaner, spec string, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cleaner: cleaner,
		spec:    spec,
		cron:    cron.New(),
		logger:  logger,
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse cleanup schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run runs cleanup once, then on schedule until ctx is done
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.String("cleanup", s.spec))

	s.runCleanup(ctx)

	if _, err := s.cron.AddFunc(s.spec, func() { s.runCleanup(ctx) }); err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}
	s.cron.Start()

	<-ctx.Done()

	s.logger.Info("Stopping background scheduler")
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) runCleanup(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.cleaner.Run(ctx); err != nil {
		s.logger.Error("Cleanup failed", zap.Error(err))
	}
}
