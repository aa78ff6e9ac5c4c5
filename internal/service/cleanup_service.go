package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/cache"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

// CleanupService removes cancelled and expired appointments
type CleanupService struct {
	appointments AppointmentStore
	slots        *availability.SlotGenerator
	checker      *availability.Checker
	cache        *cache.Cache
	logger       *zap.Logger
}

func NewCleanupService(
	appointments AppointmentStore,
	slots *availability.SlotGenerator,
	checker *availability.Checker,
	availabilityCache *cache.Cache,
	logger *zap.Logger,
) *CleanupService {
	return &CleanupService{
		appointments: appointments,
		slots:        slots,
		checker:      checker,
		cache:        availabilityCache,
		logger:       logger,
	}
}

// Cutoff is the retention limit: appointments dated before yesterday go
func (s *CleanupService) Cutoff() time.Time {
	return s.slots.Today().AddDate(0, 0, -1)
}

// Run deletes every cancelled appointment and every appointment dated before
// the cutoff.
func (s *CleanupService) Run(ctx context.Context) (model.CleanupResult, error) {
	cutoff := s.Cutoff()

	res, err := s.appointments.DeleteForCleanup(ctx, cutoff)
	if err != nil {
		return model.CleanupResult{}, model.NewDataSourceError("cleanup appointments", err)
	}

	s.checker.Snapshot().Forget(cutoff)
	if res.Total > 0 {
		s.cache.Clear(ctx)
	}

	s.logger.Info("Cleanup finished",
		zap.String("cutoff", model.FormatDate(cutoff)),
		zap.Int("cancelled", res.Cancelled),
		zap.Int("expired", res.Expired),
		zap.Int("total", res.Total))

	return res, nil
}
