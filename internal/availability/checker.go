package availability

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/barber_bot/internal/cache"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

// Source is the read side of the storage collaborator
type Source interface {
	ListAppointments(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error)
	ListRecurring(ctx context.Context, filter model.RecurringFilter) ([]*model.RecurringAppointment, error)
}

// DurationFunc resolves a service name to its duration in minutes
type DurationFunc func(serviceName string) int

// Checker answers whether candidate slots collide with existing bookings
type Checker struct {
	source     Source
	durationOf DurationFunc
	cache      *cache.Cache
	snapshot   *Snapshot
	logger     *zap.Logger
}

// NewChecker creates a checker. A nil cache disables memoization.
func NewChecker(source Source, durationOf DurationFunc, c *cache.Cache, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		source:     source,
		durationOf: durationOf,
		cache:      c,
		snapshot:   NewSnapshot(),
		logger:     logger,
	}
}

// Snapshot exposes the locally held appointments used for degraded answers
func (c *Checker) Snapshot() *Snapshot {
	return c.snapshot
}

// IsNormalSlotFree reports whether a one-off booking of duration minutes at
// startTime on date collides with neither a confirmed appointment of that date
// nor an active recurring block of its weekday.
func (c *Checker) IsNormalSlotFree(ctx context.Context, date time.Time, startTime string, duration int) (bool, error) {
	if _, err := ToMinutes(startTime); err != nil {
		return false, err
	}

	if free, ok := c.cache.NormalFree(ctx, date, startTime, duration); ok {
		return free, nil
	}

	free, err := c.VerifyNormalSlot(ctx, date, startTime, duration)
	if err != nil {
		return false, err
	}

	if ctx.Err() == nil {
		c.cache.PutNormalFree(ctx, date, startTime, duration, free)
	}
	return free, nil
}

// VerifyNormalSlot is IsNormalSlotFree without the cache. Booking writes use it.
func (c *Checker) VerifyNormalSlot(ctx context.Context, date time.Time, startTime string, duration int) (bool, error) {
	start, err := ToMinutes(startTime)
	if err != nil {
		return false, err
	}

	appts, err := c.confirmedOn(ctx, date)
	if err != nil {
		return false, err
	}
	if !c.freeOfAppointments(appts, start, duration) {
		return false, nil
	}

	recs, err := c.activeOn(ctx, date.Weekday())
	if err != nil {
		return false, err
	}
	return c.freeOfRecurring(recs, start, duration), nil
}

// IsRecurringSlotFree reports whether a weekly block at startTime on weekday
// collides with another active recurring block.
func (c *Checker) IsRecurringSlotFree(ctx context.Context, weekday time.Weekday, startTime string, duration int) (bool, error) {
	start, err := ToMinutes(startTime)
	if err != nil {
		return false, err
	}

	if free, ok := c.cache.RecurringFree(ctx, weekday, startTime, duration); ok {
		return free, nil
	}

	free, err := c.verifyRecurring(ctx, weekday, start, duration)
	if err != nil {
		return false, err
	}

	if ctx.Err() == nil {
		c.cache.PutRecurringFree(ctx, weekday, startTime, duration, free)
	}
	return free, nil
}

// VerifyRecurringSlot is IsRecurringSlotFree without the cache
func (c *Checker) VerifyRecurringSlot(ctx context.Context, weekday time.Weekday, startTime string, duration int) (bool, error) {
	start, err := ToMinutes(startTime)
	if err != nil {
		return false, err
	}
	return c.verifyRecurring(ctx, weekday, start, duration)
}

func (c *Checker) verifyRecurring(ctx context.Context, weekday time.Weekday, start, duration int) (bool, error) {
	recs, err := c.activeOn(ctx, weekday)
	if err != nil {
		return false, err
	}
	return c.freeOfRecurring(recs, start, duration), nil
}

// ListOpenSlots keeps the candidates that pass both the one-off and the
// recurring overlap test, in input order.
func (c *Checker) ListOpenSlots(ctx context.Context, date time.Time, weekday time.Weekday, candidates []string, duration int) ([]string, error) {
	if slots, ok := c.cache.DaySlots(ctx, date, duration, candidates); ok {
		return slots, nil
	}

	var (
		appts []*model.Appointment
		recs  []*model.RecurringAppointment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		appts, err = c.confirmedOn(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		recs, err = c.activeOn(gctx, weekday)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	open := make([]string, 0, len(candidates))
	for _, slot := range candidates {
		start, err := ToMinutes(slot)
		if err != nil {
			return nil, err
		}
		if c.freeOfAppointments(appts, start, duration) && c.freeOfRecurring(recs, start, duration) {
			open = append(open, slot)
		}
	}

	if ctx.Err() == nil {
		c.cache.PutDaySlots(ctx, date, duration, candidates, open)
	}
	return open, nil
}

// ListOpenSlotsLocal filters candidates against the last appointments fetched
// for date only. Recurring blocks are not consulted, so the answer is weaker
// than ListOpenSlots and must be presented as such.
func (c *Checker) ListOpenSlotsLocal(date time.Time, candidates []string, duration int) []string {
	appts := c.snapshot.Get(date)

	open := make([]string, 0, len(candidates))
	for _, slot := range candidates {
		start, err := ToMinutes(slot)
		if err != nil {
			continue
		}
		if c.freeOfAppointments(appts, start, duration) {
			open = append(open, slot)
		}
	}
	return open
}

func (c *Checker) confirmedOn(ctx context.Context, date time.Time) ([]*model.Appointment, error) {
	status := model.AppointmentStatusConfirmed
	appts, err := c.source.ListAppointments(ctx, model.AppointmentFilter{
		Date:   &date,
		Status: &status,
	})
	if err != nil {
		return nil, model.NewDataSourceError("list appointments", err)
	}
	c.snapshot.Replace(date, appts)
	return appts, nil
}

func (c *Checker) activeOn(ctx context.Context, weekday time.Weekday) ([]*model.RecurringAppointment, error) {
	wd := int(weekday)
	status := model.RecurringStatusActive
	recs, err := c.source.ListRecurring(ctx, model.RecurringFilter{
		Weekday: &wd,
		Status:  &status,
	})
	if err != nil {
		return nil, model.NewDataSourceError("list recurring appointments", err)
	}
	return recs, nil
}

func (c *Checker) freeOfAppointments(appts []*model.Appointment, start, duration int) bool {
	for _, a := range appts {
		if a.IsCancelled() {
			continue
		}
		other, err := ToMinutes(a.StartTime)
		if err != nil {
			c.logger.Warn("Skipping appointment with malformed start time",
				zap.String("appointment_id", a.ID.String()),
				zap.String("start_time", a.StartTime))
			continue
		}
		if OverlapsMinutes(start, duration, other, c.durationOf(a.ServiceName)) {
			return false
		}
	}
	return true
}

func (c *Checker) freeOfRecurring(recs []*model.RecurringAppointment, start, duration int) bool {
	for _, r := range recs {
		if !r.IsActive() {
			continue
		}
		other, err := ToMinutes(r.StartTime)
		if err != nil {
			c.logger.Warn("Skipping recurring appointment with malformed start time",
				zap.String("recurring_id", r.ID.String()),
				zap.String("start_time", r.StartTime))
			continue
		}
		if OverlapsMinutes(start, duration, other, c.durationOf(r.ServiceName)) {
			return false
		}
	}
	return true
}
