package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/cache"
	"github.com/Freeeeeet/barber_bot/internal/catalog"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

// BarberService covers the barber's daily schedule and recurring blocks
type BarberService struct {
	appointments AppointmentStore
	recurring    RecurringStore
	checker      *availability.Checker
	catalog      *catalog.Catalog
	cache        *cache.Cache
	logger       *zap.Logger
}

func NewBarberService(
	appointments AppointmentStore,
	recurring RecurringStore,
	checker *availability.Checker,
	services *catalog.Catalog,
	availabilityCache *cache.Cache,
	logger *zap.Logger,
) *BarberService {
	return &BarberService{
		appointments: appointments,
		recurring:    recurring,
		checker:      checker,
		catalog:      services,
		cache:        availabilityCache,
		logger:       logger,
	}
}

// DailySchedule merges the date's confirmed appointments with the active
// recurring blocks of its weekday, ordered by start time.
func (s *BarberService) DailySchedule(ctx context.Context, date time.Time) ([]model.ScheduleEntry, error) {
	date = model.DateOf(date)

	status := model.AppointmentStatusConfirmed
	appts, err := s.appointments.ListAppointments(ctx, model.AppointmentFilter{Date: &date, Status: &status})
	if err != nil {
		return nil, model.NewDataSourceError("list appointments", err)
	}

	weekday := int(date.Weekday())
	active := model.RecurringStatusActive
	recs, err := s.recurring.ListRecurring(ctx, model.RecurringFilter{Weekday: &weekday, Status: &active})
	if err != nil {
		return nil, model.NewDataSourceError("list recurring appointments", err)
	}

	entries := make([]model.ScheduleEntry, 0, len(appts)+len(recs))
	for _, a := range appts {
		entries = append(entries, s.entry(a.StartTime, a.ServiceName, a.ClientName, a.Phone, false, a.ID))
	}
	for _, r := range recs {
		entries = append(entries, s.entry(r.StartTime, r.ServiceName, r.ClientName, r.Phone, true, r.ID))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartTime < entries[j].StartTime
	})
	return entries, nil
}

func (s *BarberService) entry(start, service, client, phone string, recurring bool, id uuid.UUID) model.ScheduleEntry {
	e := model.ScheduleEntry{
		StartTime:   start,
		ClientName:  client,
		Phone:       phone,
		ServiceName: service,
		Recurring:   recurring,
		SourceID:    id,
	}
	if iv, err := availability.NewInterval(start, s.catalog.DurationOf(service)); err == nil {
		e.EndTime = availability.FormatMinutes(iv.End)
	}
	return e
}

// CreateRecurring adds an active weekly block unless it overlaps another one
func (s *BarberService) CreateRecurring(ctx context.Context, input model.CreateRecurringInput) (*model.RecurringAppointment, error) {
	input.ClientName = strings.TrimSpace(input.ClientName)
	input.ServiceName = strings.TrimSpace(input.ServiceName)

	if input.ClientName == "" {
		return nil, fmt.Errorf("%w: client name is required", model.ErrInvalidInput)
	}
	if input.ServiceName == "" {
		return nil, fmt.Errorf("%w: service is required", model.ErrInvalidInput)
	}
	if input.Weekday < 0 || input.Weekday > 6 {
		return nil, fmt.Errorf("%w: weekday must be 0-6, got %d", model.ErrInvalidInput, input.Weekday)
	}
	if _, err := availability.ToMinutes(input.StartTime); err != nil {
		return nil, err
	}

	duration := s.catalog.DurationOf(input.ServiceName)
	free, err := s.checker.VerifyRecurringSlot(ctx, time.Weekday(input.Weekday), input.StartTime, duration)
	if err != nil {
		return nil, fmt.Errorf("verify recurring slot: %w", err)
	}
	if !free {
		return nil, model.ErrSlotConflict
	}

	rec := &model.RecurringAppointment{
		ID:          uuid.New(),
		ClientName:  input.ClientName,
		Phone:       strings.TrimSpace(input.Phone),
		ServiceName: input.ServiceName,
		Weekday:     input.Weekday,
		StartTime:   input.StartTime,
		Status:      model.RecurringStatusActive,
	}
	if err := s.recurring.InsertRecurring(ctx, rec); err != nil {
		return nil, model.NewDataSourceError("insert recurring appointment", err)
	}

	// Every date on this weekday is affected.
	s.cache.Clear(ctx)

	s.logger.Info("Recurring appointment created",
		zap.String("recurring_id", rec.ID.String()),
		zap.Int("weekday", rec.Weekday),
		zap.String("start_time", rec.StartTime),
		zap.String("service", rec.ServiceName))

	s.warnOverlappingAppointments(ctx, rec, duration)

	return rec, nil
}

// SetRecurringStatus (de)activates a block. Reactivation re-checks overlap.
func (s *BarberService) SetRecurringStatus(ctx context.Context, id uuid.UUID, status model.RecurringStatus) (*model.RecurringAppointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrInvalidInput, status)
	}

	rec, err := s.recurring.GetRecurring(ctx, id)
	if err != nil {
		return nil, model.NewDataSourceError("get recurring appointment", err)
	}
	if rec == nil {
		return nil, model.ErrNotFound
	}
	if rec.Status == status {
		return rec, nil
	}

	if status == model.RecurringStatusActive {
		free, err := s.checker.VerifyRecurringSlot(ctx, time.Weekday(rec.Weekday), rec.StartTime, s.catalog.DurationOf(rec.ServiceName))
		if err != nil {
			return nil, fmt.Errorf("verify recurring slot: %w", err)
		}
		if !free {
			return nil, model.ErrSlotConflict
		}
	}

	updated, err := s.recurring.UpdateRecurringStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, model.NewDataSourceError("update recurring status", err)
	}

	s.cache.Clear(ctx)

	s.logger.Info("Recurring appointment status changed",
		zap.String("recurring_id", updated.ID.String()),
		zap.String("status", string(updated.Status)))

	if updated.Status == model.RecurringStatusActive {
		s.warnOverlappingAppointments(ctx, updated, s.catalog.DurationOf(updated.ServiceName))
	}

	return updated, nil
}

func (s *BarberService) DeleteRecurring(ctx context.Context, id uuid.UUID) error {
	if err := s.recurring.DeleteRecurring(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		return model.NewDataSourceError("delete recurring appointment", err)
	}

	s.cache.Clear(ctx)

	s.logger.Info("Recurring appointment deleted", zap.String("recurring_id", id.String()))
	return nil
}

func (s *BarberService) ListRecurring(ctx context.Context, filter model.RecurringFilter) ([]*model.RecurringAppointment, error) {
	recs, err := s.recurring.ListRecurring(ctx, filter)
	if err != nil {
		return nil, model.NewDataSourceError("list recurring appointments", err)
	}
	return recs, nil
}

// GetRecurring returns model.ErrNotFound for unknown ids
func (s *BarberService) GetRecurring(ctx context.Context, id uuid.UUID) (*model.RecurringAppointment, error) {
	rec, err := s.recurring.GetRecurring(ctx, id)
	if err != nil {
		return nil, model.NewDataSourceError("get recurring appointment", err)
	}
	if rec == nil {
		return nil, model.ErrNotFound
	}
	return rec, nil
}

// OverlappingAppointments lists confirmed one-off appointments on weekday
// that intersect a weekly block at startTime. Blocks do not displace
// existing bookings, so the barber has to settle these by hand.
func (s *BarberService) OverlappingAppointments(ctx context.Context, weekday time.Weekday, startTime string, duration int) ([]*model.Appointment, error) {
	start, err := availability.ToMinutes(startTime)
	if err != nil {
		return nil, err
	}

	status := model.AppointmentStatusConfirmed
	appts, err := s.appointments.ListAppointments(ctx, model.AppointmentFilter{Status: &status})
	if err != nil {
		return nil, model.NewDataSourceError("list appointments", err)
	}

	var overlapping []*model.Appointment
	for _, a := range appts {
		if a.Weekday() != weekday {
			continue
		}
		apptStart, err := availability.ToMinutes(a.StartTime)
		if err != nil {
			continue
		}
		if availability.OverlapsMinutes(start, duration, apptStart, s.catalog.DurationOf(a.ServiceName)) {
			overlapping = append(overlapping, a)
		}
	}
	return overlapping, nil
}

func (s *BarberService) warnOverlappingAppointments(ctx context.Context, rec *model.RecurringAppointment, duration int) {
	overlapping, err := s.OverlappingAppointments(ctx, time.Weekday(rec.Weekday), rec.StartTime, duration)
	if err != nil {
		s.logger.Warn("Could not check appointments under recurring block",
			zap.String("recurring_id", rec.ID.String()),
			zap.Error(err))
		return
	}
	for _, a := range overlapping {
		s.logger.Warn("Recurring block overlaps a confirmed appointment",
			zap.String("recurring_id", rec.ID.String()),
			zap.String("appointment_id", a.ID.String()),
			zap.String("date", model.FormatDate(a.Date)),
			zap.String("start_time", a.StartTime))
	}
}
