package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/cache"
	"github.com/Freeeeeet/barber_bot/internal/catalog"
	"github.com/Freeeeeet/barber_bot/internal/model"
	"github.com/Freeeeeet/barber_bot/internal/notify"
)

const notifyTimeout = 15 * time.Second

// OpenSlots is an availability answer. Degraded is set when the data source
// failed and the slots were computed from locally held appointments only.
type OpenSlots struct {
	Slots    []string `json:"slots"`
	Degraded bool     `json:"degraded"`
}

// ClientRef identifies whose appointments to list
type ClientRef struct {
	Email      string
	TelegramID *int64
}

// BookingService is the booking writer and the read facade used by the front-ends
type BookingService struct {
	appointments AppointmentStore
	checker      *availability.Checker
	slots        *availability.SlotGenerator
	catalog      *catalog.Catalog
	cache        *cache.Cache
	notifier     notify.Notifier
	logger       *zap.Logger

	notifications sync.WaitGroup
}

func NewBookingService(
	appointments AppointmentStore,
	checker *availability.Checker,
	slots *availability.SlotGenerator,
	services *catalog.Catalog,
	availabilityCache *cache.Cache,
	notifier notify.Notifier,
	logger *zap.Logger,
) *BookingService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &BookingService{
		appointments: appointments,
		checker:      checker,
		slots:        slots,
		catalog:      services,
		cache:        availabilityCache,
		notifier:     notifier,
		logger:       logger,
	}
}

// Services returns the catalog in display order
func (s *BookingService) Services() []model.Service {
	return s.catalog.All()
}

// DurationOf resolves a service's length in minutes
func (s *BookingService) DurationOf(serviceName string) int {
	return s.catalog.DurationOf(serviceName)
}

// InitialSlots returns every start time of the business day
func (s *BookingService) InitialSlots() []string {
	return s.slots.InitialSlots()
}

// Today returns the current date in the shop's timezone
func (s *BookingService) Today() time.Time {
	return s.slots.Today()
}

// GetOpenSlots filters the business day's slots against existing bookings.
// A data source failure degrades to the local snapshot instead of failing.
func (s *BookingService) GetOpenSlots(ctx context.Context, date time.Time, weekday time.Weekday, duration int) (OpenSlots, error) {
	return s.openSlots(ctx, date, weekday, s.slots.InitialSlots(), duration)
}

// SlotsForService returns the slots a service still fits in on date
func (s *BookingService) SlotsForService(ctx context.Context, date time.Time, serviceName string) (OpenSlots, error) {
	duration := s.catalog.DurationOf(serviceName)
	candidates := s.slots.SlotsFor(date, duration)
	if len(candidates) == 0 {
		return OpenSlots{Slots: []string{}}, nil
	}
	return s.openSlots(ctx, date, date.Weekday(), candidates, duration)
}

func (s *BookingService) openSlots(ctx context.Context, date time.Time, weekday time.Weekday, candidates []string, duration int) (OpenSlots, error) {
	open, err := s.checker.ListOpenSlots(ctx, date, weekday, candidates, duration)
	if err == nil {
		return OpenSlots{Slots: open}, nil
	}

	if !model.IsDataSourceError(err) || ctx.Err() != nil {
		return OpenSlots{}, err
	}

	s.logger.Warn("Availability degraded to local snapshot",
		zap.String("date", model.FormatDate(date)),
		zap.Int("duration", duration),
		zap.Error(err))

	return OpenSlots{
		Slots:    s.checker.ListOpenSlotsLocal(date, candidates, duration),
		Degraded: true,
	}, nil
}

// CheckSlot is an advisory availability check; it may be served from cache
func (s *BookingService) CheckSlot(ctx context.Context, date time.Time, startTime string, duration int) (bool, error) {
	return s.checker.IsNormalSlotFree(ctx, date, startTime, duration)
}

// CreateAppointment validates input, re-checks the slot against the source of
// truth and persists a confirmed appointment.
func (s *BookingService) CreateAppointment(ctx context.Context, input model.CreateAppointmentInput) (*model.Appointment, error) {
	input.ClientName = strings.TrimSpace(input.ClientName)
	input.ServiceName = strings.TrimSpace(input.ServiceName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.TrimSpace(input.Email)

	if input.ClientName == "" {
		return nil, fmt.Errorf("%w: client name is required", model.ErrInvalidInput)
	}
	if input.ServiceName == "" {
		return nil, fmt.Errorf("%w: service is required", model.ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", model.ErrInvalidInput)
	}
	if _, err := availability.ToMinutes(input.StartTime); err != nil {
		return nil, err
	}

	date := model.DateOf(input.Date)
	duration := s.catalog.DurationOf(input.ServiceName)

	free, err := s.checker.VerifyNormalSlot(ctx, date, input.StartTime, duration)
	if err != nil {
		return nil, fmt.Errorf("verify slot: %w", err)
	}
	if !free {
		s.logger.Info("Booking rejected, slot taken",
			zap.String("date", model.FormatDate(date)),
			zap.String("start_time", input.StartTime),
			zap.String("service", input.ServiceName))
		return nil, model.ErrSlotConflict
	}

	appt := &model.Appointment{
		ID:          uuid.New(),
		ClientName:  input.ClientName,
		Phone:       input.Phone,
		ServiceName: input.ServiceName,
		Date:        date,
		StartTime:   input.StartTime,
		Status:      model.AppointmentStatusConfirmed,
		Email:       input.Email,
		TelegramID:  input.TelegramID,
	}

	if err := s.appointments.InsertAppointment(ctx, appt, duration); err != nil {
		if errors.Is(err, model.ErrSlotConflict) {
			s.logger.Info("Booking lost insert race",
				zap.String("date", model.FormatDate(date)),
				zap.String("start_time", input.StartTime))
			return nil, model.ErrSlotConflict
		}
		return nil, model.NewDataSourceError("insert appointment", err)
	}

	s.cache.Invalidate(ctx, date, appt.StartTime, date.Weekday())
	s.checker.Snapshot().Apply(nil, appt)

	s.logger.Info("Appointment created",
		zap.String("appointment_id", appt.ID.String()),
		zap.String("date", model.FormatDate(date)),
		zap.String("start_time", appt.StartTime),
		zap.String("service", appt.ServiceName))

	return appt, nil
}

// CancelAppointment cancels a confirmed appointment. Cancelling an already
// cancelled appointment succeeds without side effects.
func (s *BookingService) CancelAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		return nil, model.NewDataSourceError("get appointment", err)
	}
	if appt == nil {
		return nil, model.ErrNotFound
	}
	if appt.IsCancelled() {
		return appt, nil
	}

	updated, err := s.appointments.UpdateAppointmentStatus(ctx, id, model.AppointmentStatusCancelled)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, model.NewDataSourceError("cancel appointment", err)
	}

	s.cache.Invalidate(ctx, updated.Date, updated.StartTime, updated.Weekday())
	s.checker.Snapshot().Apply(appt, updated)

	s.logger.Info("Appointment cancelled",
		zap.String("appointment_id", updated.ID.String()),
		zap.String("date", model.FormatDate(updated.Date)),
		zap.String("start_time", updated.StartTime),
		zap.String("service", updated.ServiceName))

	s.notifyCancellation(updated)
	return updated, nil
}

// UpdateStatus is the barber's status change. Cancelled is terminal.
func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrInvalidTransition, status)
	}

	appt, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		return nil, model.NewDataSourceError("get appointment", err)
	}
	if appt == nil {
		return nil, model.ErrNotFound
	}

	switch {
	case appt.Status == status:
		return appt, nil
	case appt.IsCancelled():
		return nil, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, appt.Status, status)
	default:
		return s.CancelAppointment(ctx, id)
	}
}

// ClientAppointments lists a client's confirmed appointments from today on
func (s *BookingService) ClientAppointments(ctx context.Context, ref ClientRef) ([]*model.Appointment, error) {
	if ref.Email == "" && ref.TelegramID == nil {
		return nil, fmt.Errorf("%w: email or telegram id is required", model.ErrInvalidInput)
	}

	status := model.AppointmentStatusConfirmed
	appts, err := s.appointments.ListAppointments(ctx, model.AppointmentFilter{
		Status:     &status,
		Email:      ref.Email,
		TelegramID: ref.TelegramID,
	})
	if err != nil {
		return nil, model.NewDataSourceError("list client appointments", err)
	}

	today := s.slots.Today()
	upcoming := appts[:0]
	for _, a := range appts {
		if !a.Date.Before(today) {
			upcoming = append(upcoming, a)
		}
	}
	return upcoming, nil
}

// GetAppointment returns model.ErrNotFound for unknown ids
func (s *BookingService) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		return nil, model.NewDataSourceError("get appointment", err)
	}
	if appt == nil {
		return nil, model.ErrNotFound
	}
	return appt, nil
}

// InvalidateCache drops cached answers touched by a booking at (date, startTime)
func (s *BookingService) InvalidateCache(ctx context.Context, date time.Time, startTime string, weekday time.Weekday) {
	s.cache.Invalidate(ctx, date, startTime, weekday)
}

// ClearCache drops every cached availability answer
func (s *BookingService) ClearCache(ctx context.Context) {
	s.cache.Clear(ctx)
	s.logger.Info("Availability cache cleared")
}

// WaitNotifications blocks until in-flight cancellation notices finish
func (s *BookingService) WaitNotifications() {
	s.notifications.Wait()
}

func (s *BookingService) notifyCancellation(appt *model.Appointment) {
	cp := *appt
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.NotifyCancellation(ctx, &cp); err != nil {
			s.logger.Warn("Cancellation notice failed",
				zap.String("appointment_id", cp.ID.String()),
				zap.Error(err))
		}
	}()
}
