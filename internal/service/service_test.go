package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/cache"
	"github.com/Freeeeeet/barber_bot/internal/catalog"
	"github.com/Freeeeeet/barber_bot/internal/clock"
	"github.com/Freeeeeet/barber_bot/internal/model"
	"github.com/Freeeeeet/barber_bot/internal/repository/memory"
)

var monday = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []*model.Appointment
	err   error
}

func (n *recordingNotifier) NotifyCancellation(_ context.Context, appt *model.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, appt)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type fixture struct {
	store    *memory.Store
	clock    *clock.Fake
	cache    *cache.Cache
	checker  *availability.Checker
	slots    *availability.SlotGenerator
	notifier *recordingNotifier
	booking  *BookingService
	barber   *BarberService
	cleanup  *CleanupService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	fake := clock.NewFake(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	store := memory.NewStore(fake)
	services := catalog.Default(logger)
	c := cache.New(cache.NewMemoryStore(fake), cache.DefaultTTL, logger)
	checker := availability.NewChecker(store, services.DurationOf, c, logger)

	slots, err := availability.NewSlotGenerator(availability.DefaultSlotConfig(), fake)
	require.NoError(t, err)

	notifier := &recordingNotifier{}

	return &fixture{
		store:    store,
		clock:    fake,
		cache:    c,
		checker:  checker,
		slots:    slots,
		notifier: notifier,
		booking:  NewBookingService(store, checker, slots, services, c, notifier, logger),
		barber:   NewBarberService(store, store, checker, services, c, logger),
		cleanup:  NewCleanupService(store, slots, checker, c, logger),
	}
}

func bookingInput(date time.Time, start, service string) model.CreateAppointmentInput {
	return model.CreateAppointmentInput{
		ClientName:  "Ana",
		Phone:       "11999990000",
		ServiceName: service,
		Date:        date,
		StartTime:   start,
	}
}

func TestEndToEnd_OpenSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open, err := f.booking.GetOpenSlots(ctx, monday, monday.Weekday(), 30)
	require.NoError(t, err)
	assert.False(t, open.Degraded)
	require.Len(t, open.Slots, 16)
	assert.Equal(t, "09:00", open.Slots[0])
	assert.Equal(t, "16:30", open.Slots[15])

	_, err = f.booking.CreateAppointment(ctx, bookingInput(monday, "10:00", "Corte + Barba"))
	require.NoError(t, err)

	// The first answer is still within its TTL; the write must have invalidated it.
	open, err = f.booking.GetOpenSlots(ctx, monday, monday.Weekday(), 30)
	require.NoError(t, err)
	assert.NotContains(t, open.Slots, "10:00")
	assert.NotContains(t, open.Slots, "10:30")
	assert.Contains(t, open.Slots, "09:30")
	assert.Contains(t, open.Slots, "11:00")
}

func TestOpenSlots_GridAndServiceListingsDoNotShareCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	grid, err := f.booking.GetOpenSlots(ctx, monday, monday.Weekday(), 50)
	require.NoError(t, err)
	require.Len(t, grid.Slots, 16)
	assert.Equal(t, "16:30", grid.Slots[15])

	fitting, err := f.booking.SlotsForService(ctx, monday, "Corte + Barba")
	require.NoError(t, err)
	assert.Equal(t, "16:00", fitting.Slots[len(fitting.Slots)-1], "a 50 minute service must end by closing")

	grid, err = f.booking.GetOpenSlots(ctx, monday, monday.Weekday(), 50)
	require.NoError(t, err)
	assert.Len(t, grid.Slots, 16)
}

func TestOpenSlots_ServiceListingSkipsPastSlotsAfterGridListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Set(time.Date(2024, 6, 10, 12, 5, 0, 0, time.UTC))

	grid, err := f.booking.GetOpenSlots(ctx, monday, monday.Weekday(), 30)
	require.NoError(t, err)
	assert.Equal(t, "09:00", grid.Slots[0])

	fitting, err := f.booking.SlotsForService(ctx, monday, "Corte de Cabelo")
	require.NoError(t, err)
	require.NotEmpty(t, fitting.Slots)
	assert.NotContains(t, fitting.Slots, "09:00")
	assert.NotContains(t, fitting.Slots, "12:00")
	assert.Equal(t, "12:30", fitting.Slots[0])
}

func TestCreateAppointment_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.booking.CreateAppointment(ctx, bookingInput(monday, "10:00", ""))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	in := bookingInput(monday, "10:00", "Barba")
	in.ClientName = "  "
	_, err = f.booking.CreateAppointment(ctx, in)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = f.booking.CreateAppointment(ctx, bookingInput(monday, "25:00", "Barba"))
	var parseErr *availability.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestCreateAppointment_StaleCacheDoesNotAllowDoubleBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	free, err := f.booking.CheckSlot(ctx, monday, "10:00", 30)
	require.NoError(t, err)
	require.True(t, free)

	// Written behind the booking service's back, so the cached answer is stale.
	require.NoError(t, f.store.InsertAppointment(ctx, &model.Appointment{
		ID:          uuid.New(),
		ClientName:  "Bruno",
		ServiceName: "Corte de Cabelo",
		Date:        monday,
		StartTime:   "10:00",
		Status:      model.AppointmentStatusConfirmed,
	}, 30))

	free, err = f.booking.CheckSlot(ctx, monday, "10:00", 30)
	require.NoError(t, err)
	assert.True(t, free, "advisory check is served from cache")

	_, err = f.booking.CreateAppointment(ctx, bookingInput(monday, "10:00", "Corte de Cabelo"))
	assert.ErrorIs(t, err, model.ErrSlotConflict)
}

func TestCreateAppointment_RecurringBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.barber.CreateRecurring(ctx, model.CreateRecurringInput{
		ClientName:  "Carlos",
		ServiceName: "Corte de Cabelo",
		Weekday:     int(time.Monday),
		StartTime:   "10:00",
	})
	require.NoError(t, err)

	_, err = f.booking.CreateAppointment(ctx, bookingInput(monday, "10:00", "Barba"))
	assert.ErrorIs(t, err, model.ErrSlotConflict)

	_, err = f.booking.CreateAppointment(ctx, bookingInput(monday, "10:30", "Barba"))
	assert.NoError(t, err)
}

func TestCreateAppointment_ConcurrentRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 8
	var (
		start     = make(chan struct{})
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		service := "Corte de Cabelo"
		if i%2 == 1 {
			service = "Corte + Barba"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.booking.CreateAppointment(ctx, bookingInput(monday, "10:00", service))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, model.ErrSlotConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	status := model.AppointmentStatusConfirmed
	confirmed, err := f.store.ListAppointments(ctx, model.AppointmentFilter{Date: &monday, Status: &status})
	require.NoError(t, err)
	assert.Len(t, confirmed, 1)
}

func TestCancelAppointment_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.booking.CreateAppointment(ctx, bookingInput(monday, "10:00", "Barba"))
	require.NoError(t, err)

	cancelled, err := f.booking.CancelAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, cancelled.IsCancelled())

	again, err := f.booking.CancelAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, again.IsCancelled())

	f.booking.WaitNotifications()
	assert.Equal(t, 1, f.notifier.count())

	_, err = f.booking.CancelAppointment(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)

	// The slot is bookable again.
	_, err = f.booking.CreateAppointment(ctx, bookingInput(monday, "10:00", "Barba"))
	assert.NoError(t, err)
}

func TestCancelAppointment_NotifierFailureKeepsCancellation(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("sms gateway down")
	ctx := context.Background()

	appt, err := f.booking.CreateAppointment(ctx, bookingInput(monday, "10:00", "Barba"))
	require.NoError(t, err)

	_, err = f.booking.CancelAppointment(ctx, appt.ID)
	require.NoError(t, err)
	f.booking.WaitNotifications()

	stored, err := f.booking.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCancelled())
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.booking.CreateAppointment(ctx, bookingInput(monday, "10:00", "Barba"))
	require.NoError(t, err)

	same, err := f.booking.UpdateStatus(ctx, appt.ID, model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, same.Status)

	_, err = f.booking.UpdateStatus(ctx, appt.ID, "pending")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	cancelled, err := f.booking.UpdateStatus(ctx, appt.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.True(t, cancelled.IsCancelled())

	_, err = f.booking.UpdateStatus(ctx, appt.ID, model.AppointmentStatusConfirmed)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = f.booking.UpdateStatus(ctx, uuid.New(), model.AppointmentStatusCancelled)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGetOpenSlots_Degraded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.booking.CreateAppointment(ctx, bookingInput(monday, "10:00", "Corte de Cabelo"))
	require.NoError(t, err)

	f.store.SetFailure(errors.New("connection refused"))
	defer f.store.SetFailure(nil)

	// Past the TTL so the cached day list cannot answer.
	f.clock.Advance(5 * time.Second)

	open, err := f.booking.GetOpenSlots(ctx, monday, monday.Weekday(), 30)
	require.NoError(t, err)
	assert.True(t, open.Degraded)
	assert.NotContains(t, open.Slots, "10:00")
	assert.Len(t, open.Slots, 15)

	_, err = f.booking.CreateAppointment(ctx, bookingInput(monday, "14:00", "Barba"))
	assert.True(t, model.IsDataSourceError(err), "writes never degrade")
}

func TestSlotsForService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open, err := f.booking.SlotsForService(ctx, monday, "Corte + Barba")
	require.NoError(t, err)
	require.NotEmpty(t, open.Slots)
	assert.Equal(t, "16:00", open.Slots[len(open.Slots)-1])

	// Today at 16:10 nothing fits a 50 minute service any more.
	f.clock.Set(time.Date(2024, 6, 10, 16, 10, 0, 0, time.UTC))
	open, err = f.booking.SlotsForService(ctx, monday, "Corte + Barba")
	require.NoError(t, err)
	assert.Empty(t, open.Slots)
}

func TestClientAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tg := int64(99)

	in := bookingInput(monday, "10:00", "Barba")
	in.TelegramID = &tg
	_, err := f.booking.CreateAppointment(ctx, in)
	require.NoError(t, err)

	other := bookingInput(monday, "11:00", "Barba")
	_, err = f.booking.CreateAppointment(ctx, other)
	require.NoError(t, err)

	mine, err := f.booking.ClientAppointments(ctx, ClientRef{TelegramID: &tg})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "10:00", mine[0].StartTime)

	_, err = f.booking.ClientAppointments(ctx, ClientRef{})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
