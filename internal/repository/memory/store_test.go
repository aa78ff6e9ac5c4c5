package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/barber_bot/internal/changes"
	"github.com/Freeeeeet/barber_bot/internal/clock"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

var day = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func newAppointment(date time.Time, start string) *model.Appointment {
	return &model.Appointment{
		ID:          uuid.New(),
		ClientName:  "Ana",
		ServiceName: "Corte de Cabelo",
		Date:        date,
		StartTime:   start,
		Status:      model.AppointmentStatusConfirmed,
	}
}

func TestInsertAppointment_Overlap(t *testing.T) {
	s := NewStore(clock.NewFake(day))
	ctx := context.Background()

	require.NoError(t, s.InsertAppointment(ctx, newAppointment(day, "10:00"), 50))

	assert.ErrorIs(t, s.InsertAppointment(ctx, newAppointment(day, "10:30"), 30), model.ErrSlotConflict)
	assert.NoError(t, s.InsertAppointment(ctx, newAppointment(day, "10:50"), 30), "touching intervals do not overlap")
	assert.NoError(t, s.InsertAppointment(ctx, newAppointment(day.AddDate(0, 0, 1), "10:30"), 30))

	all, err := s.ListAppointments(ctx, model.AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "10:00", all[0].StartTime)
	assert.Equal(t, "10:50", all[1].StartTime)
}

func TestInsertAppointment_CancelledFreesSlot(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	a := newAppointment(day, "10:00")
	require.NoError(t, s.InsertAppointment(ctx, a, 30))

	_, err := s.UpdateAppointmentStatus(ctx, a.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	assert.NoError(t, s.InsertAppointment(ctx, newAppointment(day, "10:00"), 30))

	_, err = s.UpdateAppointmentStatus(ctx, uuid.New(), model.AppointmentStatusCancelled)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteForCleanup(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	old := newAppointment(day.AddDate(0, 0, -3), "09:00")
	cancelled := newAppointment(day, "09:00")
	kept := newAppointment(day, "11:00")
	for _, a := range []*model.Appointment{old, cancelled, kept} {
		require.NoError(t, s.InsertAppointment(ctx, a, 30))
	}
	_, err := s.UpdateAppointmentStatus(ctx, cancelled.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	var deleted int
	_, err = s.Subscribe(ctx, changes.Filter{}, func(ev changes.Event) {
		if ev.Type == changes.EventDelete {
			deleted++
		}
	})
	require.NoError(t, err)

	res, err := s.DeleteForCleanup(ctx, day.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, model.CleanupResult{Cancelled: 1, Expired: 1, Total: 2}, res)
	assert.Equal(t, 2, deleted)

	left, err := s.ListAppointments(ctx, model.AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, kept.ID, left[0].ID)
}

func TestStore_PublishesChanges(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	var events []changes.Event
	unsubscribe, err := s.Subscribe(ctx, changes.Filter{Date: &day}, func(ev changes.Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	a := newAppointment(day, "10:00")
	require.NoError(t, s.InsertAppointment(ctx, a, 30))
	_, err = s.UpdateAppointmentStatus(ctx, a.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	require.NoError(t, s.InsertAppointment(ctx, newAppointment(day.AddDate(0, 0, 1), "10:00"), 30))

	require.Len(t, events, 2)
	assert.Equal(t, changes.EventInsert, events[0].Type)
	assert.Equal(t, changes.EventUpdate, events[1].Type)
	assert.Equal(t, model.AppointmentStatusConfirmed, events[1].Old.Status)
	assert.Equal(t, model.AppointmentStatusCancelled, events[1].New.Status)

	unsubscribe()
	require.NoError(t, s.InsertAppointment(ctx, newAppointment(day, "15:00"), 30))
	assert.Len(t, events, 2)
}

func TestRecurringCRUD(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	r := &model.RecurringAppointment{
		ID:          uuid.New(),
		ClientName:  "Carlos",
		ServiceName: "Barba",
		Weekday:     int(time.Monday),
		StartTime:   "10:00",
		Status:      model.RecurringStatusActive,
	}
	require.NoError(t, s.InsertRecurring(ctx, r))

	wd := int(time.Monday)
	active := model.RecurringStatusActive
	list, err := s.ListRecurring(ctx, model.RecurringFilter{Weekday: &wd, Status: &active})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.UpdateRecurringStatus(ctx, r.ID, model.RecurringStatusInactive)
	require.NoError(t, err)
	list, err = s.ListRecurring(ctx, model.RecurringFilter{Weekday: &wd, Status: &active})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, s.DeleteRecurring(ctx, r.ID))
	assert.ErrorIs(t, s.DeleteRecurring(ctx, r.ID), model.ErrNotFound)
}

func TestCreateUser_Duplicate(t *testing.T) {
	s := NewStore(clock.NewFake(day))
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &model.User{TelegramID: 7, FirstName: "Ana"}))
	err := s.CreateUser(ctx, &model.User{TelegramID: 7, FirstName: "Outra"})
	assert.ErrorIs(t, err, model.ErrUserExists)

	u, err := s.GetUserByTelegramID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.FirstName)
	assert.Equal(t, int64(1), u.ID)
}
