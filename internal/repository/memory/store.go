// Package memory is an in-process storage collaborator with the same
// contract as the PostgreSQL repositories. Overlap is re-checked under the
// store mutex at insert time, which makes it the linearization point for
// concurrent bookings.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/changes"
	"github.com/Freeeeeet/barber_bot/internal/clock"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

type storedAppointment struct {
	appt     model.Appointment
	duration int
}

type Store struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*storedAppointment
	recurring    map[uuid.UUID]*model.RecurringAppointment
	users        map[int64]*model.User
	nextUserID   int64

	hub   *changes.Hub
	clock clock.Clock

	// Fail makes every call return the given error when non-nil; tests use it
	// to simulate an unavailable data source.
	failMu sync.RWMutex
	fail   error
}

func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Store{
		appointments: make(map[uuid.UUID]*storedAppointment),
		recurring:    make(map[uuid.UUID]*model.RecurringAppointment),
		users:        make(map[int64]*model.User),
		hub:          changes.NewHub(),
		clock:        clk,
	}
}

// SetFailure makes subsequent calls fail with err; nil restores normal operation
func (s *Store) SetFailure(err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.fail = err
}

func (s *Store) failure() error {
	s.failMu.RLock()
	defer s.failMu.RUnlock()
	return s.fail
}

// Subscribe implements changes.Feed; events are delivered synchronously
// after the change is committed.
func (s *Store) Subscribe(ctx context.Context, filter changes.Filter, fn changes.Handler) (func(), error) {
	if err := s.failure(); err != nil {
		return nil, err
	}
	return s.hub.Subscribe(ctx, filter, fn)
}

// Subscribers returns the number of active change subscriptions
func (s *Store) Subscribers() int {
	return s.hub.Subscribers()
}

func (s *Store) ListAppointments(_ context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	if err := s.failure(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Appointment
	for _, st := range s.appointments {
		if filter.Matches(&st.appt) {
			cp := st.appt
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *Store) GetAppointment(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	if err := s.failure(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.appointments[id]
	if !ok {
		return nil, nil
	}
	cp := st.appt
	return &cp, nil
}

// InsertAppointment stores a, failing with model.ErrSlotConflict when a
// confirmed appointment on the same date overlaps it.
func (s *Store) InsertAppointment(_ context.Context, a *model.Appointment, duration int) error {
	if err := s.failure(); err != nil {
		return err
	}

	start, err := availability.ToMinutes(a.StartTime)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if !a.IsCancelled() {
		for _, st := range s.appointments {
			if st.appt.IsCancelled() || !model.SameDate(st.appt.Date, a.Date) {
				continue
			}
			other, err := availability.ToMinutes(st.appt.StartTime)
			if err != nil {
				continue
			}
			if availability.OverlapsMinutes(start, duration, other, st.duration) {
				s.mu.Unlock()
				return model.ErrSlotConflict
			}
		}
	}

	a.Date = model.DateOf(a.Date)
	a.CreatedAt = s.clock.Now()
	s.appointments[a.ID] = &storedAppointment{appt: *a, duration: duration}
	inserted := *a
	s.mu.Unlock()

	s.hub.Publish(changes.Event{Type: changes.EventInsert, New: &inserted})
	return nil
}

func (s *Store) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if err := s.failure(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	st, ok := s.appointments[id]
	if !ok {
		s.mu.Unlock()
		return nil, model.ErrNotFound
	}
	old := st.appt
	st.appt.Status = status
	updated := st.appt
	s.mu.Unlock()

	s.hub.Publish(changes.Event{Type: changes.EventUpdate, Old: &old, New: &updated})
	out := updated
	return &out, nil
}

// DeleteForCleanup removes cancelled appointments and those dated before cutoff
func (s *Store) DeleteForCleanup(_ context.Context, cutoff time.Time) (model.CleanupResult, error) {
	if err := s.failure(); err != nil {
		return model.CleanupResult{}, err
	}

	limit := model.DateOf(cutoff)
	var (
		res     model.CleanupResult
		removed []model.Appointment
	)

	s.mu.Lock()
	for id, st := range s.appointments {
		switch {
		case st.appt.IsCancelled():
			res.Cancelled++
		case st.appt.Date.Before(limit):
			res.Expired++
		default:
			continue
		}
		removed = append(removed, st.appt)
		delete(s.appointments, id)
	}
	s.mu.Unlock()

	for i := range removed {
		s.hub.Publish(changes.Event{Type: changes.EventDelete, Old: &removed[i]})
	}

	res.Total = res.Cancelled + res.Expired
	return res, nil
}

func (s *Store) ListRecurring(_ context.Context, filter model.RecurringFilter) ([]*model.RecurringAppointment, error) {
	if err := s.failure(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.RecurringAppointment
	for _, r := range s.recurring {
		if filter.Matches(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weekday != out[j].Weekday {
			return out[i].Weekday < out[j].Weekday
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *Store) GetRecurring(_ context.Context, id uuid.UUID) (*model.RecurringAppointment, error) {
	if err := s.failure(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recurring[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *Store) InsertRecurring(_ context.Context, r *model.RecurringAppointment) error {
	if err := s.failure(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.CreatedAt = s.clock.Now()
	cp := *r
	s.recurring[r.ID] = &cp
	return nil
}

func (s *Store) UpdateRecurringStatus(_ context.Context, id uuid.UUID, status model.RecurringStatus) (*model.RecurringAppointment, error) {
	if err := s.failure(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recurring[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	r.Status = status
	cp := *r
	return &cp, nil
}

func (s *Store) DeleteRecurring(_ context.Context, id uuid.UUID) error {
	if err := s.failure(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recurring[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.recurring, id)
	return nil
}

func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	if err := s.failure(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.TelegramID]; ok {
		return model.ErrUserExists
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.clock.Now()
	cp := *user
	s.users[user.TelegramID] = &cp
	return nil
}

func (s *Store) GetUserByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	if err := s.failure(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[telegramID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *Store) UpdateUser(_ context.Context, user *model.User) error {
	if err := s.failure(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for tgID, u := range s.users {
		if u.ID == user.ID {
			delete(s.users, tgID)
			cp := *user
			s.users[user.TelegramID] = &cp
			return nil
		}
	}
	return model.ErrNotFound
}
