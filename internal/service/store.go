package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/barber_bot/internal/changes"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

// AppointmentStore is the storage collaborator for one-off appointments
type AppointmentStore interface {
	ListAppointments(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	InsertAppointment(ctx context.Context, a *model.Appointment, duration int) error
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
	DeleteForCleanup(ctx context.Context, cutoff time.Time) (model.CleanupResult, error)
}

// RecurringStore is the storage collaborator for weekly blocks
type RecurringStore interface {
	ListRecurring(ctx context.Context, filter model.RecurringFilter) ([]*model.RecurringAppointment, error)
	GetRecurring(ctx context.Context, id uuid.UUID) (*model.RecurringAppointment, error)
	InsertRecurring(ctx context.Context, r *model.RecurringAppointment) error
	UpdateRecurringStatus(ctx context.Context, id uuid.UUID, status model.RecurringStatus) (*model.RecurringAppointment, error)
	DeleteRecurring(ctx context.Context, id uuid.UUID) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

// Store is everything the services need from one backend
type Store interface {
	AppointmentStore
	RecurringStore
	UserStore
	changes.Feed
}
