package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether the status is one of the persisted values
func (s AppointmentStatus) Valid() bool {
	return s == AppointmentStatusConfirmed || s == AppointmentStatusCancelled
}

// Appointment is a one-off booking for a calendar date
type Appointment struct {
	ID          uuid.UUID         `json:"id"`
	ClientName  string            `json:"client_name"`
	Phone       string            `json:"phone"`
	ServiceName string            `json:"service_name"`
	Date        time.Time         `json:"date"`       // UTC midnight
	StartTime   string            `json:"start_time"` // HH:MM
	Status      AppointmentStatus `json:"status"`
	Email       string            `json:"email,omitempty"`
	TelegramID  *int64            `json:"telegram_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// IsCancelled checks if the appointment no longer occupies its slot
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// Weekday returns the weekday of the appointment date
func (a *Appointment) Weekday() time.Weekday {
	return a.Date.Weekday()
}

// AppointmentFilter narrows ListAppointments. Zero fields are ignored.
type AppointmentFilter struct {
	Date       *time.Time
	Status     *AppointmentStatus
	Email      string
	TelegramID *int64
}

// Matches applies the filter to a single record
func (f AppointmentFilter) Matches(a *Appointment) bool {
	if f.Date != nil && !SameDate(*f.Date, a.Date) {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.Email != "" && a.Email != f.Email {
		return false
	}
	if f.TelegramID != nil && (a.TelegramID == nil || *a.TelegramID != *f.TelegramID) {
		return false
	}
	return true
}

// CreateAppointmentInput is what a client or the barber submits
type CreateAppointmentInput struct {
	ClientName  string    `json:"client_name"`
	Phone       string    `json:"phone"`
	ServiceName string    `json:"service_name"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	Email       string    `json:"email,omitempty"`
	TelegramID  *int64    `json:"telegram_id,omitempty"`
}
