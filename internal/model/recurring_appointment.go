package model

import (
	"time"

	"github.com/google/uuid"
)

type RecurringStatus string

const (
	RecurringStatusActive   RecurringStatus = "active"
	RecurringStatusInactive RecurringStatus = "inactive"
)

// Valid reports whether the status is one of the persisted values
func (s RecurringStatus) Valid() bool {
	return s == RecurringStatusActive || s == RecurringStatusInactive
}

// RecurringAppointment is a standing weekly block with no end date
type RecurringAppointment struct {
	ID          uuid.UUID       `json:"id"`
	ClientName  string          `json:"client_name"`
	Phone       string          `json:"phone"`
	ServiceName string          `json:"service_name"`
	Weekday     int             `json:"weekday"`    // 0 = Sunday, 6 = Saturday
	StartTime   string          `json:"start_time"` // HH:MM
	Status      RecurringStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsActive checks if the block currently occupies its weekday
func (r *RecurringAppointment) IsActive() bool {
	return r.Status == RecurringStatusActive
}

// RecurringFilter narrows ListRecurring. Nil fields are ignored.
type RecurringFilter struct {
	Weekday *int
	Status  *RecurringStatus
}

// Matches applies the filter to a single record
func (f RecurringFilter) Matches(r *RecurringAppointment) bool {
	if f.Weekday != nil && r.Weekday != *f.Weekday {
		return false
	}
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	return true
}

// CreateRecurringInput is submitted by the barber
type CreateRecurringInput struct {
	ClientName  string `json:"client_name"`
	Phone       string `json:"phone"`
	ServiceName string `json:"service_name"`
	Weekday     int    `json:"weekday"`
	StartTime   string `json:"start_time"`
}
