package model

import "github.com/google/uuid"

// ScheduleEntry is one line of the barber's daily schedule
type ScheduleEntry struct {
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	ClientName  string    `json:"client_name"`
	Phone       string    `json:"phone"`
	ServiceName string    `json:"service_name"`
	Recurring   bool      `json:"recurring"`
	SourceID    uuid.UUID `json:"source_id"` // appointment or recurring appointment id
}

// CleanupResult reports what the cleanup process removed
type CleanupResult struct {
	Cancelled int `json:"cancelled"`
	Expired   int `json:"expired"`
	Total     int `json:"total"`
}
