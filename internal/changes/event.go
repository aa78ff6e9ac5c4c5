// Package changes describes appointment change notifications and the feeds
// that deliver them.
package changes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	// EventStreamLost is emitted locally by a feed whose stream broke. It
	// carries no records and is never accepted by Parse.
	EventStreamLost EventType = "STREAM_LOST"
)

var ErrMalformedEvent = errors.New("malformed change event")

// Event is one committed change of an appointment. Insert carries only New,
// Delete only Old, Update both.
type Event struct {
	Type EventType
	Old  *model.Appointment
	New  *model.Appointment
}

// Records returns the non-nil sides of the event
func (e Event) Records() []*model.Appointment {
	out := make([]*model.Appointment, 0, 2)
	if e.Old != nil {
		out = append(out, e.Old)
	}
	if e.New != nil {
		out = append(out, e.New)
	}
	return out
}

type wireEvent struct {
	Type string      `json:"type"`
	Old  *wireRecord `json:"old"`
	New  *wireRecord `json:"new"`
}

type wireRecord struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"client_name"`
	Phone       string    `json:"phone"`
	ServiceName string    `json:"service_name"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	Status      string    `json:"status"`
	Email       *string   `json:"email"`
	TelegramID  *int64    `json:"telegram_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Parse decodes a notification payload. Unknown types, missing sides and
// malformed fields are rejected.
func Parse(payload []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	ev := Event{Type: EventType(strings.ToUpper(w.Type))}
	switch ev.Type {
	case EventInsert:
		if w.New == nil {
			return Event{}, fmt.Errorf("%w: insert without new record", ErrMalformedEvent)
		}
	case EventUpdate:
		if w.New == nil || w.Old == nil {
			return Event{}, fmt.Errorf("%w: update needs old and new records", ErrMalformedEvent)
		}
	case EventDelete:
		if w.Old == nil {
			return Event{}, fmt.Errorf("%w: delete without old record", ErrMalformedEvent)
		}
	default:
		return Event{}, fmt.Errorf("%w: unknown type %q", ErrMalformedEvent, w.Type)
	}

	var err error
	if w.Old != nil && ev.Type != EventInsert {
		if ev.Old, err = w.Old.toModel(); err != nil {
			return Event{}, fmt.Errorf("old record: %w", err)
		}
	}
	if w.New != nil && ev.Type != EventDelete {
		if ev.New, err = w.New.toModel(); err != nil {
			return Event{}, fmt.Errorf("new record: %w", err)
		}
	}
	return ev, nil
}

func (r *wireRecord) toModel() (*model.Appointment, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: id %q", ErrMalformedEvent, r.ID)
	}
	date, err := model.ParseDate(r.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q", ErrMalformedEvent, r.Date)
	}
	if _, err := availability.ToMinutes(r.StartTime); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	status := model.AppointmentStatus(r.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", ErrMalformedEvent, r.Status)
	}

	a := &model.Appointment{
		ID:          id,
		ClientName:  r.ClientName,
		Phone:       r.Phone,
		ServiceName: r.ServiceName,
		Date:        date,
		StartTime:   r.StartTime,
		Status:      status,
		TelegramID:  r.TelegramID,
		CreatedAt:   r.CreatedAt,
	}
	if r.Email != nil {
		a.Email = *r.Email
	}
	return a, nil
}

// Encode is the inverse of Parse, used by in-process feeds and tests
func Encode(ev Event) ([]byte, error) {
	w := wireEvent{Type: string(ev.Type)}
	if ev.Old != nil {
		w.Old = fromModel(ev.Old)
	}
	if ev.New != nil {
		w.New = fromModel(ev.New)
	}
	return json.Marshal(w)
}

func fromModel(a *model.Appointment) *wireRecord {
	r := &wireRecord{
		ID:          a.ID.String(),
		ClientName:  a.ClientName,
		Phone:       a.Phone,
		ServiceName: a.ServiceName,
		Date:        model.FormatDate(a.Date),
		StartTime:   a.StartTime,
		Status:      string(a.Status),
		TelegramID:  a.TelegramID,
		CreatedAt:   a.CreatedAt,
	}
	if a.Email != "" {
		email := a.Email
		r.Email = &email
	}
	return r
}
