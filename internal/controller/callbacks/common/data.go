package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

// Callback data prefixes. Telegram limits callback data to 64 bytes,
// so services travel as catalog indexes and times as HHMM.
const (
	SelectService = "svc:"  // svc:2
	SelectDate    = "date:" // date:2:2024-06-10
	SelectSlot    = "slot:" // slot:2:2024-06-10:0930
	ConfirmBook   = "book:" // book:2:2024-06-10:0930

	CancelAppointment  = "appt_cancel:"         // appt_cancel:<uuid>
	ConfirmCancel      = "appt_confirm_cancel:" // appt_confirm_cancel:<uuid>
	ViewSchedule       = "sched:"               // sched:2024-06-10
	NewRecurring       = "rec_new"
	ToggleRecurring    = "rec_toggle:"         // rec_toggle:<uuid>
	DeleteRecurring    = "rec_delete:"         // rec_delete:<uuid>
	ConfirmDeleteRecur = "rec_confirm_delete:" // rec_confirm_delete:<uuid>
)

// SlotRef is the booking selection carried through the inline keyboards
type SlotRef struct {
	ServiceIndex int
	Date         time.Time // zero until a date is picked
	StartTime    string    // HH:MM, empty until a slot is picked
}

// Encode renders the ref after prefix, omitting the parts not chosen yet
func (r SlotRef) Encode(prefix string) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(strconv.Itoa(r.ServiceIndex))
	if !r.Date.IsZero() {
		sb.WriteString(":")
		sb.WriteString(model.FormatDate(r.Date))
		if r.StartTime != "" {
			sb.WriteString(":")
			sb.WriteString(strings.Replace(r.StartTime, ":", "", 1))
		}
	}
	return sb.String()
}

// ParseSlotRef decodes data produced by Encode with the same prefix
func ParseSlotRef(data, prefix string) (SlotRef, error) {
	if !strings.HasPrefix(data, prefix) {
		return SlotRef{}, ErrInvalidFormat
	}
	parts := strings.Split(strings.TrimPrefix(data, prefix), ":")
	if len(parts) > 3 {
		return SlotRef{}, ErrInvalidFormat
	}

	var ref SlotRef
	idx, err := strconv.Atoi(parts[0])
	if err != nil || idx < 0 {
		return SlotRef{}, ErrInvalidFormat
	}
	ref.ServiceIndex = idx

	if len(parts) >= 2 {
		date, err := model.ParseDate(parts[1])
		if err != nil {
			return SlotRef{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		ref.Date = date
	}

	if len(parts) == 3 {
		hhmm := parts[2]
		if len(hhmm) != 4 {
			return SlotRef{}, ErrInvalidFormat
		}
		startTime := hhmm[:2] + ":" + hhmm[2:]
		if _, err := availability.ToMinutes(startTime); err != nil {
			return SlotRef{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		ref.StartTime = startTime
	}

	return ref, nil
}

// ParseIDFromCallback extracts the uuid after prefix
func ParseIDFromCallback(data, prefix string) (uuid.UUID, error) {
	if !strings.HasPrefix(data, prefix) {
		return uuid.Nil, ErrInvalidFormat
	}
	id, err := uuid.Parse(strings.TrimPrefix(data, prefix))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return id, nil
}

// ParseDateFromCallback extracts the YYYY-MM-DD after prefix
func ParseDateFromCallback(data, prefix string) (time.Time, error) {
	if !strings.HasPrefix(data, prefix) {
		return time.Time{}, ErrInvalidFormat
	}
	date, err := model.ParseDate(strings.TrimPrefix(data, prefix))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return date, nil
}

// ServiceAt resolves a catalog index carried in callback data
func ServiceAt(services []model.Service, index int) (model.Service, error) {
	if index < 0 || index >= len(services) {
		return model.Service{}, ErrUnknownService
	}
	return services[index], nil
}
