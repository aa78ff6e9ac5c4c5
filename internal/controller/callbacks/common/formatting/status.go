package formatting

import "github.com/Freeeeeet/barber_bot/internal/model"

// StatusDisplay pairs an emoji with a label
type StatusDisplay struct {
	Emoji string
	Text  string
}

func GetAppointmentStatusDisplay(status model.AppointmentStatus) StatusDisplay {
	displays := map[model.AppointmentStatus]StatusDisplay{
		model.AppointmentStatusConfirmed: {"✅", "Confirmado"},
		model.AppointmentStatusCancelled: {"❌", "Cancelado"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Desconhecido"}
}

func GetRecurringStatusDisplay(status model.RecurringStatus) StatusDisplay {
	displays := map[model.RecurringStatus]StatusDisplay{
		model.RecurringStatusActive:   {"🟢", "Ativo"},
		model.RecurringStatusInactive: {"⏸", "Pausado"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Desconhecido"}
}
