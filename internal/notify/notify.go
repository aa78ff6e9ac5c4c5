// Package notify delivers cancellation notices to the barber. Delivery is
// best effort; callers log failures and never roll anything back.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

type Notifier interface {
	NotifyCancellation(ctx context.Context, appt *model.Appointment) error
}

// Nop drops every notice
type Nop struct{}

func (Nop) NotifyCancellation(context.Context, *model.Appointment) error {
	return nil
}

// Multi fans a notice out to several notifiers and joins their errors
type Multi []Notifier

func (m Multi) NotifyCancellation(ctx context.Context, appt *model.Appointment) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyCancellation(ctx, appt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CancellationText renders the human readable notice
func CancellationText(appt *model.Appointment) string {
	text := fmt.Sprintf("❌ Agendamento cancelado\n\nCliente: %s\nServiço: %s\nData: %s às %s",
		appt.ClientName,
		appt.ServiceName,
		appt.Date.Format("02/01/2006"),
		appt.StartTime)
	if appt.Phone != "" {
		text += "\nTelefone: " + appt.Phone
	}
	return text
}
