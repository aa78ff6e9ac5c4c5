package client

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/barber_bot/internal/model"
	"github.com/Freeeeeet/barber_bot/internal/service"
)

// HandleMyBookings redraws the client's upcoming appointments
func HandleMyBookings(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	telegramID := hc.TelegramID
	appts, err := h.BookingService.ClientAppointments(ctx, service.ClientRef{TelegramID: &telegramID})
	if err != nil {
		hc.AnswerError("Failed to list client appointments", err)
		return
	}

	text, kb := common.BuildAppointmentsScreen(appts)
	hc.Show(text, kb)
}

// HandleCancelAppointment asks the owner to confirm a cancellation
func HandleCancelAppointment(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	appt, err := ownedAppointment(hc, common.CancelAppointment)
	if err != nil {
		hc.AnswerError("Cancel request rejected", err)
		return
	}

	text, kb := common.BuildCancelConfirmScreen(appt)
	hc.Show(text, kb)
}

// HandleConfirmCancel cancels the appointment; repeating it is harmless
func HandleConfirmCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	appt, err := ownedAppointment(hc, common.ConfirmCancel)
	if err != nil {
		hc.AnswerError("Cancel confirmation rejected", err)
		return
	}

	cancelled, err := h.BookingService.CancelAppointment(ctx, appt.ID)
	if err != nil {
		hc.AnswerError("Failed to cancel appointment", err)
		return
	}

	hc.Show("✅ Agendamento cancelado.\n\n"+formatting.FormatAppointment(cancelled), nil)
}

// ownedAppointment loads the appointment in the callback data and checks
// that the presser booked it or is the barber.
func ownedAppointment(hc *common.HandlerContext, prefix string) (*model.Appointment, error) {
	id, err := common.ParseIDFromCallback(hc.Callback.Data, prefix)
	if err != nil {
		return nil, err
	}

	appt, err := hc.Handler.BookingService.GetAppointment(hc.Ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := appt.TelegramID != nil && *appt.TelegramID == hc.TelegramID
	if !isOwner && hc.RequireBarber() != nil {
		return nil, common.ErrNotOwner
	}
	return appt, nil
}
