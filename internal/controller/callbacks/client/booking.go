package client

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/barber_bot/internal/controller/state"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

// HandleBackToServices shows the catalog again
func HandleBackToServices(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)
	hc.ClearState()

	text, kb := common.BuildServicesScreen(h.BookingService.Services())
	hc.Show(text, kb)
}

// HandleSelectService offers the booking window's days
func HandleSelectService(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	ref, svc, err := resolve(callback.Data, common.SelectService, h)
	if err != nil {
		hc.AnswerError("Invalid service selection", err)
		return
	}

	text, kb := common.BuildDatesScreen(ref.ServiceIndex, svc, h.BookingService.Today())
	hc.Show(text, kb)
}

// HandleSelectDate lists the open slots the service fits in
func HandleSelectDate(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	ref, svc, err := resolve(callback.Data, common.SelectDate, h)
	if err != nil {
		hc.AnswerError("Invalid date selection", err)
		return
	}

	showSlots(hc, ref, svc)
}

// HandleSelectSlot asks for a phone number when none is on file, otherwise
// shows the confirmation screen.
func HandleSelectSlot(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		ref, svc, err := resolve(callback.Data, common.SelectSlot, h)
		if err != nil {
			hc.AnswerError("Invalid slot selection", err)
			return
		}

		if hc.User.Phone == "" {
			hc.SetState(state.StateAwaitingPhone)
			hc.SetData(state.KeyServiceIndex, ref.ServiceIndex)
			hc.SetData(state.KeyDate, model.FormatDate(ref.Date))
			hc.SetData(state.KeyStartTime, ref.StartTime)

			hc.Show("📞 Envie seu telefone com DDD para concluir o agendamento.\n\n/cancel para desistir.", nil)
			return
		}

		text, kb := common.BuildConfirmScreen(ref, svc, clientName(hc.User), hc.User.Phone)
		hc.Show(text, kb)
	})
}

// HandleConfirmBooking writes the appointment. A slot taken in the meantime
// sends the client back to a refreshed slot list.
func HandleConfirmBooking(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		ref, svc, err := resolve(callback.Data, common.ConfirmBook, h)
		if err != nil || ref.StartTime == "" {
			hc.AnswerError("Invalid booking confirmation", errors.Join(common.ErrInvalidFormat, err))
			return
		}

		telegramID := hc.TelegramID
		appt, err := h.BookingService.CreateAppointment(ctx, model.CreateAppointmentInput{
			ClientName:  clientName(hc.User),
			Phone:       hc.User.Phone,
			ServiceName: svc.Name,
			Date:        ref.Date,
			StartTime:   ref.StartTime,
			TelegramID:  &telegramID,
		})
		if errors.Is(err, model.ErrSlotConflict) {
			refreshSlots(hc, common.SlotRef{ServiceIndex: ref.ServiceIndex, Date: ref.Date}, svc)
			return
		}
		if err != nil {
			hc.AnswerError("Failed to create appointment", err)
			return
		}

		h.Logger.Info("Appointment booked via bot",
			zap.String("appointment_id", appt.ID.String()),
			zap.Int64("telegram_id", telegramID))

		hc.Show(common.BuildBookedScreen(appt), nil)
	})
}

func showSlots(hc *common.HandlerContext, ref common.SlotRef, svc model.Service) {
	open, err := hc.Handler.BookingService.SlotsForService(hc.Ctx, ref.Date, svc.Name)
	if err != nil {
		hc.AnswerError("Failed to list open slots", err)
		return
	}

	text, kb := common.BuildSlotsScreen(ref, svc, open)
	hc.Show(text, kb)
}

// refreshSlots redraws the slot list and explains the conflict in an alert
func refreshSlots(hc *common.HandlerContext, ref common.SlotRef, svc model.Service) {
	open, err := hc.Handler.BookingService.SlotsForService(hc.Ctx, ref.Date, svc.Name)
	if err == nil {
		text, kb := common.BuildSlotsScreen(ref, svc, open)
		if editErr := hc.EditMessage(text, kb); editErr != nil {
			hc.Handler.Logger.Error("Failed to edit message", zap.Error(editErr))
		}
	}
	hc.AnswerAlert(common.ConflictMessage)
}

func resolve(data, prefix string, h *callbacktypes.Handler) (common.SlotRef, model.Service, error) {
	ref, err := common.ParseSlotRef(data, prefix)
	if err != nil {
		return common.SlotRef{}, model.Service{}, err
	}
	svc, err := common.ServiceAt(h.BookingService.Services(), ref.ServiceIndex)
	if err != nil {
		return common.SlotRef{}, model.Service{}, err
	}
	return ref, svc, nil
}

func clientName(u *model.User) string {
	if name := u.DisplayName(); name != "" {
		return name
	}
	return u.Username
}
