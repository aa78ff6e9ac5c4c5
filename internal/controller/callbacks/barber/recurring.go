package barber

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/barber_bot/internal/controller/state"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

// HandleRecurringList redraws the weekly blocks
func HandleRecurringList(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithBarber(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.ClearState()
		showRecurring(hc)
	})
}

// HandleNewRecurring starts the text dialog for a new weekly block
func HandleNewRecurring(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithBarber(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.SetState(state.StateAwaitingRecurring)
		hc.Show(common.RecurringInputHelp, nil)
	})
}

// HandleToggleRecurring pauses an active block or reactivates a paused one
func HandleToggleRecurring(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithBarber(ctx, b, callback, h, func(hc *common.HandlerContext) {
		rec, err := findRecurring(hc, common.ToggleRecurring)
		if err != nil {
			hc.AnswerError("Invalid recurring toggle", err)
			return
		}

		next := model.RecurringStatusInactive
		if !rec.IsActive() {
			next = model.RecurringStatusActive
		}

		if _, err := h.BarberService.SetRecurringStatus(ctx, rec.ID, next); err != nil {
			hc.AnswerError("Failed to change recurring status", err)
			return
		}

		h.Logger.Info("Recurring block toggled via bot",
			zap.String("recurring_id", rec.ID.String()),
			zap.String("status", string(next)))

		showRecurring(hc)
	})
}

// HandleDeleteRecurring asks before deleting a block
func HandleDeleteRecurring(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithBarber(ctx, b, callback, h, func(hc *common.HandlerContext) {
		rec, err := findRecurring(hc, common.DeleteRecurring)
		if err != nil {
			hc.AnswerError("Invalid recurring delete", err)
			return
		}

		text, kb := common.BuildDeleteRecurringScreen(rec)
		hc.Show(text, kb)
	})
}

func HandleConfirmDeleteRecurring(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithBarber(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.ParseIDFromCallback(callback.Data, common.ConfirmDeleteRecur)
		if err != nil {
			hc.AnswerError("Invalid recurring delete confirmation", err)
			return
		}

		if err := h.BarberService.DeleteRecurring(ctx, id); err != nil {
			hc.AnswerError("Failed to delete recurring appointment", err)
			return
		}

		showRecurring(hc)
	})
}

func showRecurring(hc *common.HandlerContext) {
	recs, err := hc.Handler.BarberService.ListRecurring(hc.Ctx, model.RecurringFilter{})
	if err != nil {
		hc.AnswerError("Failed to list recurring appointments", err)
		return
	}

	text, kb := common.BuildRecurringScreen(recs)
	hc.Show(text, kb)
}

func findRecurring(hc *common.HandlerContext, prefix string) (*model.RecurringAppointment, error) {
	id, err := common.ParseIDFromCallback(hc.Callback.Data, prefix)
	if err != nil {
		return nil, err
	}
	return hc.Handler.BarberService.GetRecurring(hc.Ctx, id)
}
