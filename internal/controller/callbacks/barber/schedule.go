package barber

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common"
)

// HandleViewSchedule moves the day view to the date in the callback data
func HandleViewSchedule(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithBarber(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, err := common.ParseDateFromCallback(callback.Data, common.ViewSchedule)
		if err != nil {
			hc.AnswerError("Invalid schedule date", err)
			return
		}

		entries, err := h.BarberService.DailySchedule(ctx, date)
		if err != nil {
			hc.AnswerError("Failed to load daily schedule", err)
			return
		}

		text, kb := common.BuildScheduleScreen(date, entries)
		hc.Show(text, kb)
	})
}
