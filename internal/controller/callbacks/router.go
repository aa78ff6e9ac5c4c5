package callbacks

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/barber"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/client"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common/keyboard"
)

// Route dispatches a callback query by its data prefix
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	switch {
	case data == keyboard.NoopData:
		common.AnswerCallback(ctx, b, callback.ID, "")

	// ===== Client: booking =====
	case data == keyboard.BackToServices:
		client.HandleBackToServices(ctx, b, callback, h)
	case strings.HasPrefix(data, common.SelectService):
		client.HandleSelectService(ctx, b, callback, h)
	case strings.HasPrefix(data, common.SelectDate):
		client.HandleSelectDate(ctx, b, callback, h)
	case strings.HasPrefix(data, common.SelectSlot):
		client.HandleSelectSlot(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ConfirmBook):
		client.HandleConfirmBooking(ctx, b, callback, h)

	// ===== Client: own appointments =====
	case data == keyboard.BackToMyBookings:
		client.HandleMyBookings(ctx, b, callback, h)
	case strings.HasPrefix(data, common.CancelAppointment):
		client.HandleCancelAppointment(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ConfirmCancel):
		client.HandleConfirmCancel(ctx, b, callback, h)

	// ===== Barber =====
	case strings.HasPrefix(data, common.ViewSchedule):
		barber.HandleViewSchedule(ctx, b, callback, h)
	case data == keyboard.BackToRecurring:
		barber.HandleRecurringList(ctx, b, callback, h)
	case data == common.NewRecurring:
		barber.HandleNewRecurring(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ToggleRecurring):
		barber.HandleToggleRecurring(ctx, b, callback, h)
	case strings.HasPrefix(data, common.DeleteRecurring):
		barber.HandleDeleteRecurring(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ConfirmDeleteRecur):
		barber.HandleConfirmDeleteRecurring(ctx, b, callback, h)

	default:
		h.Logger.Warn("Unknown callback",
			zap.String("data", data),
			zap.Int64("user_id", callback.From.ID))
		common.AnswerCallback(ctx, b, callback.ID, "❌ Comando desconhecido")
	}
}
