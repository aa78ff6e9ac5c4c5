package callbacks

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/barber_bot/internal/controller/state"
	"github.com/Freeeeeet/barber_bot/internal/service"
)

// Handler routes inline keyboard presses
type Handler struct {
	*callbacktypes.Handler
}

func NewHandler(
	userService *service.UserService,
	bookingService *service.BookingService,
	barberService *service.BarberService,
	cleanupService *service.CleanupService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handler {
	return &Handler{Handler: &callbacktypes.Handler{
		UserService:    userService,
		BookingService: bookingService,
		BarberService:  barberService,
		CleanupService: cleanupService,
		StateManager:   stateManager,
		Logger:         logger,
	}}
}

func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery

	h.Logger.Debug("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID),
	)

	Route(ctx, b, callback, h.Handler)
}
