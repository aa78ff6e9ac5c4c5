package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

// HandleSchedule shows the barber's day; defaults to today
func (h *Handlers) HandleSchedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireBarber(ctx, b, update) {
		return
	}
	chatID := update.Message.Chat.ID

	date := h.bookingService.Today()
	if arg := commandArgument(update.Message.Text); arg != "" {
		parsed, err := model.ParseDate(arg)
		if err != nil {
			h.sendError(ctx, b, chatID, "❌ Data inválida. Use /schedule AAAA-MM-DD")
			return
		}
		date = parsed
	}

	entries, err := h.barberService.DailySchedule(ctx, date)
	if err != nil {
		h.logger.Error("Failed to load daily schedule", zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	text, kb := common.BuildScheduleScreen(date, entries)
	h.sendScreen(ctx, b, chatID, text, kb)
}

func (h *Handlers) HandleRecurring(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireBarber(ctx, b, update) {
		return
	}

	recs, err := h.barberService.ListRecurring(ctx, model.RecurringFilter{})
	if err != nil {
		h.logger.Error("Failed to list recurring appointments", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}

	text, kb := common.BuildRecurringScreen(recs)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleCleanup runs the retention cleanup on demand
func (h *Handlers) HandleCleanup(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireBarber(ctx, b, update) {
		return
	}

	res, err := h.cleanupService.Run(ctx)
	if err != nil {
		h.logger.Error("Manual cleanup failed", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}

	h.sendScreen(ctx, b, update.Message.Chat.ID, formatting.FormatCleanupResult(res), nil)
}

func (h *Handlers) HandleClearCache(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireBarber(ctx, b, update) {
		return
	}

	h.bookingService.ClearCache(ctx)
	h.sendScreen(ctx, b, update.Message.Chat.ID, "🧽 Cache de disponibilidade limpo.", nil)
}
