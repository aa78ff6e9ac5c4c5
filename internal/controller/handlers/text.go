package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/barber_bot/internal/controller/state"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

// HandleTextMessage feeds free text into the sender's current dialog
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// commands have their own handlers
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	switch current := h.stateManager.GetState(telegramID); current {
	case state.StateNone:
		h.sendScreen(ctx, b, update.Message.Chat.ID, "Use /book para agendar ou /help para ver os comandos.", nil)
	case state.StateAwaitingPhone:
		h.handlePhoneStep(ctx, b, update)
	case state.StateAwaitingRecurring:
		h.handleRecurringStep(ctx, b, update)
	default:
		h.logger.Warn("Unknown dialog state", zap.String("state", string(current)))
		h.stateManager.ClearState(telegramID)
	}
}

// handlePhoneStep stores the phone and resumes the booking at confirmation
func (h *Handlers) handlePhoneStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	phone, err := NormalizePhone(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Telefone inválido. Envie apenas números com DDD, por exemplo 11987654321.")
		return
	}

	user, err := h.userService.SetPhone(ctx, telegramID, phone)
	if err != nil {
		h.logger.Error("Failed to store phone", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	idx, ok := h.stateManager.GetInt(telegramID, state.KeyServiceIndex)
	dateStr := h.stateManager.GetString(telegramID, state.KeyDate)
	startTime := h.stateManager.GetString(telegramID, state.KeyStartTime)
	h.stateManager.ClearState(telegramID)

	date, dateErr := model.ParseDate(dateStr)
	svc, svcErr := common.ServiceAt(h.bookingService.Services(), idx)
	if !ok || startTime == "" || dateErr != nil || svcErr != nil {
		h.logger.Warn("Booking dialog data missing",
			zap.Int64("telegram_id", telegramID),
			zap.Error(errors.Join(dateErr, svcErr)))
		h.sendError(ctx, b, chatID, "✅ Telefone salvo. Recomece o agendamento com /book.")
		return
	}

	ref := common.SlotRef{ServiceIndex: idx, Date: date, StartTime: startTime}
	text, kb := common.BuildConfirmScreen(ref, svc, user.DisplayName(), user.Phone)
	h.sendScreen(ctx, b, chatID, text, kb)
}

// handleRecurringStep creates the weekly block the barber described
func (h *Handlers) handleRecurringStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if !h.userService.IsBarber(telegramID) {
		h.stateManager.ClearState(telegramID)
		return
	}

	input, err := common.ParseRecurringInput(update.Message.Text)
	if err != nil {
		h.sendScreen(ctx, b, chatID, "❌ Formato inválido.\n\n"+common.RecurringInputHelp, nil)
		return
	}

	rec, err := h.barberService.CreateRecurring(ctx, input)
	if err != nil {
		h.logger.Warn("Recurring appointment rejected", zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err)+"\n\nEnvie outro horário ou /cancel.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendScreen(ctx, b, chatID, "✅ Horário fixo criado.\n\n"+formatting.FormatRecurring(rec)+"\n\n/recurring para ver todos.", nil)
}
