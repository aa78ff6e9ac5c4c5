package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

// requireUser loads the sender, registering unknown accounts on the fly
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}

	from := update.Message.From
	user, err := h.userService.GetByTelegramID(ctx, from.ID)
	if err == nil && user == nil {
		user, err = h.userService.RegisterUser(ctx, from.ID, from.Username, from.FirstName, from.LastName)
	}
	if err != nil {
		h.logger.Error("Failed to load user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Ocorreu um erro. Tente novamente mais tarde.")
		return nil, false
	}

	return user, true
}

// requireBarber lets only the configured barber account through
func (h *Handlers) requireBarber(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	if update.Message == nil || update.Message.From == nil {
		return false
	}

	if !h.userService.IsBarber(update.Message.From.ID) {
		h.logger.Warn("Barber command from another account",
			zap.Int64("telegram_id", update.Message.From.ID),
			zap.String("text", update.Message.Text))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(common.ErrNotBarber))
		return false
	}

	return true
}

func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendScreen sends an HTML message with an optional inline keyboard
func (h *Handlers) sendScreen(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
