package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramNotifier messages the barber's chat
type TelegramNotifier struct {
	sender messageSender
	chatID int64
}

func NewTelegramNotifier(sender messageSender, barberChatID int64) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: barberChatID}
}

func (n *TelegramNotifier) NotifyCancellation(ctx context.Context, appt *model.Appointment) error {
	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   CancellationText(appt),
	})
	if err != nil {
		return fmt.Errorf("send telegram notice: %w", err)
	}
	return nil
}
