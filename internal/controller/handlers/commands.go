package handlers

import (
	"context"
	"fmt"
	"html"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/barber_bot/internal/controller/state"
	"github.com/Freeeeeet/barber_bot/internal/service"
)

const clientHelp = "/services - Serviços e preços\n" +
	"/book - Agendar um horário\n" +
	"/mybookings - Meus agendamentos\n" +
	"/cancel - Cancelar a operação atual\n" +
	"/help - Ajuda"

const barberHelp = "\n\nBarbeiro:\n" +
	"/schedule [AAAA-MM-DD] - Agenda do dia\n" +
	"/recurring - Horários fixos semanais\n" +
	"/cleanup - Remover agendamentos antigos e cancelados\n" +
	"/clearcache - Limpar o cache de disponibilidade"

// HandleStart registers the sender and greets them
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From
	user, err := h.userService.RegisterUser(ctx, from.ID, from.Username, from.FirstName, from.LastName)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Erro ao registrar. Tente novamente mais tarde.")
		return
	}

	text := fmt.Sprintf("👋 Olá, %s!\n\nBem-vindo à barbearia. Por aqui você agenda seu horário em poucos toques.\n\n%s",
		html.EscapeString(user.FirstName), clientHelp)
	if user.IsBarber {
		text += barberHelp
	}

	h.sendScreen(ctx, b, update.Message.Chat.ID, text, nil)
}

func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	text := "📚 <b>Comandos</b>\n\n" + clientHelp
	if h.userService.IsBarber(update.Message.From.ID) {
		text += barberHelp
	}

	h.sendScreen(ctx, b, update.Message.Chat.ID, text, nil)
}

// HandleCancel leaves the current dialog
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendScreen(ctx, b, update.Message.Chat.ID, "Nenhuma operação em andamento.", nil)
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendScreen(ctx, b, update.Message.Chat.ID, "✅ Operação cancelada.\n\nUse /help para ver os comandos.", nil)
}

func (h *Handlers) HandleServices(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := formatting.FormatServices(h.bookingService.Services()) + "\n\nPara agendar: /book"
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, nil)
}

// HandleBook starts the booking flow at the service choice
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireUser(ctx, b, update); !ok {
		return
	}

	h.stateManager.ClearState(update.Message.From.ID)

	text, kb := common.BuildServicesScreen(h.bookingService.Services())
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

func (h *Handlers) HandleMyBookings(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	telegramID := user.TelegramID
	appts, err := h.bookingService.ClientAppointments(ctx, service.ClientRef{TelegramID: &telegramID})
	if err != nil {
		h.logger.Error("Failed to list client appointments",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}

	text, kb := common.BuildAppointmentsScreen(appts)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}
