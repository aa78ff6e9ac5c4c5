package common

import (
	"errors"
	"strings"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrNotBarber      = errors.New("user is not the barber")
	ErrNotOwner       = errors.New("appointment belongs to another client")
	ErrNoMessage      = errors.New("no message in callback")
	ErrInvalidFormat  = errors.New("invalid callback format")
	ErrUnknownService = errors.New("unknown service")
)

// ConflictMessage is shown when a slot was taken between listing and booking
const ConflictMessage = "⛔ Este horário não está mais disponível, escolha outro."

// ErrorMessage maps an error to the text shown to the user
func ErrorMessage(err error) string {
	var parseErr *availability.ParseError

	switch {
	case errors.Is(err, ErrUserNotFound):
		return "❌ Usuário não encontrado. Use /start"
	case errors.Is(err, ErrNotBarber):
		return "❌ Esta função é exclusiva do barbeiro"
	case errors.Is(err, ErrNotOwner):
		return "❌ Este agendamento não é seu"
	case errors.Is(err, ErrNoMessage):
		return "❌ Erro ao processar a mensagem"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Formato de dados inválido"
	case errors.Is(err, ErrUnknownService):
		return "❌ Serviço não encontrado"
	case errors.Is(err, model.ErrSlotConflict):
		return ConflictMessage
	case errors.Is(err, model.ErrNotFound):
		return "❌ Agendamento não encontrado"
	case errors.Is(err, model.ErrInvalidTransition):
		return "❌ Não é possível alterar o status deste agendamento"
	case errors.Is(err, model.ErrInvalidInput), errors.As(err, &parseErr):
		return "❌ Dados inválidos"
	case model.IsDataSourceError(err):
		return "⚠️ Agenda temporariamente indisponível. Tente novamente em instantes."
	default:
		return "❌ Ocorreu um erro"
	}
}

// IsMessageNotModifiedError reports Telegram's refusal to apply an identical edit
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
