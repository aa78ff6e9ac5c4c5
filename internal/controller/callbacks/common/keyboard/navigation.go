package keyboard

import (
	"github.com/go-telegram/bot/models"
)

// Callback data shared by navigation buttons
const (
	NoopData         = "noop"
	BackToServices   = "back_to_services"
	BackToMyBookings = "my_bookings"
	BackToRecurring  = "recurring_list"
)

func BackButton(callbackData string) models.InlineKeyboardButton {
	return Button("⬅️ Voltar", callbackData)
}

func CancelButton(callbackData string) models.InlineKeyboardButton {
	return Button("❌ Cancelar", callbackData)
}

func ConfirmButton(callbackData string) models.InlineKeyboardButton {
	return Button("✅ Confirmar", callbackData)
}

// YesNoRow is a single Sim/Não row
func YesNoRow(yesCallback, noCallback string) []models.InlineKeyboardButton {
	return []models.InlineKeyboardButton{
		Button("✅ Sim", yesCallback),
		Button("❌ Não", noCallback),
	}
}

func (b *Builder) AddBackButton(callbackData string) *Builder {
	return b.Row(BackButton(callbackData))
}
