package keyboard

import (
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

// DayPagination builds a previous/current/next day row; callbacks are prefix+YYYY-MM-DD
func DayPagination(prefix string, date time.Time) []models.InlineKeyboardButton {
	return []models.InlineKeyboardButton{
		Button("◀️", prefix+model.FormatDate(date.AddDate(0, 0, -1))),
		Button("📅 "+date.Format("02/01"), NoopData),
		Button("▶️", prefix+model.FormatDate(date.AddDate(0, 0, 1))),
	}
}

func (b *Builder) AddDayPagination(prefix string, date time.Time) *Builder {
	return b.Row(DayPagination(prefix, date)...)
}
