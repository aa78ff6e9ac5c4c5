package formatting

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

// FormatService renders one catalog line
func FormatService(service model.Service) string {
	return fmt.Sprintf("✂️ <b>%s</b>\n   💰 %s | ⏱ %s",
		html.EscapeString(service.Name),
		FormatPriceShort(service.Price),
		FormatDuration(service.DurationMinutes))
}

// FormatServices renders the whole catalog
func FormatServices(services []model.Service) string {
	if len(services) == 0 {
		return "Nenhum serviço disponível no momento."
	}

	var sb strings.Builder
	sb.WriteString("💈 <b>Nossos serviços</b>\n\n")
	for i, service := range services {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(FormatService(service))
	}
	return sb.String()
}

// FormatAppointment renders an appointment as seen by its client
func FormatAppointment(a *model.Appointment) string {
	status := GetAppointmentStatusDisplay(a.Status)

	return fmt.Sprintf(
		"%s <b>%s</b>\n"+
			"📅 %s às %s\n"+
			"📊 %s",
		status.Emoji,
		html.EscapeString(a.ServiceName),
		FormatDateWithWeekday(a.Date),
		a.StartTime,
		status.Text,
	)
}

// FormatScheduleEntry renders one line of the barber's day
func FormatScheduleEntry(e model.ScheduleEntry) string {
	marker := ""
	if e.Recurring {
		marker = " 🔁"
	}

	line := fmt.Sprintf("🕐 <b>%s</b> %s%s\n   👤 %s",
		FormatTimeRange(e.StartTime, e.EndTime),
		html.EscapeString(e.ServiceName),
		marker,
		html.EscapeString(e.ClientName))
	if e.Phone != "" {
		line += " | 📞 " + html.EscapeString(e.Phone)
	}
	return line
}

// FormatSchedule renders the barber's daily schedule
func FormatSchedule(date time.Time, entries []model.ScheduleEntry) string {
	header := fmt.Sprintf("🗓 <b>Agenda de %s, %s</b>",
		GetWeekdayName(int(date.Weekday())), FormatDate(date))

	if len(entries) == 0 {
		return header + "\n\nNenhum atendimento marcado."
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(fmt.Sprintf("\n%d atendimento(s)\n", len(entries)))
	for _, e := range entries {
		sb.WriteString("\n")
		sb.WriteString(FormatScheduleEntry(e))
	}
	return sb.String()
}

// FormatRecurring renders a standing weekly block
func FormatRecurring(r *model.RecurringAppointment) string {
	status := GetRecurringStatusDisplay(r.Status)

	return fmt.Sprintf("%s <b>%s %s</b> %s\n   👤 %s | %s",
		status.Emoji,
		GetWeekdayName(r.Weekday),
		r.StartTime,
		html.EscapeString(r.ServiceName),
		html.EscapeString(r.ClientName),
		status.Text)
}

// FormatCleanupResult renders what a cleanup run removed
func FormatCleanupResult(res model.CleanupResult) string {
	if res.Total == 0 {
		return "🧹 Nada para limpar."
	}
	return fmt.Sprintf("🧹 Limpeza concluída\n\n"+
		"❌ Cancelados: %d\n"+
		"📅 Antigos: %d\n"+
		"Total removido: %d",
		res.Cancelled, res.Expired, res.Total)
}
