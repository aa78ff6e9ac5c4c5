package common

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/barber_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/barber_bot/internal/model"
	"github.com/Freeeeeet/barber_bot/internal/service"
)

// BookingWindowDays is how many days ahead a client can pick from
const BookingWindowDays = 7

// BuildServicesScreen lists the catalog with one button per service
func BuildServicesScreen(services []model.Service) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()
	for i, svc := range services {
		label := fmt.Sprintf("✂️ %s (%s)", svc.Name, formatting.FormatPriceShort(svc.Price))
		kb.Row(keyboard.Button(label, SlotRef{ServiceIndex: i}.Encode(SelectService)))
	}

	text := formatting.FormatServices(services)
	if len(services) > 0 {
		text += "\n\nEscolha um serviço:"
	}
	return text, kb.Build()
}

// BuildDatesScreen offers the next BookingWindowDays days starting today
func BuildDatesScreen(serviceIndex int, svc model.Service, today time.Time) (string, *models.InlineKeyboardMarkup) {
	buttons := make([]models.InlineKeyboardButton, 0, BookingWindowDays)
	for i := 0; i < BookingWindowDays; i++ {
		date := today.AddDate(0, 0, i)
		ref := SlotRef{ServiceIndex: serviceIndex, Date: date}
		buttons = append(buttons, keyboard.Button(formatting.FormatDateWithWeekday(date), ref.Encode(SelectDate)))
	}

	text := fmt.Sprintf("✂️ <b>%s</b> | ⏱ %s\n\n📅 Escolha o dia:",
		html.EscapeString(svc.Name), formatting.FormatDuration(svc.DurationMinutes))

	kb := keyboard.NewBuilder().
		Grid(3, buttons...).
		AddBackButton(keyboard.BackToServices).
		Build()
	return text, kb
}

// BuildSlotsScreen offers the open start times of a day
func BuildSlotsScreen(ref SlotRef, svc model.Service, open service.OpenSlots) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✂️ <b>%s</b>\n📅 %s, %s\n\n",
		html.EscapeString(svc.Name),
		formatting.GetWeekdayName(int(ref.Date.Weekday())),
		formatting.FormatDate(ref.Date)))

	if len(open.Slots) == 0 {
		sb.WriteString("😕 Nenhum horário livre neste dia. Tente outra data.")
	} else {
		sb.WriteString("🕐 Escolha o horário:")
	}
	if open.Degraded {
		sb.WriteString("\n\n⚠️ Disponibilidade aproximada: a confirmação final acontece ao agendar.")
	}

	buttons := make([]models.InlineKeyboardButton, 0, len(open.Slots))
	for _, slot := range open.Slots {
		slotRef := SlotRef{ServiceIndex: ref.ServiceIndex, Date: ref.Date, StartTime: slot}
		buttons = append(buttons, keyboard.Button(slot, slotRef.Encode(SelectSlot)))
	}

	kb := keyboard.NewBuilder().
		Grid(4, buttons...).
		AddBackButton(SlotRef{ServiceIndex: ref.ServiceIndex}.Encode(SelectService)).
		Build()
	return sb.String(), kb
}

// BuildConfirmScreen summarises the booking before it is written
func BuildConfirmScreen(ref SlotRef, svc model.Service, clientName, phone string) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf(
		"📝 <b>Confirme seu agendamento</b>\n\n"+
			"✂️ Serviço: %s\n"+
			"💰 Valor: %s\n"+
			"📅 Data: %s\n"+
			"🕐 Horário: %s\n"+
			"👤 Nome: %s\n"+
			"📞 Telefone: %s",
		html.EscapeString(svc.Name),
		formatting.FormatPrice(svc.Price),
		formatting.FormatDateWithWeekday(ref.Date),
		ref.StartTime,
		html.EscapeString(clientName),
		html.EscapeString(phone),
	)

	kb := keyboard.NewBuilder().
		Row(
			keyboard.ConfirmButton(ref.Encode(ConfirmBook)),
			keyboard.BackButton(SlotRef{ServiceIndex: ref.ServiceIndex, Date: ref.Date}.Encode(SelectDate)),
		).
		Build()
	return text, kb
}

// BuildBookedScreen is shown after a successful booking
func BuildBookedScreen(appt *model.Appointment) string {
	return "🎉 <b>Agendamento confirmado!</b>\n\n" +
		formatting.FormatAppointment(appt) +
		"\n\nPara ver ou cancelar: /mybookings"
}

// BuildAppointmentsScreen lists a client's upcoming appointments with cancel buttons
func BuildAppointmentsScreen(appts []*model.Appointment) (string, *models.InlineKeyboardMarkup) {
	if len(appts) == 0 {
		return "📭 Você não tem agendamentos futuros.\n\nPara agendar: /book", nil
	}

	var sb strings.Builder
	sb.WriteString("📅 <b>Seus agendamentos</b>\n")

	kb := keyboard.NewBuilder()
	for _, a := range appts {
		sb.WriteString("\n")
		sb.WriteString(formatting.FormatAppointment(a))
		sb.WriteString("\n")

		if !a.IsCancelled() {
			label := fmt.Sprintf("❌ Cancelar %s %s", formatting.FormatDateWithWeekday(a.Date), a.StartTime)
			kb.Row(keyboard.Button(label, CancelAppointment+a.ID.String()))
		}
	}
	return sb.String(), kb.Build()
}

// BuildCancelConfirmScreen asks before cancelling an appointment
func BuildCancelConfirmScreen(appt *model.Appointment) (string, *models.InlineKeyboardMarkup) {
	text := "❓ <b>Cancelar este agendamento?</b>\n\n" + formatting.FormatAppointment(appt)

	kb := keyboard.NewBuilder().
		Row(keyboard.YesNoRow(ConfirmCancel+appt.ID.String(), keyboard.BackToMyBookings)...).
		Build()
	return text, kb
}

// BuildScheduleScreen is the barber's day view with day navigation
func BuildScheduleScreen(date time.Time, entries []model.ScheduleEntry) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder().
		AddDayPagination(ViewSchedule, date).
		Build()
	return formatting.FormatSchedule(date, entries), kb
}

// BuildRecurringScreen lists standing weekly blocks with toggle and delete buttons
func BuildRecurringScreen(recs []*model.RecurringAppointment) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("🔁 <b>Horários fixos semanais</b>\n")

	kb := keyboard.NewBuilder()
	if len(recs) == 0 {
		sb.WriteString("\nNenhum horário fixo cadastrado.")
	}
	for _, r := range recs {
		sb.WriteString("\n")
		sb.WriteString(formatting.FormatRecurring(r))

		short := fmt.Sprintf("%s %s", formatting.GetWeekdayShortName(r.Weekday), r.StartTime)
		toggle := "⏸ Pausar " + short
		if !r.IsActive() {
			toggle = "▶️ Ativar " + short
		}
		kb.Row(
			keyboard.Button(toggle, ToggleRecurring+r.ID.String()),
			keyboard.Button("🗑 Excluir", DeleteRecurring+r.ID.String()),
		)
	}

	kb.Row(keyboard.Button("➕ Novo horário fixo", NewRecurring))
	return sb.String(), kb.Build()
}

// BuildDeleteRecurringScreen asks before deleting a weekly block
func BuildDeleteRecurringScreen(rec *model.RecurringAppointment) (string, *models.InlineKeyboardMarkup) {
	text := "❓ <b>Excluir este horário fixo?</b>\n\n" + formatting.FormatRecurring(rec)

	kb := keyboard.NewBuilder().
		Row(keyboard.YesNoRow(ConfirmDeleteRecur+rec.ID.String(), keyboard.BackToRecurring)...).
		Build()
	return text, kb
}

// RecurringInputHelp explains the text format ParseRecurringInput accepts
const RecurringInputHelp = "➕ <b>Novo horário fixo</b>\n\n" +
	"Envie no formato:\n" +
	"<code>Nome; Telefone; Serviço; Dia; HH:MM</code>\n\n" +
	"Dia: 0 = domingo ... 6 = sábado, ou seg, ter, qua, qui, sex, sáb, dom.\n" +
	"Exemplo: <code>João Silva; 11999990000; Corte de Cabelo; seg; 10:00</code>\n\n" +
	"/cancel para desistir."
