package formatting

import (
	"fmt"
	"time"
)

var weekdayNames = []string{
	"Domingo",
	"Segunda-feira",
	"Terça-feira",
	"Quarta-feira",
	"Quinta-feira",
	"Sexta-feira",
	"Sábado",
}

var weekdayShortNames = []string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// FormatDate renders a civil date as DD/MM/YYYY
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatDateWithWeekday renders "Seg, 10/06"
func FormatDateWithWeekday(t time.Time) string {
	return fmt.Sprintf("%s, %s", GetWeekdayShortName(int(t.Weekday())), t.Format("02/01"))
}

// FormatTimeRange renders "09:00-09:30"
func FormatTimeRange(start, end string) string {
	return start + "-" + end
}

// FormatDuration renders minutes as "30 min", "1h" or "1h30"
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%02d", hours, mins)
}

func GetWeekdayName(weekday int) string {
	if weekday >= 0 && weekday < len(weekdayNames) {
		return weekdayNames[weekday]
	}
	return "Desconhecido"
}

func GetWeekdayShortName(weekday int) string {
	if weekday >= 0 && weekday < len(weekdayShortNames) {
		return weekdayShortNames[weekday]
	}
	return "?"
}
