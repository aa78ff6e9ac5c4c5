package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

var weekdayAliases = map[string]int{
	"dom": 0, "domingo": 0,
	"seg": 1, "segunda": 1,
	"ter": 2, "terça": 2, "terca": 2,
	"qua": 3, "quarta": 3,
	"qui": 4, "quinta": 4,
	"sex": 5, "sexta": 5,
	"sáb": 6, "sab": 6, "sábado": 6, "sabado": 6,
}

// ParseRecurringInput reads "name; phone; service; weekday; HH:MM"
func ParseRecurringInput(text string) (model.CreateRecurringInput, error) {
	parts := strings.Split(text, ";")
	if len(parts) != 5 {
		return model.CreateRecurringInput{}, fmt.Errorf("%w: expected 5 fields separated by ';', got %d", model.ErrInvalidInput, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	weekday, err := parseWeekday(parts[3])
	if err != nil {
		return model.CreateRecurringInput{}, err
	}

	minutes, err := availability.ToMinutes(parts[4])
	if err != nil {
		return model.CreateRecurringInput{}, err
	}

	return model.CreateRecurringInput{
		ClientName:  parts[0],
		Phone:       parts[1],
		ServiceName: parts[2],
		Weekday:     weekday,
		StartTime:   availability.FormatMinutes(minutes),
	}, nil
}

func parseWeekday(s string) (int, error) {
	s = strings.ToLower(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("%w: weekday %d out of range", model.ErrInvalidInput, n)
		}
		return n, nil
	}
	if n, ok := weekdayAliases[strings.TrimSuffix(s, "-feira")]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", model.ErrInvalidInput, s)
}
