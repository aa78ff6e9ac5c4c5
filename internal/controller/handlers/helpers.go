package handlers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// NormalizePhone strips formatting characters and validates what is left
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if !phonePattern.MatchString(cleaned) {
		return "", fmt.Errorf("%w: phone %q", model.ErrInvalidInput, raw)
	}
	return cleaned, nil
}

// commandArgument returns the text after the command word
func commandArgument(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
