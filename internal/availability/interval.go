// Package availability holds the overlap engine: time arithmetic on HH:MM
// strings, candidate slot generation and the availability checker.
package availability

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a malformed HH:MM value
type ParseError struct {
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse time %q: %s", e.Value, e.Reason)
}

// ToMinutes converts "HH:MM" into minutes since midnight
func ToMinutes(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, &ParseError{Value: hhmm, Reason: "expected HH:MM"}
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || strings.HasPrefix(parts[0], "+") || strings.HasPrefix(parts[0], "-") {
		return 0, &ParseError{Value: hhmm, Reason: "hour is not a number"}
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || strings.HasPrefix(parts[1], "+") || strings.HasPrefix(parts[1], "-") {
		return 0, &ParseError{Value: hhmm, Reason: "minute is not a number"}
	}

	if hours < 0 || hours > 23 {
		return 0, &ParseError{Value: hhmm, Reason: "hour out of range"}
	}
	if minutes < 0 || minutes > 59 {
		return 0, &ParseError{Value: hhmm, Reason: "minute out of range"}
	}

	return hours*60 + minutes, nil
}

// FormatMinutes converts minutes since midnight back into "HH:MM"
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Interval is a half-open range of minutes [Start, End)
type Interval struct {
	Start int
	End   int
}

// NewInterval builds the interval occupied by a booking of duration minutes
func NewInterval(startTime string, duration int) (Interval, error) {
	start, err := ToMinutes(startTime)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: start + duration}, nil
}

// Overlaps reports whether two intervals share at least one minute.
// Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// OverlapsMinutes is Overlaps on raw start/duration pairs
func OverlapsMinutes(start1, dur1, start2, dur2 int) bool {
	return Interval{Start: start1, End: start1 + dur1}.Overlaps(Interval{Start: start2, End: start2 + dur2})
}

// Overlaps parses both start times and tests the two bookings for intersection
func Overlaps(start1 string, dur1 int, start2 string, dur2 int) (bool, error) {
	a, err := NewInterval(start1, dur1)
	if err != nil {
		return false, err
	}
	b, err := NewInterval(start2, dur2)
	if err != nil {
		return false, err
	}
	return a.Overlaps(b), nil
}
