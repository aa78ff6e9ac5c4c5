package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/barber_bot/internal/clock"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

const (
	DefaultOpenTime    = "09:00"
	DefaultCloseTime   = "17:00"
	DefaultStepMinutes = 30
)

// SlotConfig describes business hours. The same hours apply to every day.
type SlotConfig struct {
	OpenTime    string
	CloseTime   string
	StepMinutes int
	Location    *time.Location
}

// DefaultSlotConfig returns 09:00-17:00 every 30 minutes
func DefaultSlotConfig() SlotConfig {
	return SlotConfig{
		OpenTime:    DefaultOpenTime,
		CloseTime:   DefaultCloseTime,
		StepMinutes: DefaultStepMinutes,
		Location:    time.UTC,
	}
}

// SlotGenerator produces candidate start times across business hours
type SlotGenerator struct {
	open     int
	close    int
	step     int
	location *time.Location
	clock    clock.Clock
}

// NewSlotGenerator validates the business hours
func NewSlotGenerator(cfg SlotConfig, clk clock.Clock) (*SlotGenerator, error) {
	open, err := ToMinutes(cfg.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("open time: %w", err)
	}
	closing, err := ToMinutes(cfg.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("close time: %w", err)
	}
	if closing <= open {
		return nil, fmt.Errorf("close time %s must be after open time %s", cfg.CloseTime, cfg.OpenTime)
	}
	if cfg.StepMinutes <= 0 {
		return nil, fmt.Errorf("slot step must be positive, got %d", cfg.StepMinutes)
	}
	// Floor normalization in SlotsFor works on step boundaries from midnight.
	if open%cfg.StepMinutes != 0 {
		return nil, fmt.Errorf("open time %s is not aligned to a %d minute step", cfg.OpenTime, cfg.StepMinutes)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	if clk == nil {
		clk = clock.Real{}
	}

	return &SlotGenerator{
		open:     open,
		close:    closing,
		step:     cfg.StepMinutes,
		location: loc,
		clock:    clk,
	}, nil
}

// InitialSlots enumerates start times from open (inclusive) to close (exclusive)
func (g *SlotGenerator) InitialSlots() []string {
	slots := make([]string, 0, (g.close-g.open)/g.step+1)
	for m := g.open; m < g.close; m += g.step {
		slots = append(slots, FormatMinutes(m))
	}
	return slots
}

// SlotsFor returns the initial slots that a service of duration minutes can
// still use on date: past slots are dropped when date is today, and so are
// slots that would end after closing time.
func (g *SlotGenerator) SlotsFor(date time.Time, duration int) []string {
	now := g.clock.Now().In(g.location)
	isToday := model.SameDate(date, now)
	nowMinutes := now.Hour()*60 + now.Minute()

	seen := make(map[int]struct{})
	var starts []int
	for m := g.open; m < g.close; m += g.step {
		if isToday && m < nowMinutes {
			continue
		}
		if m+duration > g.close {
			continue
		}

		// Inputs are already step aligned; flooring keeps the output on the grid anyway.
		floored := (m / g.step) * g.step
		if _, ok := seen[floored]; ok {
			continue
		}
		seen[floored] = struct{}{}
		starts = append(starts, floored)
	}

	sort.Ints(starts)

	slots := make([]string, 0, len(starts))
	for _, m := range starts {
		slots = append(slots, FormatMinutes(m))
	}
	return slots
}

// Location returns the single timezone the shop operates in
func (g *SlotGenerator) Location() *time.Location {
	return g.location
}

// Today returns the current calendar date in the shop's timezone
func (g *SlotGenerator) Today() time.Time {
	return model.DateOf(g.clock.Now().In(g.location))
}

// CloseTime returns closing time as HH:MM
func (g *SlotGenerator) CloseTime() string {
	return FormatMinutes(g.close)
}
