package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/barber_bot/internal/clock"
)

func newTestGenerator(t *testing.T, now time.Time) *SlotGenerator {
	t.Helper()
	gen, err := NewSlotGenerator(DefaultSlotConfig(), clock.NewFake(now))
	require.NoError(t, err)
	return gen
}

func TestInitialSlots(t *testing.T) {
	gen := newTestGenerator(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	slots := gen.InitialSlots()
	require.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "16:30", slots[15])
}

func TestSlotsFor_FutureDate(t *testing.T) {
	gen := newTestGenerator(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	assert.Len(t, gen.SlotsFor(date, 30), 16)

	long := gen.SlotsFor(date, 50)
	require.NotEmpty(t, long)
	assert.Equal(t, "16:00", long[len(long)-1], "a 50 minute service starting 16:30 would end after closing")
}

func TestSlotsFor_TodayDropsPast(t *testing.T) {
	gen := newTestGenerator(t, time.Date(2024, 6, 10, 11, 10, 0, 0, time.UTC))

	slots := gen.SlotsFor(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), 30)
	require.NotEmpty(t, slots)
	assert.Equal(t, "11:30", slots[0])
	assert.Equal(t, "16:30", slots[len(slots)-1])
}

func TestSlotsFor_UsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	cfg := DefaultSlotConfig()
	cfg.Location = loc

	// 01:00 UTC on the 11th is still the 10th at 22:00 local time.
	gen, err := NewSlotGenerator(cfg, clock.NewFake(time.Date(2024, 6, 11, 1, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	assert.Empty(t, gen.SlotsFor(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), 30))
	assert.Len(t, gen.SlotsFor(time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), 30), 16)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), gen.Today())
}

func TestNewSlotGenerator_Invalid(t *testing.T) {
	cases := []SlotConfig{
		{OpenTime: "17:00", CloseTime: "09:00", StepMinutes: 30},
		{OpenTime: "09:00", CloseTime: "17:00", StepMinutes: 0},
		{OpenTime: "09:15", CloseTime: "17:00", StepMinutes: 30},
		{OpenTime: "nine", CloseTime: "17:00", StepMinutes: 30},
	}
	for _, cfg := range cases {
		_, err := NewSlotGenerator(cfg, nil)
		assert.Error(t, err, "%+v", cfg)
	}
}
