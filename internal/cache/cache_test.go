package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/clock"
)

var (
	day  = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	grid = []string{"09:00", "09:30", "10:00"}
)

func newTestCache() (*Cache, *MemoryStore, *clock.Fake) {
	fake := clock.NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryStore(fake)
	return New(store, DefaultTTL, zap.NewNop()), store, fake
}

func TestMemoryStore_FixedTTL(t *testing.T) {
	c, _, fake := newTestCache()
	ctx := context.Background()

	c.PutNormalFree(ctx, day, "09:00", 30, true)

	fake.Advance(2 * time.Second)
	free, ok := c.NormalFree(ctx, day, "09:00", 30)
	require.True(t, ok)
	assert.True(t, free)

	// Reads do not extend the lifetime.
	fake.Advance(1 * time.Second)
	_, ok = c.NormalFree(ctx, day, "09:00", 30)
	assert.True(t, ok, "exactly at the TTL the entry is still fresh")

	fake.Advance(1 * time.Millisecond)
	_, ok = c.NormalFree(ctx, day, "09:00", 30)
	assert.False(t, ok)
}

func TestCache_KeysIncludeDuration(t *testing.T) {
	c, _, _ := newTestCache()
	ctx := context.Background()

	c.PutNormalFree(ctx, day, "09:00", 30, true)
	_, ok := c.NormalFree(ctx, day, "09:00", 50)
	assert.False(t, ok)

	c.PutRecurringFree(ctx, time.Monday, "10:00", 30, false)
	free, ok := c.RecurringFree(ctx, time.Monday, "10:00", 30)
	require.True(t, ok)
	assert.False(t, free)
}

func TestCache_DaySlotsAreCopies(t *testing.T) {
	c, _, _ := newTestCache()
	ctx := context.Background()

	slots := []string{"09:00", "09:30"}
	c.PutDaySlots(ctx, day, 30, grid, slots)
	slots[0] = "changed"

	got, ok := c.DaySlots(ctx, day, 30, grid)
	require.True(t, ok)
	assert.Equal(t, []string{"09:00", "09:30"}, got)

	got[1] = "changed"
	again, _ := c.DaySlots(ctx, day, 30, grid)
	assert.Equal(t, "09:30", again[1])

	c.PutDaySlots(ctx, day, 50, grid, nil)
	empty, ok := c.DaySlots(ctx, day, 50, grid)
	require.True(t, ok)
	assert.Empty(t, empty)
}

func TestCache_DaySlotsKeyedByCandidates(t *testing.T) {
	c, _, _ := newTestCache()
	ctx := context.Background()
	fitting := []string{"09:00", "09:30"}

	c.PutDaySlots(ctx, day, 30, grid, grid)

	_, ok := c.DaySlots(ctx, day, 30, fitting)
	assert.False(t, ok, "another candidate list must miss")

	c.PutDaySlots(ctx, day, 30, fitting, []string{"09:30"})
	got, ok := c.DaySlots(ctx, day, 30, grid)
	require.True(t, ok)
	assert.Equal(t, grid, got)

	assert.NotEqual(t, DayKey(day, 30, grid), DayKey(day, 30, fitting))
	assert.True(t, strings.HasPrefix(DayKey(day, 30, fitting), dayPrefix(day)))

	c.Invalidate(ctx, day, "09:00", time.Monday)
	_, ok = c.DaySlots(ctx, day, 30, fitting)
	assert.False(t, ok)
	_, ok = c.DaySlots(ctx, day, 30, grid)
	assert.False(t, ok)
}

func TestCache_Invalidate(t *testing.T) {
	c, store, _ := newTestCache()
	ctx := context.Background()
	other := day.AddDate(0, 0, 1)

	c.PutNormalFree(ctx, day, "09:00", 30, true)
	c.PutNormalFree(ctx, day, "14:00", 50, true)
	c.PutNormalFree(ctx, other, "09:00", 30, true)
	c.PutRecurringFree(ctx, time.Monday, "09:00", 30, true)
	c.PutRecurringFree(ctx, time.Tuesday, "09:00", 30, true)
	c.PutDaySlots(ctx, day, 30, grid, []string{"09:00"})
	c.PutDaySlots(ctx, day, 50, grid, []string{"09:00"})
	c.PutDaySlots(ctx, other, 30, grid, []string{"09:00"})

	c.Invalidate(ctx, day, "09:00", time.Monday)

	_, ok := c.NormalFree(ctx, day, "09:00", 30)
	assert.False(t, ok)
	_, ok = c.NormalFree(ctx, day, "14:00", 50)
	assert.False(t, ok)
	_, ok = c.RecurringFree(ctx, time.Monday, "09:00", 30)
	assert.False(t, ok)
	_, ok = c.DaySlots(ctx, day, 30, grid)
	assert.False(t, ok)
	_, ok = c.DaySlots(ctx, day, 50, grid)
	assert.False(t, ok)

	_, ok = c.NormalFree(ctx, other, "09:00", 30)
	assert.True(t, ok)
	_, ok = c.RecurringFree(ctx, time.Tuesday, "09:00", 30)
	assert.True(t, ok)
	_, ok = c.DaySlots(ctx, other, 30, grid)
	assert.True(t, ok)

	c.Clear(ctx)
	assert.Zero(t, store.Len())
}

func TestCache_DisabledAlwaysMisses(t *testing.T) {
	c := Disabled()
	ctx := context.Background()

	c.PutNormalFree(ctx, day, "09:00", 30, true)
	_, ok := c.NormalFree(ctx, day, "09:00", 30)
	assert.False(t, ok)

	c.PutDaySlots(ctx, day, 30, grid, []string{"09:00"})
	_, ok = c.DaySlots(ctx, day, 30, grid)
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		c.Invalidate(ctx, day, "09:00", time.Monday)
		c.Clear(ctx)
	})
}

type failingStore struct{ *MemoryStore }

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

func TestCache_StoreErrorIsMiss(t *testing.T) {
	c := New(failingStore{MemoryStore: NewMemoryStore(nil)}, DefaultTTL, zap.NewNop())
	ctx := context.Background()

	c.PutNormalFree(ctx, day, "09:00", 30, true)
	_, ok := c.NormalFree(ctx, day, "09:00", 30)
	assert.False(t, ok)
}
