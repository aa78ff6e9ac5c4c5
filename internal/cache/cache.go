package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// DefaultTTL is how long an availability answer is trusted
const DefaultTTL = 3000 * time.Millisecond

// Cache stores per-slot and per-day availability answers. A nil *Cache is
// valid and always misses, which is the safe "cache disabled" configuration.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a cache over store
func New(store Store, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Disabled returns the always-miss cache
func Disabled() *Cache {
	return nil
}

func (c *Cache) enabled() bool {
	return c != nil && c.store != nil
}

// NormalKey identifies a one-off availability check
func NormalKey(date time.Time, startTime string, duration int) string {
	return fmt.Sprintf("normal_%s_%s_%d", date.Format("2006-01-02"), startTime, duration)
}

// RecurringKey identifies a recurring availability check
func RecurringKey(weekday time.Weekday, startTime string, duration int) string {
	return fmt.Sprintf("recurring_%d_%s_%d", int(weekday), startTime, duration)
}

// DayKey identifies the open slot list of a date for a service duration and
// candidate list. Different candidate lists filtered for the same date and
// duration never share an entry.
func DayKey(date time.Time, duration int, candidates []string) string {
	sum := xxhash.Sum64String(strings.Join(candidates, ","))
	return fmt.Sprintf("available_times_%s_%d_%016x", date.Format("2006-01-02"), duration, sum)
}

func normalDatePrefix(date time.Time) string {
	return fmt.Sprintf("normal_%s_", date.Format("2006-01-02"))
}

func recurringWeekdayPrefix(weekday time.Weekday) string {
	return fmt.Sprintf("recurring_%d_", int(weekday))
}

func dayPrefix(date time.Time) string {
	return fmt.Sprintf("available_times_%s_", date.Format("2006-01-02"))
}

func (c *Cache) getBool(ctx context.Context, key string) (bool, bool) {
	if !c.enabled() {
		return false, false
	}
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Availability cache read failed", zap.String("key", key), zap.Error(err))
		return false, false
	}
	if !ok || len(raw) != 1 {
		return false, false
	}
	return raw[0] == '1', true
}

func (c *Cache) putBool(ctx context.Context, key string, value bool) {
	if !c.enabled() {
		return
	}
	raw := []byte{'0'}
	if value {
		raw[0] = '1'
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("Availability cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// NormalFree returns a cached one-off check result
func (c *Cache) NormalFree(ctx context.Context, date time.Time, startTime string, duration int) (free bool, hit bool) {
	return c.getBool(ctx, NormalKey(date, startTime, duration))
}

// PutNormalFree stores a one-off check result
func (c *Cache) PutNormalFree(ctx context.Context, date time.Time, startTime string, duration int, free bool) {
	c.putBool(ctx, NormalKey(date, startTime, duration), free)
}

// RecurringFree returns a cached recurring check result
func (c *Cache) RecurringFree(ctx context.Context, weekday time.Weekday, startTime string, duration int) (free bool, hit bool) {
	return c.getBool(ctx, RecurringKey(weekday, startTime, duration))
}

// PutRecurringFree stores a recurring check result
func (c *Cache) PutRecurringFree(ctx context.Context, weekday time.Weekday, startTime string, duration int, free bool) {
	c.putBool(ctx, RecurringKey(weekday, startTime, duration), free)
}

// DaySlots returns a copy of the cached open slot list
func (c *Cache) DaySlots(ctx context.Context, date time.Time, duration int, candidates []string) ([]string, bool) {
	if !c.enabled() {
		return nil, false
	}
	key := DayKey(date, duration, candidates)
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Availability cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var slots []string
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.logger.Warn("Dropping malformed cache entry", zap.String("key", key), zap.Error(err))
		_ = c.store.Delete(ctx, key)
		return nil, false
	}
	return slots, true
}

// PutDaySlots stores the open slots filtered from candidates
func (c *Cache) PutDaySlots(ctx context.Context, date time.Time, duration int, candidates, slots []string) {
	if !c.enabled() {
		return
	}
	if slots == nil {
		slots = []string{}
	}
	key := DayKey(date, duration, candidates)
	raw, err := json.Marshal(slots)
	if err != nil {
		c.logger.Warn("Encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("Availability cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every entry a booking at (date, startTime) can affect:
// one-off checks of that date, recurring checks of that weekday and the
// date's open slot lists.
func (c *Cache) Invalidate(ctx context.Context, date time.Time, startTime string, weekday time.Weekday) {
	if !c.enabled() {
		return
	}

	prefixes := []string{
		normalDatePrefix(date),
		recurringWeekdayPrefix(weekday),
		dayPrefix(date),
	}
	for _, prefix := range prefixes {
		if err := c.store.DeletePrefix(ctx, prefix); err != nil {
			c.logger.Warn("Availability cache invalidation failed",
				zap.String("prefix", prefix),
				zap.Error(err))
		}
	}

	c.logger.Debug("Availability cache invalidated",
		zap.String("date", date.Format("2006-01-02")),
		zap.String("start_time", startTime),
		zap.Int("weekday", int(weekday)))
}

// InvalidateKeys drops specific entries
func (c *Cache) InvalidateKeys(ctx context.Context, keys ...string) {
	if !c.enabled() {
		return
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.logger.Warn("Availability cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Clear drops every entry
func (c *Cache) Clear(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.store.Flush(ctx); err != nil {
		c.logger.Warn("Availability cache flush failed", zap.Error(err))
		return
	}
	c.logger.Debug("Availability cache cleared")
}
