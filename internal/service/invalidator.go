package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/cache"
	"github.com/Freeeeeet/barber_bot/internal/changes"
)

const (
	defaultPollInterval = 3 * time.Second
	initialBackoff      = time.Second
	maxBackoff          = time.Minute
)

// Invalidator keeps the availability cache and the local snapshot in step
// with committed changes. While the feed is down it clears the cache on a
// polling interval and retries the subscription with backoff.
type Invalidator struct {
	feed         changes.Feed
	cache        *cache.Cache
	snapshot     *availability.Snapshot
	logger       *zap.Logger
	pollInterval time.Duration
	minBackoff   time.Duration
	maxBackoff   time.Duration
}

func NewInvalidator(feed changes.Feed, availabilityCache *cache.Cache, checker *availability.Checker, logger *zap.Logger) *Invalidator {
	return &Invalidator{
		feed:         feed,
		cache:        availabilityCache,
		snapshot:     checker.Snapshot(),
		logger:       logger,
		pollInterval: defaultPollInterval,
		minBackoff:   initialBackoff,
		maxBackoff:   maxBackoff,
	}
}

// Run blocks until ctx is done
func (i *Invalidator) Run(ctx context.Context) error {
	backoff := i.minBackoff

	for {
		lost := make(chan struct{}, 1)
		unsubscribe, err := i.feed.Subscribe(ctx, changes.Filter{}, func(ev changes.Event) {
			if ev.Type == changes.EventStreamLost {
				select {
				case lost <- struct{}{}:
				default:
				}
				return
			}
			i.handle(ctx, ev)
		})

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			i.logger.Warn("Change feed unavailable, polling",
				zap.Duration("retry_in", backoff),
				zap.Error(err))

			if !i.poll(ctx, backoff) {
				return nil
			}
			backoff *= 2
			if backoff > i.maxBackoff {
				backoff = i.maxBackoff
			}
			continue
		}

		i.logger.Info("Subscribed to appointment changes")
		backoff = i.minBackoff
		// Changes may have been missed while unsubscribed.
		i.cache.Clear(ctx)

		select {
		case <-ctx.Done():
			unsubscribe()
			return nil
		case <-lost:
			unsubscribe()
			i.cache.Clear(ctx)
			i.logger.Warn("Change feed lost, resubscribing")
		}
	}
}

// poll clears the cache every pollInterval for d. It returns false when ctx ends.
func (i *Invalidator) poll(ctx context.Context, d time.Duration) bool {
	i.cache.Clear(ctx)

	deadline := time.NewTimer(d)
	defer deadline.Stop()
	ticker := time.NewTicker(i.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return true
		case <-ticker.C:
			i.cache.Clear(ctx)
		}
	}
}

func (i *Invalidator) handle(ctx context.Context, ev changes.Event) {
	for _, a := range ev.Records() {
		i.cache.Invalidate(ctx, a.Date, a.StartTime, a.Weekday())
	}
	i.snapshot.Apply(ev.Old, ev.New)

	i.logger.Debug("Applied appointment change", zap.String("type", string(ev.Type)))
}
