package changes

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

// Filter narrows a subscription. A nil Date matches every event.
type Filter struct {
	Date *time.Time
}

// Matches reports whether either side of the event falls on the filter date
func (f Filter) Matches(ev Event) bool {
	if f.Date == nil {
		return true
	}
	for _, a := range ev.Records() {
		if model.SameDate(*f.Date, a.Date) {
			return true
		}
	}
	return false
}

// Handler receives events. It must not block for long.
type Handler func(Event)

// Feed delivers committed appointment changes
type Feed interface {
	Subscribe(ctx context.Context, filter Filter, fn Handler) (func(), error)
}

type subscription struct {
	filter Filter
	fn     Handler
}

// Hub fans events out to in-process subscribers
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]subscription)}
}

// Subscribe registers fn until unsubscribe is called or ctx is done
func (h *Hub) Subscribe(ctx context.Context, filter Filter, fn Handler) (func(), error) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = subscription{filter: filter, fn: fn}
	h.mu.Unlock()

	var once sync.Once
	stop := make(chan struct{})
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(stop)
		})
	}

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				unsubscribe()
			case <-stop:
			}
		}()
	}
	return unsubscribe, nil
}

// Publish delivers ev synchronously to every matching subscriber
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	targets := make([]Handler, 0, len(h.subs))
	for _, s := range h.subs {
		if s.filter.Matches(ev) {
			targets = append(targets, s.fn)
		}
	}
	h.mu.RUnlock()

	for _, fn := range targets {
		fn(ev)
	}
}

// Subscribers returns the number of active subscriptions
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
