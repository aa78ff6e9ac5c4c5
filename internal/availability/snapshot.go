package availability

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

// Snapshot holds the last known confirmed appointments per date
type Snapshot struct {
	mu     sync.RWMutex
	byDate map[string]map[uuid.UUID]*model.Appointment
}

func NewSnapshot() *Snapshot {
	return &Snapshot{byDate: make(map[string]map[uuid.UUID]*model.Appointment)}
}

// Replace swaps the appointments known for date
func (s *Snapshot) Replace(date time.Time, appts []*model.Appointment) {
	set := make(map[uuid.UUID]*model.Appointment, len(appts))
	for _, a := range appts {
		if a == nil || a.IsCancelled() {
			continue
		}
		cp := *a
		set[a.ID] = &cp
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDate[model.FormatDate(date)] = set
}

// Apply folds a change into the snapshot. Either side may be nil.
func (s *Snapshot) Apply(old, updated *model.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old != nil {
		if set, ok := s.byDate[model.FormatDate(old.Date)]; ok {
			delete(set, old.ID)
		}
	}
	if updated == nil {
		return
	}

	key := model.FormatDate(updated.Date)
	set, ok := s.byDate[key]
	if !ok {
		// Dates never listed stay unknown rather than half known.
		return
	}
	if updated.IsCancelled() {
		delete(set, updated.ID)
		return
	}
	cp := *updated
	set[updated.ID] = &cp
}

// Get returns copies of the appointments known for date
func (s *Snapshot) Get(date time.Time) []*model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.byDate[model.FormatDate(date)]
	out := make([]*model.Appointment, 0, len(set))
	for _, a := range set {
		cp := *a
		out = append(out, &cp)
	}
	return out
}

// Forget drops dates before cutoff
func (s *Snapshot) Forget(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := model.FormatDate(cutoff)
	for key := range s.byDate {
		if key < limit {
			delete(s.byDate, key)
		}
	}
}
