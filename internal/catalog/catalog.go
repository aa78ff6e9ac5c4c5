// Package catalog holds the fixed list of services the shop offers.
package catalog

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

// DefaultDuration is used for names missing from the catalog
const DefaultDuration = 30

// Catalog is read-only after construction
type Catalog struct {
	services []model.Service
	byName   map[string]model.Service
	logger   *zap.Logger
}

// Default returns the shop's service list
func Default(logger *zap.Logger) *Catalog {
	return New([]model.Service{
		{Name: "Corte de Cabelo", DurationMinutes: 30, Price: decimal.NewFromInt(35)},
		{Name: "Barba", DurationMinutes: 20, Price: decimal.NewFromInt(25)},
		{Name: "Corte + Barba", DurationMinutes: 50, Price: decimal.NewFromInt(55)},
		{Name: "Acabamento", DurationMinutes: 15, Price: decimal.NewFromInt(20)},
	}, logger)
}

// New builds a catalog; later duplicates of a name are ignored
func New(services []model.Service, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Catalog{
		services: make([]model.Service, 0, len(services)),
		byName:   make(map[string]model.Service, len(services)),
		logger:   logger,
	}
	for _, s := range services {
		if _, dup := c.byName[s.Name]; dup || s.DurationMinutes <= 0 {
			continue
		}
		c.services = append(c.services, s)
		c.byName[s.Name] = s
	}
	return c
}

// DurationOf returns the service duration in minutes, DefaultDuration for unknown names
func (c *Catalog) DurationOf(name string) int {
	if s, ok := c.byName[name]; ok {
		return s.DurationMinutes
	}
	c.logger.Warn("Unknown service, using default duration",
		zap.String("service", name),
		zap.Int("duration", DefaultDuration))
	return DefaultDuration
}

// Lookup finds a service by exact name
func (c *Catalog) Lookup(name string) (model.Service, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// All returns the services in display order
func (c *Catalog) All() []model.Service {
	out := make([]model.Service, len(c.services))
	copy(out, c.services)
	return out
}
