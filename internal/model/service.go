package model

import "github.com/shopspring/decimal"

// Service is a catalog entry offered by the barbershop
type Service struct {
	Name            string          `json:"name"`
	DurationMinutes int             `json:"duration_minutes"`
	Price           decimal.Decimal `json:"price"`
}
