package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store bundles the PostgreSQL repositories and the change listener behind
// one value, matching the shape of the in-memory store.
type Store struct {
	*AppointmentRepository
	*RecurringRepository
	*UserRepository
	*ChangeListener
}

func NewStore(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{
		AppointmentRepository: NewAppointmentRepository(pool),
		RecurringRepository:   NewRecurringRepository(pool),
		UserRepository:        NewUserRepository(pool),
		ChangeListener:        NewChangeListener(pool, logger),
	}
}
