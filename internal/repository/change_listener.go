package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/changes"
)

// ChangeChannel is the NOTIFY channel fed by the appointments trigger
const ChangeChannel = "appointment_changes"

// ChangeListener delivers appointment changes using LISTEN/NOTIFY. Each
// subscription holds one pooled connection.
type ChangeListener struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewChangeListener(pool *pgxpool.Pool, logger *zap.Logger) *ChangeListener {
	return &ChangeListener{pool: pool, logger: logger}
}

// Subscribe starts listening. When the connection breaks the handler gets a
// single changes.EventStreamLost and the subscription ends.
func (l *ChangeListener) Subscribe(ctx context.Context, filter changes.Filter, fn changes.Handler) (func(), error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", ChangeChannel, err)
	}

	listenCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			// A cancelled wait closes the connection; the pool discards it on release.
			if !conn.Conn().IsClosed() {
				_, _ = conn.Exec(context.Background(), "UNLISTEN *")
			}
			conn.Release()
		}()

		for {
			n, err := conn.Conn().WaitForNotification(listenCtx)
			if err != nil {
				if listenCtx.Err() != nil {
					return
				}
				l.logger.Error("Change feed connection lost", zap.Error(err))
				fn(changes.Event{Type: changes.EventStreamLost})
				return
			}

			ev, err := changes.Parse([]byte(n.Payload))
			if err != nil {
				l.logger.Warn("Skipping malformed change notification",
					zap.String("channel", n.Channel),
					zap.Error(err))
				continue
			}
			if filter.Matches(ev) {
				fn(ev)
			}
		}
	}()

	unsubscribe := func() {
		cancel()
		<-done
	}
	return unsubscribe, nil
}
