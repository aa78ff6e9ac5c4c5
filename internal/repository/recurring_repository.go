package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/barber_bot/internal/model"
	"github.com/Freeeeeet/barber_bot/internal/repository/base"
)

const recurringColumns = `id, client_name, phone, service_name, weekday, to_char(start_time, 'HH24:MI'), status, created_at`

type RecurringRepository struct {
	*base.Repository
}

func NewRecurringRepository(pool *pgxpool.Pool) *RecurringRepository {
	return &RecurringRepository{Repository: base.NewRepository(pool)}
}

// ListRecurring returns recurring appointments ordered by weekday and time
func (r *RecurringRepository) ListRecurring(ctx context.Context, filter model.RecurringFilter) ([]*model.RecurringAppointment, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Weekday != nil {
		args = append(args, *filter.Weekday)
		conds = append(conds, fmt.Sprintf("weekday = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + recurringColumns + ` FROM recurring_appointments`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY weekday, start_time`

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring appointments: %w", err)
	}
	defer rows.Close()

	var result []*model.RecurringAppointment
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring appointment: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring appointments: %w", err)
	}

	return result, nil
}

// GetRecurring returns nil, nil when the id is unknown
func (r *RecurringRepository) GetRecurring(ctx context.Context, id uuid.UUID) (*model.RecurringAppointment, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_appointments WHERE id = $1`

	rec, err := scanRecurring(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recurring appointment: %w", err)
	}
	return rec, nil
}

func (r *RecurringRepository) InsertRecurring(ctx context.Context, rec *model.RecurringAppointment) error {
	query := `
		INSERT INTO recurring_appointments (id, client_name, phone, service_name, weekday, start_time, status)
		VALUES ($1, $2, $3, $4, $5, $6::text::time, $7)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		rec.ID,
		rec.ClientName,
		rec.Phone,
		rec.ServiceName,
		rec.Weekday,
		rec.StartTime,
		string(rec.Status),
	).Scan(&rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert recurring appointment: %w", err)
	}
	return nil
}

func (r *RecurringRepository) UpdateRecurringStatus(ctx context.Context, id uuid.UUID, status model.RecurringStatus) (*model.RecurringAppointment, error) {
	query := `UPDATE recurring_appointments SET status = $2 WHERE id = $1 RETURNING ` + recurringColumns

	rec, err := scanRecurring(r.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("update recurring status: %w", err)
	}
	return rec, nil
}

func (r *RecurringRepository) DeleteRecurring(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM recurring_appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recurring appointment: %w", err)
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanRecurring(row pgx.Row) (*model.RecurringAppointment, error) {
	var (
		rec     model.RecurringAppointment
		weekday int16
		status  string
	)
	err := row.Scan(
		&rec.ID,
		&rec.ClientName,
		&rec.Phone,
		&rec.ServiceName,
		&weekday,
		&rec.StartTime,
		&status,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Weekday = int(weekday)
	rec.Status = model.RecurringStatus(status)
	return &rec, nil
}
