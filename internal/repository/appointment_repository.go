package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/barber_bot/internal/model"
	"github.com/Freeeeeet/barber_bot/internal/repository/base"
)

const appointmentColumns = `id, client_name, phone, service_name, date, to_char(start_time, 'HH24:MI'),
	status, COALESCE(email, ''), telegram_id, created_at`

type AppointmentRepository struct {
	*base.Repository
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(pool)}
}

// ListAppointments returns appointments matching filter, ordered by date and start time
func (r *AppointmentRepository) ListAppointments(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Date != nil {
		args = append(args, model.DateOf(*filter.Date))
		conds = append(conds, fmt.Sprintf("date = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if filter.TelegramID != nil {
		args = append(args, *filter.TelegramID)
		conds = append(conds, fmt.Sprintf("telegram_id = $%d", len(args)))
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY date, start_time`

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}

	return appointments, nil
}

// GetAppointment returns nil, nil when the id is unknown
func (r *AppointmentRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	a, err := scanAppointment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

// InsertAppointment stores a confirmed appointment. An overlapping
// confirmed appointment makes it fail with model.ErrSlotConflict.
func (r *AppointmentRepository) InsertAppointment(ctx context.Context, a *model.Appointment, duration int) error {
	query := `
		INSERT INTO appointments (id, client_name, phone, service_name, duration_minutes, date, start_time, status, email, telegram_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7::text::time, $8, NULLIF($9, ''), $10)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		a.ID,
		a.ClientName,
		a.Phone,
		a.ServiceName,
		duration,
		model.DateOf(a.Date),
		a.StartTime,
		string(a.Status),
		a.Email,
		a.TelegramID,
	).Scan(&a.CreatedAt)

	if err != nil {
		if base.IsConflict(err) {
			return model.ErrSlotConflict
		}
		return fmt.Errorf("insert appointment: %w", err)
	}

	return nil
}

// UpdateAppointmentStatus sets the status and returns the updated record
func (r *AppointmentRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	query := `UPDATE appointments SET status = $2 WHERE id = $1 RETURNING ` + appointmentColumns

	a, err := scanAppointment(r.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrNotFound
		}
		// Re-confirming into an occupied interval
		if base.IsConflict(err) {
			return nil, model.ErrSlotConflict
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	return a, nil
}

// DeleteForCleanup removes cancelled appointments and those dated before cutoff
func (r *AppointmentRepository) DeleteForCleanup(ctx context.Context, cutoff time.Time) (model.CleanupResult, error) {
	query := `
		WITH deleted AS (
			DELETE FROM appointments
			WHERE status = 'cancelled' OR date < $1
			RETURNING status
		)
		SELECT
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*) FILTER (WHERE status <> 'cancelled')
		FROM deleted
	`

	var res model.CleanupResult
	if err := r.QueryRow(ctx, query, model.DateOf(cutoff)).Scan(&res.Cancelled, &res.Expired); err != nil {
		return model.CleanupResult{}, fmt.Errorf("delete appointments for cleanup: %w", err)
	}
	res.Total = res.Cancelled + res.Expired
	return res, nil
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var (
		a      model.Appointment
		status string
	)
	err := row.Scan(
		&a.ID,
		&a.ClientName,
		&a.Phone,
		&a.ServiceName,
		&a.Date,
		&a.StartTime,
		&status,
		&a.Email,
		&a.TelegramID,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = model.AppointmentStatus(status)
	a.Date = model.DateOf(a.Date)
	return &a, nil
}
