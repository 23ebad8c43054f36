package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned for operations against an id that does not exist.
	ErrNotFound = errors.New("appointments: not found")
	// ErrSlotTaken is returned by CreateIfFree when (doctor, date, time) is
	// already booked.
	ErrSlotTaken = errors.New("appointments: slot already booked")
)

// DB is the subset of pgxpool.Pool the repository uses. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for appointment records.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("appointments: db required")
	}
	return &Repository{db: db}
}

const appointmentColumns = `id, name, contact, doctor, to_char(date, 'YYYY-MM-DD'), "time", created_at, updated_at`

// Create inserts a new appointment with a generated id and timestamps. No
// validation beyond what the caller already applied.
func (r *Repository) Create(ctx context.Context, f Fields) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, name, contact, doctor, date, "time", created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $7)
		RETURNING `+appointmentColumns,
		uuid.NewString(), f.Name, f.Contact, f.Doctor, f.Date, f.Time, time.Now().UTC())
	appt, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("appointments: insert: %w", err)
	}
	return appt, nil
}

// CreateIfFree inserts only when no appointment already occupies the same
// (doctor, date, time). The check and the insert run as one statement so two
// concurrent bookings cannot both pass a stale snapshot.
func (r *Repository) CreateIfFree(ctx context.Context, f Fields) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, name, contact, doctor, date, "time", created_at, updated_at)
		SELECT $1, $2, $3, $4, $5::date, $6, $7, $7
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments WHERE doctor = $4 AND date = $5::date AND "time" = $6
		)
		RETURNING `+appointmentColumns,
		uuid.NewString(), f.Name, f.Contact, f.Doctor, f.Date, f.Time, time.Now().UTC())
	appt, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotTaken
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: conditional insert: %w", err)
	}
	return appt, nil
}

// List returns every appointment, newest-created first.
func (r *Repository) List(ctx context.Context) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	out := []Appointment{}
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.Name, &a.Contact, &a.Doctor, &a.Date, &a.Time, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	return out, nil
}

// GetByID returns a single appointment or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: get: %w", err)
	}
	return appt, nil
}

// Update replaces the mutable fields of an existing appointment.
func (r *Repository) Update(ctx context.Context, id string, f Fields) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET name = $2, contact = $3, doctor = $4, date = $5::date, "time" = $6, updated_at = $7
		WHERE id = $1
		RETURNING `+appointmentColumns,
		id, f.Name, f.Contact, f.Doctor, f.Date, f.Time, time.Now().UTC())
	appt, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: update: %w", err)
	}
	return appt, nil
}

// Delete removes an appointment or returns ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(&a.ID, &a.Name, &a.Contact, &a.Doctor, &a.Date, &a.Time, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
