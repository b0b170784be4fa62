package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"classconnect/internal/apperr"
	"classconnect/internal/model"
)

// AppointmentFilter narrows ListAppointments. Zero fields mean "all", which
// is the admin view; handlers set exactly one owner field for students and
// teachers.
type AppointmentFilter struct {
	StudentID string
	TeacherID string
	Limit     int
}

// HasConflict reports whether the teacher already holds a slot with this
// exact start instant in a non-terminal status. The booking policy matches
// identical starts only, not overlapping ranges.
func (s *Store) HasConflict(ctx context.Context, teacherID string, start time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE teacher_id = $1
			  AND start_time = $2
			  AND status IN ('pending','approved'))`,
		teacherID, start,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("conflict check: %w", err)
	}
	return exists, nil
}

// CreateAppointment inserts a pending appointment. The partial unique index
// on (teacher_id, start_time) catches the race two concurrent bookings can
// win past HasConflict; the violation maps to Conflict.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, student_id, teacher_id, start_time, end_time, purpose, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING created_at, updated_at`,
		a.ID, a.StudentID, a.TeacherID, a.StartTime, a.EndTime, a.Purpose, a.Status,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.New(apperr.Conflict, "This time slot is already booked.")
		}
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

const appointmentSelect = `
	SELECT a.id, a.student_id, a.teacher_id, a.start_time, a.end_time,
	       a.purpose, a.status, a.created_at, a.updated_at,
	       s.name, s.email, t.name, t.email, t.department
	FROM appointments a
	JOIN users s ON s.id = a.student_id
	JOIN users t ON t.id = a.teacher_id`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := row.Scan(&a.ID, &a.StudentID, &a.TeacherID, &a.StartTime, &a.EndTime,
		&a.Purpose, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		&a.StudentName, &a.StudentEmail, &a.TeacherName, &a.TeacherEmail, &a.TeacherDept)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) ListAppointments(ctx context.Context, f AppointmentFilter) ([]model.Appointment, error) {
	q := appointmentSelect
	args := []any{}

	switch {
	case f.StudentID != "":
		q += ` WHERE a.student_id = $1`
		args = append(args, f.StudentID)
	case f.TeacherID != "":
		q += ` WHERE a.teacher_id = $1`
		args = append(args, f.TeacherID)
	}
	q += ` ORDER BY a.start_time`
	if f.Limit > 0 {
		q += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, f.Limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) AppointmentByID(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx, appointmentSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "Appointment not found")
		}
		return nil, fmt.Errorf("appointment by id: %w", err)
	}
	return a, nil
}

// UpdateAppointmentStatus transitions an appointment. Only the owning teacher
// may do so; no transition graph is enforced beyond that.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, id string, status model.AppointmentStatus, teacherID string) (*model.Appointment, error) {
	a, err := s.AppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.TeacherID != teacherID {
		return nil, apperr.New(apperr.Forbidden, "You do not have permission to perform this action")
	}

	err = s.pool.QueryRow(ctx,
		`UPDATE appointments SET status = $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING updated_at`,
		status, id,
	).Scan(&a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	a.Status = status
	return a, nil
}
