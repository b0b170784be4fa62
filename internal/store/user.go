package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"classconnect/internal/apperr"
	"classconnect/internal/model"
)

const userCols = `id, name, email, password_hash, role, department, is_approved, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Department, &u.IsApproved, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, department, is_approved)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Department, u.IsApproved,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.New(apperr.Conflict, "email already registered")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return u, nil
}

// ApprovedTeachers feeds the student booking dropdown.
func (s *Store) ApprovedTeachers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userCols+` FROM users
		 WHERE role = 'teacher' AND is_approved
		 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("approved teachers: %w", err)
	}
	return collectUsers(rows)
}

// AllTeachers lists every teacher, pending first, newest first within each group.
func (s *Store) AllTeachers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userCols+` FROM users
		 WHERE role = 'teacher'
		 ORDER BY is_approved, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("all teachers: %w", err)
	}
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]model.User, error) {
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *Store) ApproveTeacher(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`UPDATE users SET is_approved = true, updated_at = NOW()
		 WHERE id = $1 AND role = 'teacher'
		 RETURNING `+userCols, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "Teacher not found")
		}
		return nil, fmt.Errorf("approve teacher: %w", err)
	}
	return u, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

// DeleteTeacher removes the teacher's appointments first, then the identity
// row, in one transaction. Messages are intentionally left behind.
func (s *Store) DeleteTeacher(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM appointments WHERE teacher_id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher appointments: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM users WHERE id = $1 AND role = 'teacher'`, id)
	if err != nil {
		return fmt.Errorf("delete teacher user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "Teacher not found")
	}

	return tx.Commit(ctx)
}
