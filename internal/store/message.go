package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"classconnect/internal/apperr"
	"classconnect/internal/model"
)

func (s *Store) CreateMessage(ctx context.Context, m *model.Message) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (id, appointment_id, sender_id, text)
		 VALUES ($1,$2,$3,$4)
		 RETURNING created_at`,
		m.ID, m.AppointmentID, m.SenderID, m.Text,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// MessagesByAppointment returns chat history ascending by creation time,
// with the sender's display name resolved.
func (s *Store) MessagesByAppointment(ctx context.Context, appointmentID string) ([]model.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.appointment_id, m.sender_id, m.text, m.created_at, u.name
		 FROM messages m
		 JOIN users u ON u.id = m.sender_id
		 WHERE m.appointment_id = $1
		 ORDER BY m.created_at`, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("messages by appointment: %w", err)
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.AppointmentID, &m.SenderID, &m.Text,
			&m.CreatedAt, &m.SenderName); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMessage removes a message; only its original sender may.
func (s *Store) DeleteMessage(ctx context.Context, id, requesterID string) error {
	var senderID string
	err := s.pool.QueryRow(ctx,
		`SELECT sender_id FROM messages WHERE id = $1`, id).Scan(&senderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.NotFound, "Message not found")
		}
		return fmt.Errorf("delete message: %w", err)
	}
	if senderID != requesterID {
		return apperr.New(apperr.Forbidden, "Only the sender can delete this message")
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
