package store

import (
	"context"
	"fmt"

	"classconnect/internal/model"
)

// SystemStats aggregates the admin dashboard counters plus the five teachers
// with the most approved appointments.
func (s *Store) SystemStats(ctx context.Context) (*model.Stats, error) {
	st := &model.Stats{}
	err := s.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'student'),
			(SELECT COUNT(*) FROM users WHERE role = 'teacher'),
			(SELECT COUNT(*) FROM users WHERE role = 'teacher' AND NOT is_approved),
			(SELECT COUNT(*) FROM appointments)`,
	).Scan(&st.Students, &st.Teachers, &st.PendingTeachers, &st.Appointments)
	if err != nil {
		return nil, fmt.Errorf("system stats: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT a.teacher_id, u.name, COUNT(*) AS cnt
		 FROM appointments a
		 JOIN users u ON u.id = a.teacher_id
		 WHERE a.status = 'approved'
		 GROUP BY a.teacher_id, u.name
		 ORDER BY cnt DESC
		 LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top teachers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tc model.TeacherCount
		if err := rows.Scan(&tc.TeacherID, &tc.Name, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan top teacher: %w", err)
		}
		st.TopTeachers = append(st.TopTeachers, tc)
	}
	return st, rows.Err()
}
