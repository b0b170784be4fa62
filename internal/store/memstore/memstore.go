// Package memstore is an in-memory implementation of the persistence layer.
// It backs the test suites and mirrors the Postgres store's semantics,
// including the booking-conflict uniqueness (serialized under the mutex
// instead of a unique index).
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"classconnect/internal/apperr"
	"classconnect/internal/model"
	"classconnect/internal/store"
)

type Store struct {
	mu           sync.Mutex
	users        map[string]*model.User
	appointments map[string]*model.Appointment
	messages     []*model.Message
	tokens       map[string]*model.RefreshToken
	seq          int64
}

func New() *Store {
	return &Store{
		users:        make(map[string]*model.User),
		appointments: make(map[string]*model.Appointment),
		tokens:       make(map[string]*model.RefreshToken),
	}
}

// now hands out strictly increasing instants so creation-time ordering is
// total even within one wall-clock tick.
func (s *Store) now() time.Time {
	s.seq++
	return time.Now().Add(time.Duration(s.seq) * time.Nanosecond)
}

// ----- users -----

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return apperr.New(apperr.Conflict, "email already registered")
		}
	}
	t := s.now()
	u.CreatedAt, u.UpdatedAt = t, t
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (s *Store) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (s *Store) ApprovedTeachers(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		if u.Role == model.RoleTeacher && u.IsApproved {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) AllTeachers(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		if u.Role == model.RoleTeacher {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsApproved != out[j].IsApproved {
			return !out[i].IsApproved
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) ApproveTeacher(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Role != model.RoleTeacher {
		return nil, apperr.New(apperr.NotFound, "Teacher not found")
	}
	u.IsApproved = true
	u.UpdatedAt = s.now()
	cp := *u
	return &cp, nil
}

func (s *Store) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = s.now()
	return nil
}

func (s *Store) DeleteTeacher(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Role != model.RoleTeacher {
		return apperr.New(apperr.NotFound, "Teacher not found")
	}
	// appointments first, then the identity; messages are left behind
	for aid, a := range s.appointments {
		if a.TeacherID == id {
			delete(s.appointments, aid)
		}
	}
	delete(s.users, id)
	return nil
}

// ----- appointments -----

func (s *Store) hasConflictLocked(teacherID string, start time.Time) bool {
	for _, a := range s.appointments {
		if a.TeacherID == teacherID && a.StartTime.Equal(start) &&
			(a.Status == model.StatusPending || a.Status == model.StatusApproved) {
			return true
		}
	}
	return false
}

func (s *Store) HasConflict(_ context.Context, teacherID string, start time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasConflictLocked(teacherID, start), nil
}

func (s *Store) CreateAppointment(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// check + insert under one lock: the in-memory stand-in for the
	// partial unique index
	if s.hasConflictLocked(a.TeacherID, a.StartTime) {
		return apperr.New(apperr.Conflict, "This time slot is already booked.")
	}
	t := s.now()
	a.CreatedAt, a.UpdatedAt = t, t
	s.decorate(a)
	cp := *a
	s.appointments[a.ID] = &cp
	return nil
}

// decorate fills the joined display fields from the user table.
func (s *Store) decorate(a *model.Appointment) {
	if u, ok := s.users[a.StudentID]; ok {
		a.StudentName, a.StudentEmail = u.Name, u.Email
	}
	if u, ok := s.users[a.TeacherID]; ok {
		a.TeacherName, a.TeacherEmail, a.TeacherDept = u.Name, u.Email, u.Department
	}
}

func (s *Store) ListAppointments(_ context.Context, f store.AppointmentFilter) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Appointment
	for _, a := range s.appointments {
		if f.StudentID != "" && a.StudentID != f.StudentID {
			continue
		}
		if f.TeacherID != "" && a.TeacherID != f.TeacherID {
			continue
		}
		cp := *a
		s.decorate(&cp)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) AppointmentByID(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Appointment not found")
	}
	cp := *a
	s.decorate(&cp)
	return &cp, nil
}

func (s *Store) UpdateAppointmentStatus(_ context.Context, id string, status model.AppointmentStatus, teacherID string) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Appointment not found")
	}
	if a.TeacherID != teacherID {
		return nil, apperr.New(apperr.Forbidden, "You do not have permission to perform this action")
	}
	a.Status = status
	a.UpdatedAt = s.now()
	cp := *a
	s.decorate(&cp)
	return &cp, nil
}

// ----- messages -----

func (s *Store) CreateMessage(_ context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.CreatedAt = s.now()
	cp := *m
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *Store) MessagesByAppointment(_ context.Context, appointmentID string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Message
	for _, m := range s.messages {
		if m.AppointmentID != appointmentID {
			continue
		}
		cp := *m
		if u, ok := s.users[m.SenderID]; ok {
			cp.SenderName = u.Name
		}
		out = append(out, cp)
	}
	// messages slice is append-ordered and now() is monotonic, so this is
	// already ascending by creation time
	return out, nil
}

func (s *Store) DeleteMessage(_ context.Context, id, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.messages {
		if m.ID != id {
			continue
		}
		if m.SenderID != requesterID {
			return apperr.New(apperr.Forbidden, "Only the sender can delete this message")
		}
		s.messages = append(s.messages[:i], s.messages[i+1:]...)
		return nil
	}
	return apperr.New(apperr.NotFound, "Message not found")
}

// ----- refresh tokens -----

func (s *Store) CreateRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := tokenHash[:16]
	s.tokens[tokenHash] = &model.RefreshToken{
		ID: id, UserID: userID, TokenHash: tokenHash,
		ExpiresAt: expiresAt, CreatedAt: s.now(),
	}
	return id, nil
}

func (s *Store) RefreshTokenByHash(_ context.Context, tokenHash string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.tokens[tokenHash]
	if !ok {
		return nil, apperr.New(apperr.Unauthenticated, "invalid refresh token")
	}
	cp := *rt
	return &cp, nil
}

func (s *Store) RotateRefreshToken(_ context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rt := range s.tokens {
		if rt.ID == oldID {
			rt.Revoked = true
			replaced := newID
			rt.ReplacedBy = &replaced
		}
	}
	s.tokens[newHash] = &model.RefreshToken{
		ID: newID, UserID: userID, TokenHash: newHash,
		ExpiresAt: newExpiry, CreatedAt: s.now(),
	}
	return nil
}

func (s *Store) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rt := range s.tokens {
		if rt.UserID == userID {
			rt.Revoked = true
		}
	}
	return nil
}

// ----- admin -----

func (s *Store) SystemStats(_ context.Context) (*model.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &model.Stats{Appointments: len(s.appointments)}
	for _, u := range s.users {
		switch u.Role {
		case model.RoleStudent:
			st.Students++
		case model.RoleTeacher:
			st.Teachers++
			if !u.IsApproved {
				st.PendingTeachers++
			}
		}
	}

	counts := map[string]int{}
	for _, a := range s.appointments {
		if a.Status == model.StatusApproved {
			counts[a.TeacherID]++
		}
	}
	for tid, n := range counts {
		name := ""
		if u, ok := s.users[tid]; ok {
			name = u.Name
		}
		st.TopTeachers = append(st.TopTeachers, model.TeacherCount{TeacherID: tid, Name: name, Count: n})
	}
	sort.Slice(st.TopTeachers, func(i, j int) bool { return st.TopTeachers[i].Count > st.TopTeachers[j].Count })
	if len(st.TopTeachers) > 5 {
		st.TopTeachers = st.TopTeachers[:5]
	}
	return st, nil
}
