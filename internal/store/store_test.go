package store_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"classconnect/internal/apperr"
	"classconnect/internal/app"
	"classconnect/internal/model"
	"classconnect/internal/store"
)

// These tests need a real database; they run the migrations themselves.
// Set DATABASE_URL to enable them, e.g.
//
//	DATABASE_URL=postgres://localhost/classconnect_test go test ./internal/store/
func setupPG(t *testing.T) *store.Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	m, err := app.NewMigrator(pool, "../../db/migrations")
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	if err := m.Run(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	m.Close()

	if _, err := pool.Exec(ctx,
		`TRUNCATE messages, refresh_tokens, appointments, users`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return store.New(pool)
}

func newUser(t *testing.T, st *store.Store, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		ID:           uuid.New().String(),
		Name:         "User " + uuid.NewString()[:8],
		Email:        uuid.NewString() + "@test.com",
		PasswordHash: "x",
		Role:         role,
		IsApproved:   true,
	}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestEmailUniqueness(t *testing.T) {
	st := setupPG(t)
	ctx := context.Background()

	u := newUser(t, st, model.RoleStudent)
	dup := &model.User{
		ID: uuid.New().String(), Name: "Dup", Email: u.Email,
		PasswordHash: "x", Role: model.RoleStudent,
	}
	err := st.CreateUser(ctx, dup)
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
}

// TestConcurrentBookingSingleWinner races N students for one slot. The
// partial unique index must let exactly one insert commit.
func TestConcurrentBookingSingleWinner(t *testing.T) {
	st := setupPG(t)
	ctx := context.Background()

	teacher := newUser(t, st, model.RoleTeacher)
	start := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)

	const racers = 8
	students := make([]*model.User, racers)
	for i := range students {
		students[i] = newUser(t, st, model.RoleStudent)
	}

	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = st.CreateAppointment(ctx, &model.Appointment{
				ID:        uuid.New().String(),
				StudentID: students[i].ID,
				TeacherID: teacher.ID,
				StartTime: start,
				EndTime:   start.Add(30 * time.Minute),
				Purpose:   fmt.Sprintf("racer %d", i),
				Status:    model.StatusPending,
			})
		}(i)
	}
	wg.Wait()

	won, conflicted := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case apperr.KindOf(err) == apperr.Conflict:
			conflicted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 || conflicted != racers-1 {
		t.Fatalf("expected 1 winner and %d conflicts, got %d/%d", racers-1, won, conflicted)
	}

	apts, err := st.ListAppointments(ctx, store.AppointmentFilter{TeacherID: teacher.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apts) != 1 {
		t.Fatalf("expected 1 stored appointment, got %d", len(apts))
	}
}

// A cancelled hold does not block the slot; the partial index only covers
// pending and approved rows.
func TestCancelledSlotRebookable(t *testing.T) {
	st := setupPG(t)
	ctx := context.Background()

	teacher := newUser(t, st, model.RoleTeacher)
	student := newUser(t, st, model.RoleStudent)
	start := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)

	a := &model.Appointment{
		ID: uuid.New().String(), StudentID: student.ID, TeacherID: teacher.ID,
		StartTime: start, EndTime: start.Add(30 * time.Minute),
		Purpose: "first", Status: model.StatusPending,
	}
	if err := st.CreateAppointment(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := st.UpdateAppointmentStatus(ctx, a.ID, model.StatusCancelled, teacher.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	b := &model.Appointment{
		ID: uuid.New().String(), StudentID: student.ID, TeacherID: teacher.ID,
		StartTime: start, EndTime: start.Add(30 * time.Minute),
		Purpose: "second", Status: model.StatusPending,
	}
	if err := st.CreateAppointment(ctx, b); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestDeleteTeacherCascadePreservesMessages(t *testing.T) {
	st := setupPG(t)
	ctx := context.Background()

	teacher := newUser(t, st, model.RoleTeacher)
	student := newUser(t, st, model.RoleStudent)
	start := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)

	a := &model.Appointment{
		ID: uuid.New().String(), StudentID: student.ID, TeacherID: teacher.ID,
		StartTime: start, EndTime: start.Add(30 * time.Minute),
		Purpose: "chat", Status: model.StatusApproved,
	}
	if err := st.CreateAppointment(ctx, a); err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	m := &model.Message{
		ID: uuid.New().String(), AppointmentID: a.ID,
		SenderID: student.ID, Text: "hello",
	}
	if err := st.CreateMessage(ctx, m); err != nil {
		t.Fatalf("create message: %v", err)
	}

	if err := st.DeleteTeacher(ctx, teacher.ID); err != nil {
		t.Fatalf("delete teacher: %v", err)
	}

	if _, err := st.AppointmentByID(ctx, a.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("appointment should be gone, got %v", err)
	}
	if _, err := st.UserByID(ctx, teacher.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("teacher should be gone, got %v", err)
	}
	msgs, err := st.MessagesByAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Errorf("chat history should survive the cascade, got %d messages", len(msgs))
	}

	if err := st.DeleteTeacher(ctx, teacher.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("second delete should be NotFound, got %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	st := setupPG(t)
	ctx := context.Background()

	u := newUser(t, st, model.RoleStudent)
	expiry := time.Now().Add(time.Hour)

	oldID, err := st.CreateRefreshToken(ctx, u.ID, "hash-old", expiry)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	newID := uuid.New().String()
	if err := st.RotateRefreshToken(ctx, oldID, newID, u.ID, "hash-new", expiry); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	old, err := st.RefreshTokenByHash(ctx, "hash-old")
	if err != nil {
		t.Fatalf("lookup old: %v", err)
	}
	if !old.Revoked {
		t.Error("rotated-away token should be revoked")
	}
	fresh, err := st.RefreshTokenByHash(ctx, "hash-new")
	if err != nil {
		t.Fatalf("lookup new: %v", err)
	}
	if fresh.Revoked {
		t.Error("fresh token should not be revoked")
	}

	if err := st.RevokeAllRefreshTokens(ctx, u.ID); err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	fresh, _ = st.RefreshTokenByHash(ctx, "hash-new")
	if fresh == nil || !fresh.Revoked {
		t.Error("revoke-all should cover the fresh token")
	}
}
