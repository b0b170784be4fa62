package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"classconnect/internal/apperr"
	"classconnect/internal/model"
	"classconnect/internal/store"
)

// Store is the persistence surface the handlers need. Satisfied by the
// Postgres store and by memstore in tests.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	ApprovedTeachers(ctx context.Context) ([]model.User, error)
	AllTeachers(ctx context.Context) ([]model.User, error)
	ApproveTeacher(ctx context.Context, id string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	DeleteTeacher(ctx context.Context, id string) error

	HasConflict(ctx context.Context, teacherID string, start time.Time) (bool, error)
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	AppointmentByID(ctx context.Context, id string) (*model.Appointment, error)
	ListAppointments(ctx context.Context, f store.AppointmentFilter) ([]model.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status model.AppointmentStatus, teacherID string) (*model.Appointment, error)

	CreateMessage(ctx context.Context, m *model.Message) error
	MessagesByAppointment(ctx context.Context, appointmentID string) ([]model.Message, error)
	DeleteMessage(ctx context.Context, id, requesterID string) error

	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	RefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error

	SystemStats(ctx context.Context) (*model.Stats, error)
}

type Handler struct {
	store  Store
	secret string
	log    *zap.Logger
}

func New(st Store, secret string, log *zap.Logger) *Handler {
	return &Handler{store: st, secret: secret, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the apperr taxonomy to a status and a user-facing message.
// Unclassified errors are logged and surfaced as a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if apperr.KindOf(err) == apperr.Internal {
		h.log.Error("internal error", zap.Error(err))
	}
	writeJSON(w, apperr.HTTPStatus(err), map[string]string{"message": apperr.Message(err)})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	return nil
}
