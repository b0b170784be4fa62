package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"classconnect/internal/apperr"
	"classconnect/internal/middleware"
	"classconnect/internal/model"
	"classconnect/internal/store"
)

type createAppointmentRequest struct {
	TeacherID string    `json:"teacherId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Purpose   string    `json:"purpose"`
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req createAppointmentRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.TeacherID == "" || req.Purpose == "" {
		h.writeError(w, apperr.New(apperr.Validation, "teacherId and purpose are required"))
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		h.writeError(w, apperr.New(apperr.Validation, "startTime and endTime are required"))
		return
	}
	if !req.EndTime.After(req.StartTime) {
		h.writeError(w, apperr.New(apperr.Validation, "endTime must be after startTime"))
		return
	}

	teacher, err := h.store.UserByID(r.Context(), req.TeacherID)
	if err != nil || teacher.Role != model.RoleTeacher {
		h.writeError(w, apperr.New(apperr.NotFound, "Teacher not found"))
		return
	}

	// friendly pre-check; the unique index still catches concurrent winners
	if dup, err := h.store.HasConflict(r.Context(), req.TeacherID, req.StartTime); err != nil {
		h.writeError(w, err)
		return
	} else if dup {
		h.writeError(w, apperr.New(apperr.Conflict, "This time slot is already booked."))
		return
	}

	a := &model.Appointment{
		ID:        uuid.New().String(),
		StudentID: claims.UserID,
		TeacherID: req.TeacherID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Purpose:   req.Purpose,
		Status:    model.StatusPending,
	}
	if err := h.store.CreateAppointment(r.Context(), a); err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"status": "success", "data": toAppointmentJSON(a)})
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	f := store.AppointmentFilter{}
	switch claims.Role {
	case model.RoleStudent:
		f.StudentID = claims.UserID
	case model.RoleTeacher:
		f.TeacherID = claims.UserID
	}
	// admin sees everything

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			f.Limit = n
		}
	}

	apts, err := h.store.ListAppointments(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]appointmentJSON, len(apts))
	for i := range apts {
		out[i] = toAppointmentJSON(&apts[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "results": len(out), "data": out})
}

type updateStatusRequest struct {
	Status model.AppointmentStatus `json:"status"`
}

func (h *Handler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if !req.Status.Valid() {
		h.writeError(w, apperr.New(apperr.Validation, "invalid status"))
		return
	}

	a, err := h.store.UpdateAppointmentStatus(r.Context(), id, req.Status, claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": toAppointmentJSON(a)})
}
