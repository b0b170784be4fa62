package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.SystemStats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// AllTeachers lists every teacher account for the admin review screen,
// pending approvals first.
func (h *Handler) AllTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.store.AllTeachers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]userJSON, len(teachers))
	for i := range teachers {
		out[i] = toUserJSON(&teachers[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ApproveTeacher(w http.ResponseWriter, r *http.Request) {
	u, err := h.store.ApproveTeacher(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Teacher approved successfully",
		"teacher": toUserJSON(u),
	})
}

// DeleteTeacher cascades: the teacher's appointments go first, then the
// identity record.
func (h *Handler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTeacher(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Teacher deleted successfully"})
}
