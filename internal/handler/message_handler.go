package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"classconnect/internal/middleware"
)

// MessageHistory returns the chat log for an appointment, ascending by
// creation time.
func (h *Handler) MessageHistory(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentId")

	msgs, err := h.store.MessagesByAppointment(r.Context(), appointmentID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]messageJSON, len(msgs))
	for i := range msgs {
		out[i] = toMessageJSON(&msgs[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteMessage(r.Context(), id, claims.UserID); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Message deleted"})
}
