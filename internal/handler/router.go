package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"classconnect/internal/middleware"
	"classconnect/internal/model"
)

// Router assembles the API routes. wsHandler serves the realtime channel;
// it authenticates on upgrade itself.
func (h *Handler) Router(clientURL string, rl *middleware.RateLimiter, wsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS(clientURL))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(rl)).Post("/register", h.Register)
		r.With(middleware.RateLimit(rl)).Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(h.secret))
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.Profile)
			r.Get("/teachers", h.Teachers)
			r.Post("/change-password", h.ChangePassword)
		})
	})

	r.Route("/api/appointments", func(r chi.Router) {
		r.Use(middleware.Auth(h.secret))
		r.With(middleware.RequireRole(model.RoleStudent)).Post("/", h.CreateAppointment)
		r.With(middleware.RequireRole(model.RoleStudent, model.RoleTeacher, model.RoleAdmin)).Get("/", h.ListAppointments)
		r.With(middleware.RequireRole(model.RoleTeacher)).Put("/{id}/status", h.UpdateAppointmentStatus)
	})

	r.Route("/api/messages", func(r chi.Router) {
		r.Use(middleware.Auth(h.secret))
		r.Get("/{appointmentId}", h.MessageHistory)
		r.Delete("/{id}", h.DeleteMessage)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.secret), middleware.RequireRole(model.RoleAdmin))
		r.Get("/stats", h.Stats)
		r.Get("/teachers", h.AllTeachers)
		r.Put("/teachers/{id}/approve", h.ApproveTeacher)
		r.Delete("/teachers/{id}", h.DeleteTeacher)
	})

	if wsHandler != nil {
		r.Handle("/ws", wsHandler)
	}

	return r
}
