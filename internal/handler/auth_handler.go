package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"classconnect/internal/apperr"
	"classconnect/internal/auth"
	"classconnect/internal/middleware"
	"classconnect/internal/model"
)

const refreshTokenTTL = 7 * 24 * time.Hour

type registerRequest struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	Role       model.Role `json:"role"`
	Department string     `json:"department"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		h.writeError(w, apperr.New(apperr.Validation, "name, email and password are required"))
		return
	}
	if len(req.Password) < 8 {
		h.writeError(w, apperr.New(apperr.Validation, "password must be at least 8 characters"))
		return
	}
	if req.Role != model.RoleStudent && req.Role != model.RoleTeacher {
		h.writeError(w, apperr.New(apperr.Validation, "role must be student or teacher"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Department:   req.Department,
		// students book immediately; teachers wait for the admin
		IsApproved: req.Role == model.RoleStudent,
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		h.writeError(w, err)
		return
	}

	tok, err := auth.MakeToken(u.ID, u.Role, h.secret)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": tok, "user": toUserJSON(u)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		h.writeError(w, apperr.New(apperr.Validation, "email and password are required"))
		return
	}

	u, err := h.store.UserByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		h.writeError(w, apperr.New(apperr.Unauthenticated, "Invalid credentials"))
		return
	}
	// valid credentials but not yet approved: distinct error, the client
	// shows a dedicated "waiting for approval" screen
	if !u.IsApproved {
		h.writeError(w, apperr.New(apperr.PendingApproval, "Account pending approval"))
		return
	}

	tok, err := auth.MakeToken(u.ID, u.Role, h.secret)
	if err != nil {
		h.writeError(w, err)
		return
	}

	rawRefresh, tokenHash, err := auth.GenerateRefreshToken()
	if err != nil {
		h.writeError(w, err)
		return
	}
	if _, err := h.store.CreateRefreshToken(r.Context(), u.ID, tokenHash, time.Now().Add(refreshTokenTTL)); err != nil {
		h.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name: "access_token", Value: tok,
		HttpOnly: true, Path: "/", SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: "refresh_token", Value: rawRefresh,
		HttpOnly: true, Path: "/api/auth", SameSite: http.SameSiteLaxMode,
		Expires: time.Now().Add(refreshTokenTTL),
	})
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "user": toUserJSON(u)})
}

// Refresh rotates the refresh token from the cookie and issues a fresh
// access token.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie("refresh_token")
	if err != nil || c.Value == "" {
		h.writeError(w, apperr.New(apperr.Unauthenticated, "missing refresh token"))
		return
	}

	rt, err := h.store.RefreshTokenByHash(r.Context(), auth.HashRefreshToken(c.Value))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if rt.Revoked || time.Now().After(rt.ExpiresAt) {
		h.writeError(w, apperr.New(apperr.Unauthenticated, "refresh token expired"))
		return
	}

	u, err := h.store.UserByID(r.Context(), rt.UserID)
	if err != nil {
		h.writeError(w, apperr.New(apperr.Unauthenticated, "invalid refresh token"))
		return
	}

	newRaw, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		h.writeError(w, err)
		return
	}
	newID := uuid.New().String()
	if err := h.store.RotateRefreshToken(r.Context(), rt.ID, newID, u.ID, newHash, time.Now().Add(refreshTokenTTL)); err != nil {
		h.writeError(w, err)
		return
	}

	tok, err := auth.MakeToken(u.ID, u.Role, h.secret)
	if err != nil {
		h.writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name: "access_token", Value: tok,
		HttpOnly: true, Path: "/", SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: "refresh_token", Value: newRaw,
		HttpOnly: true, Path: "/api/auth", SameSite: http.SameSiteLaxMode,
		Expires: time.Now().Add(refreshTokenTTL),
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if err := h.store.RevokeAllRefreshTokens(r.Context(), claims.UserID); err != nil {
		h.writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "", Path: "/api/auth", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	u, err := h.store.UserByID(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserJSON(u))
}

// Teachers feeds the student's booking dropdown with approved teachers.
func (h *Handler) Teachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.store.ApprovedTeachers(r.Context())
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

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if len(req.NewPassword) < 8 {
		h.writeError(w, apperr.New(apperr.Validation, "password must be at least 8 characters"))
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	u, err := h.store.UserByID(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.OldPassword) {
		h.writeError(w, apperr.New(apperr.Validation, "Incorrect current password"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.store.UpdatePassword(r.Context(), u.ID, hash); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}
