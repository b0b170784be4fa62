// Command createadmin bootstraps the administrator account. Safe to run
// repeatedly; it exits without touching anything if the admin exists.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"classconnect/internal/apperr"
	"classconnect/internal/auth"
	"classconnect/internal/config"
	"classconnect/internal/model"
	"classconnect/internal/store"
)

const (
	adminEmail    = "admin@classconnect.com"
	adminName     = "System Admin"
	adminPassword = "adminpassword123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	st := store.New(pool)

	if _, err := st.UserByEmail(ctx, adminEmail); err == nil {
		log.Println("admin already exists")
		return
	} else {
		var e *apperr.Error
		if !errors.As(err, &e) || e.Kind != apperr.NotFound {
			log.Fatalf("lookup admin: %v", err)
		}
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	admin := &model.User{
		ID:           uuid.New().String(),
		Name:         adminName,
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsApproved:   true,
	}
	if err := st.CreateUser(ctx, admin); err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Println("admin created; change the default password after first login")
}
