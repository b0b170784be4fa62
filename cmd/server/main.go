package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"classconnect/internal/app"
	"classconnect/internal/config"
	"classconnect/internal/handler"
	"classconnect/internal/middleware"
	"classconnect/internal/store"
	"classconnect/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	logger.Info("connected to postgres")

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir)
	if err != nil {
		logger.Fatal("migrator", zap.Error(err))
	}
	if err := migrator.Run(context.Background()); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}
	migrator.Close()
	logger.Info("migrations applied")

	st := store.New(pool)
	hub := ws.NewHub(st, logger)
	h := handler.New(st, cfg.JWTSecret, logger)
	rl := middleware.NewRateLimiter(5, 10)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: h.Router(cfg.ClientURL, rl, ws.Handler(hub, cfg.JWTSecret, cfg.ClientURL)),
	}
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
