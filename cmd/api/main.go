package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dndinfo/internal/app"
	"dndinfo/internal/config"
	"dndinfo/internal/database"
	"dndinfo/internal/labels"
	"dndinfo/internal/observability"
	"dndinfo/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:  "dndinfo-api",
		Environment:  cfg.AppEnv,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		lg.Fatal("tracing init failed", "error", err)
	}

	table, err := labels.Load(cfg.LabelsFile)
	if err != nil {
		lg.Fatal("label table load failed", "error", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, database.WithLogger(lg))
	if err != nil {
		lg.Fatal("database connect failed", "error", err)
	}
	if err := database.Migrate(db, app.Models()...); err != nil {
		lg.Fatal("migration failed", "error", err)
	}

	a := app.New(cfg, db, table, lg)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := a.Auth.EnsureAdmin(ctx, cfg.AdminEmail, "admin", cfg.AdminPassword); err != nil {
			lg.Fatal("admin bootstrap failed", "error", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server shutdown error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		lg.Error("tracing shutdown error", "error", err)
	}
}
