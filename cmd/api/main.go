// Package main is the entry point for the ganzhi API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mingxia/ganzhi-api/internal/api"
	"github.com/mingxia/ganzhi-api/internal/config"
	"github.com/mingxia/ganzhi-api/internal/database"
	"github.com/mingxia/ganzhi-api/internal/logger"
	"github.com/mingxia/ganzhi-api/internal/lunar"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	log.Info("starting ganzhi API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	cal, err := lunar.NewCalendar()
	if err != nil {
		return fmt.Errorf("load lunar calendar: %w", err)
	}

	handlers := api.NewHandlers(db, cal, cfg, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.SetupRoutes(handlers, cfg, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		log.Info("shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
