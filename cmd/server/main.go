package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nwmlabs/nwm-api/internal/config"
	"github.com/nwmlabs/nwm-api/internal/platform/logger"
	"github.com/nwmlabs/nwm-api/internal/platform/postgres"
	"github.com/nwmlabs/nwm-api/internal/service"
	"github.com/nwmlabs/nwm-api/internal/service/auth"
	"github.com/nwmlabs/nwm-api/internal/store"
)

// application holds the wired dependencies for the server process.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	db          *sql.DB
	userStore   store.UserStore
	userService *service.UserService
}

var purgeStaleSignups = flag.Bool("purge-stale-signups", false,
	"delete stale non-activated accounts and exit instead of serving")

func main() {
	flag.Parse()
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database", "error", closeErr)
		}
	}()

	if err := runMigrations(db, log); err != nil {
		return err
	}

	userStore := postgres.NewUserStore(db, log)
	userService := service.NewUserService(userStore, auth.NewBcryptHasher(), log)

	// Maintenance mode: run the signup-hygiene job and exit.
	if *purgeStaleSignups {
		n, err := userService.PurgeStaleSignups(context.Background(), db)
		if err != nil {
			return fmt.Errorf("purging stale signups: %w", err)
		}
		log.Info("stale signup purge finished", "purged", n)
		return nil
	}

	app := &application{
		config:      cfg,
		logger:      log,
		db:          db,
		userStore:   userStore,
		userService: userService,
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
