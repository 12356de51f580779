// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

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

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"

	"codeberg.org/oliverandrich/nutrilab/internal/config"
	"codeberg.org/oliverandrich/nutrilab/internal/database"
	"codeberg.org/oliverandrich/nutrilab/internal/i18n"
	"codeberg.org/oliverandrich/nutrilab/internal/repository"
	"codeberg.org/oliverandrich/nutrilab/internal/services/activation"
	"codeberg.org/oliverandrich/nutrilab/internal/services/auth"
	"codeberg.org/oliverandrich/nutrilab/internal/services/clinic"
	"codeberg.org/oliverandrich/nutrilab/internal/services/email"
	"codeberg.org/oliverandrich/nutrilab/internal/services/session"
	"codeberg.org/oliverandrich/nutrilab/internal/storage"
)

// deps holds everything the routes need.
type deps struct {
	cfg        *config.Config
	repo       *repository.Repository
	sessions   *session.Manager
	auth       *auth.Service
	activation *activation.Service
	clinic     *clinic.Service
	store      storage.Store
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(&cfg.Log)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (migrations run on open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	d, err := newDeps(ctx, cfg, repository.New(db))
	if err != nil {
		return err
	}

	return startWithGracefulShutdown(newEcho(d), cfg)
}

// newDeps builds the services on top of the repository.
func newDeps(ctx context.Context, cfg *config.Config, repo *repository.Repository) (*deps, error) {
	mailer, err := email.NewService(&cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("failed to create email service: %w", err)
	}

	store, err := storage.New(ctx, &cfg.Media)
	if err != nil {
		return nil, fmt.Errorf("failed to create media storage: %w", err)
	}

	sessions, err := session.NewManager(&cfg.Session, cfg.SecureCookies())
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	act := activation.NewService(repo, mailer, cfg.Server.BaseURL, cfg.Activation.TokenTTL)

	return &deps{
		cfg:        cfg,
		repo:       repo,
		sessions:   sessions,
		auth:       auth.NewService(repo, act),
		activation: act,
		clinic:     clinic.NewService(repo, store),
		store:      store,
	}, nil
}

// newEcho creates the configured echo instance.
func newEcho(d *deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, d)
	setupRoutes(e, d)
	return e
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
