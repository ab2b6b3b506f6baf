package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petermazzocco/prompt-image-app/internal/archive"
	"github.com/petermazzocco/prompt-image-app/internal/auth"
	"github.com/petermazzocco/prompt-image-app/internal/config"
	"github.com/petermazzocco/prompt-image-app/internal/database"
	"github.com/petermazzocco/prompt-image-app/internal/handlers"
	"github.com/petermazzocco/prompt-image-app/internal/imagefetch"
	"github.com/petermazzocco/prompt-image-app/internal/server"
	"github.com/petermazzocco/prompt-image-app/internal/store"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(); err != nil {
		slog.Error("shutting down due to error", "error", err)
		os.Exit(1)
	}
	slog.Info("server exiting")
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Database connection
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	users := store.NewUsers(db, cfg.BcryptCost)
	prompts := store.NewPrompts(db)

	// Session store
	sessions := auth.NewManager(auth.NewCookieStore(cfg.SessionSecret, cfg.SecureCookies), users)

	// Outbound clients share the TLS-restricted transport
	httpClient := imagefetch.NewHTTPClient()
	images := imagefetch.NewClient(httpClient, cfg.ImageServiceURL, cfg.ImageWidth, cfg.ImageHeight)

	archiver, err := archive.New(ctx, cfg.Archive, httpClient)
	if err != nil {
		return err
	}
	if cfg.Archive.Enabled() {
		slog.Info("archiving images", "bucket", cfg.Archive.Bucket)
	}

	h := handlers.New(users, prompts, sessions, images, archiver)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.NewRouter(h, sessions),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting API server", "addr", cfg.Addr, "image_url", images.URL())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case s := <-stop:
		slog.Info("shutting down due to signal", "signal", s.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
