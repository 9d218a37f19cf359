package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"fitpulse/internal/appwrite"
	"fitpulse/internal/auth"
	"fitpulse/internal/config"
	"fitpulse/internal/fitness"
	transporthttp "fitpulse/internal/http"
	"fitpulse/internal/platform/database"
	"fitpulse/internal/platform/logging"
	"fitpulse/internal/platform/migrate"
	"fitpulse/internal/session"
)

const staleSessionAge = 30 * 24 * time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	creds, err := config.LoadGoogleCredentials(cfg.CredentialsFile)
	if err != nil {
		logger.Error("failed to load google credentials", "error", err)
		os.Exit(1)
	}

	sessions, cleanup, err := buildSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	authn := auth.NewAuthenticator(creds)
	profiles := auth.NewProfileFetcher(authn)
	metrics := fitness.NewClient(authn)

	var persister *appwrite.Persister
	if cfg.Appwrite.Enabled() {
		client := appwrite.NewClient(cfg.Appwrite, &http.Client{Timeout: 10 * time.Second})
		persister = appwrite.NewPersister(client, cfg.Appwrite)
	} else {
		logger.Warn("appwrite is not configured; profile persistence disabled")
	}

	router := transporthttp.NewRouter(cfg, authn, profiles, sessions, metrics, persister, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("Fitpulse API listening", "addr", srv.Addr, "sessions", cfg.SessionStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildSessionStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (session.Store, func(), error) {
	if cfg.UseInMemorySessions() {
		logger.Info("using in-memory session store")
		return session.NewMemoryStore(), nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}

	if err := migrate.Apply(ctx, db, logger); err != nil {
		cleanup()
		return nil, nil, err
	}

	store := session.NewPostgresStore(db)

	if removed, err := store.DeleteStale(ctx, staleSessionAge); err != nil {
		logger.Warn("stale session cleanup failed", "error", err)
	} else if removed > 0 {
		logger.Info("removed stale sessions", "count", removed)
	}

	logger.Info("connected to postgres session store")
	return store, cleanup, nil
}
