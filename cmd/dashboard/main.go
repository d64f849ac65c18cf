package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Djo9111/reporting-front/internal/agenda"
	"github.com/Djo9111/reporting-front/internal/application"
	"github.com/Djo9111/reporting-front/internal/config"
	httptransport "github.com/Djo9111/reporting-front/internal/http"
	"github.com/Djo9111/reporting-front/internal/logging"
	"github.com/Djo9111/reporting-front/internal/remote"
	"github.com/Djo9111/reporting-front/internal/session"
)

func main() {
	// .env is optional; the environment wins when both are present.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logging.NewJSONLogger(os.Stdout, "info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	store, err := session.Open(cfg.SessionDSN)
	if err != nil {
		logger.Error("failed to open session store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close session store", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply session schema", "error", err)
		os.Exit(1)
	}

	backend := remote.New(cfg.RemoteBaseURL, cfg.RemoteTimeout, logger)
	tokenGenerator := func() string { return uuid.NewString() }
	provisionalID := func() string { return "provisoire-" + uuid.NewString() }
	now := time.Now

	registry := agenda.NewRegistry(backend, provisionalID, logger)

	authService := application.NewAuthService(backend, store, tokenGenerator, now, cfg.SessionTTL, logger)
	clientService := application.NewClientService(backend, cfg.ContactCacheTTL, now, logger)
	performanceService := application.NewPerformanceService(backend, logger)
	directoryService := application.NewDirectoryService(backend, logger)
	importService := application.NewImportService(backend, cfg.AdminKeyHash, nil, clientService.InvalidateCache, logger)

	authorizeAdmin := func(key string) error {
		if cfg.AdminKeyHash == "" {
			return application.ErrForbidden
		}
		return application.VerifyAdminKey(cfg.AdminKeyHash, key)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Clients:      httptransport.NewClientHandler(clientService, logger),
		Directory:    httptransport.NewDirectoryHandler(directoryService, authorizeAdmin, logger),
		Performance:  httptransport.NewPerformanceHandler(performanceService, logger),
		Imports:      httptransport.NewImportHandler(importService, logger),
		Agenda:       httptransport.NewAgendaHandler(registry, clientService, now, logger),
		Middleware:   []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
		SessionGuard: httptransport.RequireSession(authService, logger),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("dashboard gateway listening", "addr", server.Addr, "backend", cfg.RemoteBaseURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
