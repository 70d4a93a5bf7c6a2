package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/access"
	"github.com/stemsi/lms-admin-mock/internal/config"
	"github.com/stemsi/lms-admin-mock/internal/database"
	"github.com/stemsi/lms-admin-mock/internal/handler"
	"github.com/stemsi/lms-admin-mock/internal/logger"
	"github.com/stemsi/lms-admin-mock/internal/middleware"
	"github.com/stemsi/lms-admin-mock/internal/router"
	"github.com/stemsi/lms-admin-mock/internal/service"
	"github.com/stemsi/lms-admin-mock/internal/store"
	"github.com/stemsi/lms-admin-mock/internal/validator"
	"github.com/stemsi/lms-admin-mock/internal/worker"
)

// eventBufferSize is the per-subscriber change feed buffer.
const eventBufferSize = 64

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("storage", cfg.StorageBackend).
		Str("log_level", cfg.LogLevel).
		Msg("Starting LMS admin mock backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Storage ──────────────────────────────────────────────────
	backend, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer backend.Close()

	keys := config.NewStoreKeyStruct(cfg.StorageNamespace)
	gate := access.Default()

	// ─── Change Events ────────────────────────────────────────────────
	hub := service.NewEventHub(eventBufferSize, log)
	var publisher service.Publisher = hub

	workerCtx, workerCancel := context.WithCancel(context.Background())
	relayDone := make(chan struct{})
	if backend.Redis != nil {
		relay := worker.NewChangeRelay(backend.Redis, keys.Changes(), hub, log)
		publisher = service.Publishers{hub, relay}
		go func() {
			defer close(relayDone)
			relay.Start(workerCtx, nil)
		}()
	} else {
		close(relayDone)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	users := store.NewCollection(backend.Storage, keys.Users(), cfg.StorageQuotaBytes, log)
	userService := service.NewUserService(users, gate, authService, publisher, log)
	examService := service.NewExamService(backend.Storage, keys, cfg.StorageQuotaBytes, publisher, log)
	webinarService := service.NewWebinarService(backend.Storage, keys, cfg.StorageQuotaBytes, publisher, log)
	exportService := service.NewExportService()

	bootstrapAdmin(ctx, cfg, userService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(userService, gate, log),
		Role:     handler.NewRoleHandler(gate),
		User:     handler.NewUserHandler(userService, log),
		Exams:    handler.NewRecordHandler(examService, exportService, log),
		Webinars: handler.NewRecordHandler(webinarService, exportService, log),
		WS:       handler.NewWSHandler(hub, gate, log, cfg.AllowedOrigins),
	}

	loginLimiter := middleware.NewRateLimiter(ctx, cfg.LoginRatePerMinute, time.Minute)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, userService, handlers, loginLimiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the change relay after it has shared queued events.
	workerCancel()
	select {
	case <-relayDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Change relay did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// bootstrapAdmin creates the first admin from BOOTSTRAP_ADMIN_* when set.
// An existing admin is not an error; the variables are simply ignored.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, users *service.UserService, log zerolog.Logger) {
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		return
	}

	admin, err := users.Bootstrap(ctx, cfg.BootstrapAdminName, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
	switch {
	case errors.Is(err, service.ErrAlreadyBootstrapped):
		log.Debug().Msg("Admin already exists, skipping bootstrap")
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to bootstrap admin")
	default:
		log.Info().Str("user_id", admin.ID).Str("email", admin.Email).Msg("Bootstrap admin created")
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
