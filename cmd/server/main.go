package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gsmp/mentorship-backend/internal/config"
	"github.com/gsmp/mentorship-backend/internal/database"
	"github.com/gsmp/mentorship-backend/internal/firebase"
	"github.com/gsmp/mentorship-backend/internal/handler"
	"github.com/gsmp/mentorship-backend/internal/logger"
	"github.com/gsmp/mentorship-backend/internal/mailer"
	"github.com/gsmp/mentorship-backend/internal/metrics"
	"github.com/gsmp/mentorship-backend/internal/middleware"
	"github.com/gsmp/mentorship-backend/internal/repository"
	"github.com/gsmp/mentorship-backend/internal/router"
	"github.com/gsmp/mentorship-backend/internal/service"
	"github.com/gsmp/mentorship-backend/internal/validator"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting GSMP Mentorship Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Messaging Bridge ──────────────────────────────────────────────
	// Without credentials the chat endpoints answer UPSTREAM_ERROR.
	var bridge service.MessageBridge
	if cfg.Firebase.Enabled() {
		fb, err := firebase.New(ctx, cfg.Firebase)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Firebase")
		}
		defer fb.Close()
		bridge = fb
		log.Info().Str("project_id", cfg.Firebase.ProjectID).Msg("Firebase bridge ready")
	} else {
		log.Warn().Msg("Firebase credentials not set, messaging disabled")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	accountRepo := repository.NewAccountRepository(pool)
	pairingRepo := repository.NewPairingRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	videoRepo := repository.NewVideoRepository(pool)
	sessionRepo := repository.NewSessionRepository(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	notifier := mailer.New(cfg.SMTP, log)
	hasher := service.NewPasswordHasher(cfg.BcryptCost)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, sessionRepo)
	media := service.NewMediaService(cfg.UploadDir, cfg.MaxVideoBytes)

	accountService := service.NewAccountService(accountRepo, hasher, log)
	authService := service.NewAuthService(accountRepo, accountService, hasher, service.NewOTPIssuer(),
		tokens, sessionRepo, notifier, cfg.ResetRequiresOTP, log)
	registrationService := service.NewRegistrationService(accountRepo, accountService, hasher, media, notifier, log)
	pairingService := service.NewPairingService(accountRepo, pairingRepo, log)
	courseService := service.NewCourseService(courseRepo, videoRepo, media, log)
	videoService := service.NewVideoService(videoRepo, courseRepo, media, log)
	messagingService := service.NewMessagingService(bridge, log)
	importService := service.NewStudentImportService(accountRepo, accountService, notifier, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	m := metrics.New()
	urls := handler.MediaURLs{BaseURL: cfg.PublicBaseURL}
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, m, log),
		Registration: handler.NewRegistrationHandler(registrationService, urls, log),
		User:         handler.NewUserHandler(accountService, pairingService, urls, log),
		Message:      handler.NewMessageHandler(messagingService, log),
		Course:       handler.NewCourseHandler(courseService, urls, log),
		Video:        handler.NewVideoHandler(videoService, urls, log),
		Import:       handler.NewImportHandler(importService, log),
		System: handler.NewSystemHandler(map[string]handler.HealthCheck{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, log),
	}

	// ─── Rate Limiter ──────────────────────────────────────────────────
	limiterStop := make(chan struct{})
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimitPerMinute)
	go limiter.Run(limiterStop)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(router.Deps{
		Config:   cfg,
		Tokens:   tokens,
		Accounts: accountRepo,
		Limiter:  limiter,
		Metrics:  m,
		Log:      log,
	}, handlers)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests. Uploads get longer than usual to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the limiter janitor.
	close(limiterStop)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
