package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/docsort/docsort-api/internal/config"
	"github.com/docsort/docsort-api/internal/domain/access"
	"github.com/docsort/docsort-api/internal/domain/account"
	"github.com/docsort/docsort-api/internal/domain/admin"
	"github.com/docsort/docsort-api/internal/domain/attempt"
	"github.com/docsort/docsort-api/internal/domain/categorize"
	"github.com/docsort/docsort-api/internal/domain/gate"
	"github.com/docsort/docsort-api/internal/domain/usage"
	"github.com/docsort/docsort-api/internal/middleware"
	"github.com/docsort/docsort-api/internal/pkg/classifier"
	"github.com/docsort/docsort-api/internal/pkg/database"
	"github.com/docsort/docsort-api/internal/pkg/email"
	"github.com/docsort/docsort-api/internal/pkg/logger"
	"github.com/docsort/docsort-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting DocSort API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	// ---------- Repositories ----------
	accountRepo := account.NewRepository(db)
	usageRepo := usage.NewRepository(db)

	var ledger gate.AttemptLedger
	if cfg.RateLimitStore == "redis" && redisClient != nil {
		ledger = attempt.NewRedisLedger(redisClient)
		log.Info().Msg("Failed-attempt ledger backed by Redis")
	} else {
		ledger = attempt.NewRepository(db)
		log.Info().Msg("Failed-attempt ledger backed by Postgres")
	}

	// ---------- Gate ----------
	admissionGate := gate.New(accountRepo, ledger, gate.Config{
		Window:    cfg.RateLimitWindow,
		Threshold: cfg.RateLimitThreshold,
		KeyBy:     gate.KeyPolicy(cfg.RateLimitKeyBy),
	})

	// ---------- Classifier ----------
	var gemini classifier.Classifier
	if cfg.GeminiAPIKey != "" {
		g, err := classifier.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
		gemini = g
	} else {
		// Requests will be rejected with a configuration error; the
		// service still starts so admin provisioning stays reachable.
		log.Warn().Msg("GOOGLE_API_KEY not set, categorization disabled")
	}

	// ---------- Services ----------
	categorizeService := categorize.NewService(admissionGate, gemini, usageRepo, accountRepo, cfg.RefundOnUpstreamFailure)

	mailer := email.NewSendGridClient(email.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	})
	accessService := access.NewService(access.NewRecaptchaVerifier(cfg.RecaptchaSecret), mailer, cfg.AdminEmail)

	adminJWTService := admin.NewJWTService(cfg.JWTSecret, cfg.AdminTokenTTL)

	// ---------- Handlers ----------
	categorizeHandler := categorize.NewHandler(categorizeService)
	usageHandler := usage.NewHandler(usageRepo)
	accessHandler := access.NewHandler(accessService)
	adminHandler := admin.NewHandler(adminJWTService, accountRepo, usageRepo, cfg.AdminPasswordHash)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/categorize", categorizeHandler.Routes())
		r.Mount("/usage", usageHandler.Routes())
		r.Mount("/access-requests", accessHandler.Routes())
	})

	r.Mount("/api/admin", adminHandler.Routes())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
