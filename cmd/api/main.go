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

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/cityclinic/desk-assistant/cmd/mainconfig"
	"github.com/cityclinic/desk-assistant/internal/api/router"
	"github.com/cityclinic/desk-assistant/internal/appointments"
	"github.com/cityclinic/desk-assistant/internal/chat"
	appconfig "github.com/cityclinic/desk-assistant/internal/config"
	"github.com/cityclinic/desk-assistant/internal/kiosk"
	"github.com/cityclinic/desk-assistant/internal/notify"
	"github.com/cityclinic/desk-assistant/internal/slots"
	"github.com/cityclinic/desk-assistant/pkg/logging"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting desk-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Appointment store
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	repo := appointments.NewRepository(pool)

	// Reasoning backend
	chatter, closeChatter := buildChatter(ctx, cfg, logger)
	defer closeChatter()

	// Session storage
	var sessions chat.SessionStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()
		sessions = chat.NewRedisSessionStore(rdb)
		logger.Info("using redis session store", "addr", cfg.RedisAddr)
	} else {
		sessions = chat.NewMemorySessionStore()
		logger.Info("using in-memory session store")
	}

	// Booking confirmation emails
	var notifier chat.Notifier
	if cfg.ClinicEmail != "" && cfg.NotifyFromEmail != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config for SES", "error", err)
			os.Exit(1)
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.NotifyFromEmail,
			FromName:  cfg.NotifyFromName,
		}, logger)
		notifier = notify.NewService(sender, cfg.ClinicEmail, logger)
		logger.Info("booking notifications enabled", "clinic_email", cfg.ClinicEmail)
	}

	processor := chat.NewProcessor(chatter, repo, sessions, notifier, cfg.ChatTimeout, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:              logger,
		ChatHandler:         chat.NewHandler(processor, logger),
		KioskHandler:        kiosk.NewHandler(processor, logger),
		AppointmentsHandler: appointments.NewHandler(repo, logger),
		SlotsHandler:        slots.Handler(),
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildChatter selects the reasoning backend from configuration. A missing or
// broken backend degrades to a chatter that fails every turn, so the
// management API stays up.
func buildChatter(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (chat.Chatter, func()) {
	noop := func() {}

	switch cfg.LLMProvider {
	case "bedrock":
		if cfg.BedrockModelID == "" {
			logger.Error("BEDROCK_MODEL_ID not set, chat turns will fail")
			return chat.Unavailable{Err: errors.New("BEDROCK_MODEL_ID not set")}, noop
		}
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config for Bedrock", "error", err)
			return chat.Unavailable{Err: err}, noop
		}
		client, err := chat.NewBedrockClient(
			bedrockruntime.NewFromConfig(awsCfg),
			cfg.BedrockModelID,
			chat.CurrentInstructions,
			float32(cfg.LLMTemperature),
		)
		if err != nil {
			logger.Error("failed to create Bedrock client", "error", err)
			return chat.Unavailable{Err: err}, noop
		}
		logger.Info("using bedrock reasoning backend", "model_id", cfg.BedrockModelID)
		return client, noop

	default:
		if cfg.GeminiAPIKey == "" {
			logger.Error("GEMINI_API_KEY not set, chat turns will fail")
			return chat.Unavailable{Err: errors.New("GEMINI_API_KEY not set")}, noop
		}
		client, err := chat.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID, chat.CurrentInstructions, float32(cfg.LLMTemperature))
		if err != nil {
			logger.Error("failed to create Gemini client", "error", err)
			return chat.Unavailable{Err: err}, noop
		}
		logger.Info("using gemini reasoning backend", "model_id", cfg.GeminiModelID)
		return client, func() { _ = client.Close() }
	}
}
