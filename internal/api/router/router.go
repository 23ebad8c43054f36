// Package router assembles the HTTP surface of the desk assistant.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apimiddleware "github.com/cityclinic/desk-assistant/internal/api/middleware"
	"github.com/cityclinic/desk-assistant/internal/appointments"
	"github.com/cityclinic/desk-assistant/internal/chat"
	"github.com/cityclinic/desk-assistant/internal/kiosk"
	"github.com/cityclinic/desk-assistant/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	ChatHandler         *chat.Handler
	KioskHandler        *kiosk.Handler
	AppointmentsHandler *appointments.Handler
	SlotsHandler        http.HandlerFunc
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(apimiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(apimiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "OK"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.ChatHandler != nil {
			api.Post("/chat", cfg.ChatHandler.Chat)
		}
		if cfg.KioskHandler != nil {
			api.Get("/chat/ws", cfg.KioskHandler.HandleWebSocket)
		}
		if cfg.SlotsHandler != nil {
			api.Get("/slots", cfg.SlotsHandler)
		}
		if cfg.AppointmentsHandler != nil {
			api.Mount("/appointments", cfg.AppointmentsHandler.Routes())
		}
	})

	return r
}
