package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/providoor/whatsapp-bot/internal/http/middleware"
	"github.com/providoor/whatsapp-bot/internal/messaging"
	"github.com/providoor/whatsapp-bot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger           *logging.Logger
	MessagingHandler *messaging.Handler
	MetricsHandler   http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/ping", cfg.MessagingHandler.Ping)
	r.Get("/health", cfg.MessagingHandler.HealthCheck)
	r.Route("/whatsapp", func(r chi.Router) {
		r.Post("/message", cfg.MessagingHandler.WhatsAppMessage)
		r.Post("/test", cfg.MessagingHandler.WhatsAppTest)
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
