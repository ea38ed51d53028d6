// Package bot предоставляет маршруты вебхук-сервиса.
package bot

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shizu-na/gomidashi-bot/internal/http/handlers/health"
	"github.com/shizu-na/gomidashi-bot/internal/http/handlers/webhook"
	"github.com/shizu-na/gomidashi-bot/internal/http/middlewarectx"
	botservice "github.com/shizu-na/gomidashi-bot/internal/services/bot"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, botService *botservice.Service, channelSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Post("/webhook", webhook.New(logger, botService, channelSecret).ServeHTTP)
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
}
