// Package bot собирает вебхук-сервис: хранилище, кеш сессий, клиент LINE
// и HTTP-сервер с маршрутами.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/shizu-na/gomidashi-bot/internal/cache"
	"github.com/shizu-na/gomidashi-bot/internal/config"
	"github.com/shizu-na/gomidashi-bot/internal/line"
	"github.com/shizu-na/gomidashi-bot/internal/metrics"
	"github.com/shizu-na/gomidashi-bot/internal/migrations"
	botservice "github.com/shizu-na/gomidashi-bot/internal/services/bot"
	"github.com/shizu-na/gomidashi-bot/internal/storage/repository"
)

// App вебхук-сервис целиком.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New инициализирует все зависимости и возвращает готовое приложение.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Bot.Timezone)
	if err != nil {
		return nil, err
	}

	metrics.Init()

	lineClient := line.NewClient(cfg.Line.APIEndpoint, cfg.Line.ChannelAccessToken)
	botService := botservice.New(db, cacheRedis, lineClient, logger, botservice.Options{
		TermsURL:   cfg.Line.TermsURL,
		SessionTTL: cfg.Bot.SessionTTL,
		Limits: botservice.Limits{
			ItemMaxLength: cfg.Bot.ItemMaxLength,
			NoteMaxLength: cfg.Bot.NoteMaxLength,
		},
		Location: loc,
	})

	router := chi.NewRouter()
	RegisterRoutes(router, logger, botService, cfg.Line.ChannelSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
