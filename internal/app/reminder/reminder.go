// Package reminder собирает сервис диспетчера напоминаний.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shizu-na/gomidashi-bot/internal/config"
	"github.com/shizu-na/gomidashi-bot/internal/line"
	"github.com/shizu-na/gomidashi-bot/internal/metrics"
	reminderservice "github.com/shizu-na/gomidashi-bot/internal/services/reminder"
	"github.com/shizu-na/gomidashi-bot/internal/storage/repository"
)

// App сервис напоминаний целиком.
type App struct {
	service *reminderservice.Service
	logger  *slog.Logger
	db      *repository.Storage
}

// New инициализирует зависимости диспетчера напоминаний.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = waitForDB(db); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Bot.Timezone)
	if err != nil {
		return nil, err
	}

	metrics.Init()

	lineClient := line.NewClient(cfg.Line.APIEndpoint, cfg.Line.ChannelAccessToken)
	service := reminderservice.New(db, lineClient, logger, loc, cfg.Bot.PollInterval)

	return &App{
		service: service,
		logger:  logger,
		db:      db,
	}, nil
}

// Run крутит тики диспетчера до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.service.Run(ctx)
	_ = a.db.DB.Close()
	return nil
}

// Миграции применяет вебхук-сервис; здесь только ожидание готовности схемы.
func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}
