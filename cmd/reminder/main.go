// Package main запускает диспетчер напоминаний.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	reminderapp "github.com/shizu-na/gomidashi-bot/internal/app/reminder"
	"github.com/shizu-na/gomidashi-bot/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting reminder dispatcher", slog.String("env", cfg.Env),
		slog.String("poll_interval", cfg.Bot.PollInterval.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := reminderapp.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize reminder dispatcher", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("reminder dispatcher stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("reminder dispatcher stopped gracefully")
}
