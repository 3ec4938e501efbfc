package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/nestsplit/nestsplit/internal/app"
	"github.com/nestsplit/nestsplit/internal/jobs"
	"github.com/nestsplit/nestsplit/internal/service"
	"github.com/nestsplit/nestsplit/internal/storage/sqlite"
	"github.com/nestsplit/nestsplit/pkg/logging"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Fail fast when redis is unreachable instead of retrying silently.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to reach redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	rdb.Close()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	handlers := jobs.NewHandlers(store, service.NewExpenseService(store), cfg.DebtReminderThreshold)
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:        asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Concurrency:      cfg.WorkerConcurrency,
		SubscriptionScan: cfg.SubscriptionScan,
		ReminderInterval: cfg.ReminderInterval,
	}, handlers)
	if err != nil {
		slog.Error("Failed to build worker", "error", err)
		os.Exit(1)
	}

	slog.Info("Worker starting",
		"redis", cfg.RedisAddr,
		"concurrency", cfg.WorkerConcurrency,
		"subscription_scan", cfg.SubscriptionScan,
		"reminder_interval", cfg.ReminderInterval,
	)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Worker failed", "error", err)
		os.Exit(1)
	}
}
