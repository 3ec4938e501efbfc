package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/nestsplit/nestsplit/internal/app"
	"github.com/nestsplit/nestsplit/internal/auth"
	"github.com/nestsplit/nestsplit/internal/httpapi"
	"github.com/nestsplit/nestsplit/internal/middleware"
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

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	handler := httpapi.NewHandler(
		service.NewAuthService(authenticator, jwtManager, store),
		service.NewHouseholdService(store),
		service.NewExpenseService(store),
		service.NewSubscriptionService(store),
		service.NewNotificationService(store),
		jwtManager,
		middleware.NewMetrics(),
	)

	// h2c allows HTTP/2 clients without TLS termination in front.
	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      h2c.NewHandler(handler.Router(), &http2.Server{}),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting", "address", cfg.AppAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppWriteTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
