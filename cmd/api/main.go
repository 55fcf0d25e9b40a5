package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/clinic-webhooks/config"
	"github.com/marcelsud/clinic-webhooks/internal/app"
	"github.com/marcelsud/clinic-webhooks/internal/http/chi"
	"github.com/marcelsud/clinic-webhooks/internal/logger"
	"github.com/marcelsud/clinic-webhooks/provisioning"
	"github.com/rs/zerolog"
)

const TIMEOUT = 30 * time.Second

/* main.go is where the remaining packages are tied together
 * Imports only go down: the api imports the business layer, which imports storage
 */

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	// httplog resets the global level, so the configured logger goes second
	accessLog := httplog.NewLogger("clinic-webhooks", httplog.Options{
		JSON: cfg.LogFormat != "text",
	})
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		ctxTimeout, cancel := context.WithTimeout(context.Background(), TIMEOUT)
		defer cancel()
		if err := a.Shutdown(ctxTimeout); err != nil {
			log.Error().Err(err).Msg("shutdown incomplete")
		}
	}()

	if cfg.SubscriptionsFile != "" {
		if err := provision(ctx, a, cfg.SubscriptionsFile, log); err != nil {
			return err
		}
	}

	a.Start(ctx)

	r := chi.Handlers(ctx, a.Registry, a.Audit, a.Publisher,
		chi.WithTenantHeader(cfg.TenantHeader),
		chi.WithMetrics(a.MetricsHandler()),
		chi.WithAccessLog(accessLog),
	)
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	log.Info().
		Str("port", cfg.Port).
		Str("store", cfg.Store).
		Str("queue", cfg.Queue).
		Int("workers", cfg.WorkerConcurrency).
		Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return <-errShutdown
}

func provision(ctx context.Context, a *app.App, path string, log zerolog.Logger) error {
	loader := provisioning.NewLoader()
	if err := loader.Load(path); err != nil {
		return err
	}
	result, err := loader.Apply(ctx, a.Registry, log)
	if err != nil {
		return err
	}
	log.Info().
		Str("file", path).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Msg("subscriptions provisioned")
	return nil
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("forcing closing the server: %w", err)
	}
}
