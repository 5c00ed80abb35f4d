package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bkcnorm/internal/app"
	"bkcnorm/internal/config"
	"bkcnorm/internal/handler"
	"bkcnorm/internal/logging"
	"bkcnorm/internal/router"
	"bkcnorm/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	comps, err := app.BuildPipeline(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer func() { _ = comps.Close() }()

	// Initialize services and handlers
	bookingSvc := service.NewBookingService(comps.Pipeline, cfg.Batch, logger)
	bookingH := handler.NewBookingHandler(bookingSvc, cfg.Server.MaxBodyMB<<20)
	// A nil *Cache must not reach the handler as a non-nil Pinger.
	var healthH *handler.HealthHandler
	if comps.Cache != nil {
		healthH = handler.NewHealthHandler(comps.Cache)
	} else {
		healthH = handler.NewHealthHandler(nil)
	}

	r := router.Setup(bookingH, healthH, cfg.CORS, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("environment", cfg.Server.Environment),
			zap.String("schema", cfg.Pipeline.Schema),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
