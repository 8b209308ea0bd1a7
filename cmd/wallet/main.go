package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"wallet/internal/auth"
	"wallet/internal/backend"
	"wallet/internal/config"
	apphttp "wallet/internal/http"
	"wallet/internal/ledger"
	"wallet/internal/log"
	"wallet/internal/report"
)

func main() {
	// .env is for local development; absence is not an error
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	infra, err := backend.Build(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer infra.Close()

	srv := apphttp.NewServer(apphttp.Options{
		Port:              cfg.Port,
		Ledger:            ledger.NewService(infra.Store, infra.Events, logger),
		Reporter:          report.NewReporter(infra.Store),
		Auth:              auth.NewService(infra.Store, logger),
		Logger:            logger,
		DashboardCacheTTL: cfg.DashboardCacheTTL,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting wallet server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", infra.Events != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
