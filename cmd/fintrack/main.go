package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/currency"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/query"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	// Initialize ledger backend
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Exchange rates, swept once per TTL
	provider := currency.NewProvider(currency.NewHTTPSource(cfg.RatesAPIURL, cfg.RatesAPIKey, nil), cfg.RatesCacheTTL, logger)
	caches := cache.NewManager(logger)
	caches.Register(provider.Cache())
	caches.StartCleanup(cfg.RatesCacheTTL)

	// Rate broadcasts are optional; without AMQP the provider fetches on demand.
	var amqpClient *amqp.Client
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, rate broadcasts disabled", log.FieldError, err.Error())
		} else {
			go func() {
				err := amqpClient.ConsumeRatesUpdated(consumerCtx, func(ctx context.Context, msg *amqp.RatesUpdatedMessage) error {
					provider.Prime(ctx, msg.Pivot, msg.Rates)
					return nil
				})
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Rates consumer stopped", log.FieldError, err.Error())
				}
			}()
		}
	}

	reports := services.NewReportService(res.Backend, provider, cfg.RatesPivot, query.NewSorter(cfg.LanguageTag()), logger)

	srv := apphttp.NewServer(":"+cfg.Port, reports, apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Ready: func(ctx context.Context) error {
			_, err := res.Backend.Assets(ctx)
			return err
		},
	})

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		stopConsumer()
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err.Error())
			}
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", log.FieldError, err.Error())
			}
		}
	})

	logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend, "pivot", cfg.RatesPivot)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
