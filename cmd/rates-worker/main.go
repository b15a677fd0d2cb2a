package main

import (
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/currency"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to broadcast exchange rates")
		os.Exit(1)
	}

	logger.Info("Starting rates-worker", "pivot", cfg.RatesPivot, "interval", cfg.RatesRefreshInterval.String())

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}

	source := currency.NewHTTPSource(cfg.RatesAPIURL, cfg.RatesAPIKey, nil)
	w := worker.NewRatesWorker(source, amqpClient, cfg.RatesPivot, cfg.RatesRefreshInterval, logger)

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)
	if err := w.Run(ctx); err != nil {
		logger.Error("Rates worker stopped", log.FieldError, err.Error())
	}
	<-done

	if err := amqpClient.Close(); err != nil {
		logger.Warn("AMQP close error", log.FieldError, err.Error())
	}
	logger.Info("Rates worker stopped gracefully")
}
