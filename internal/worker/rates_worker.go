package worker

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/currency"
	"fintrack/internal/log"
)

// Publisher broadcasts a freshly fetched rate table
type Publisher interface {
	PublishRatesUpdated(ctx context.Context, msg *amqp.RatesUpdatedMessage) error
}

// RatesWorker periodically fetches the pivot rate table and broadcasts it so
// API instances can prime their caches without hitting the rates API.
type RatesWorker struct {
	source    currency.Source
	publisher Publisher
	pivot     string
	interval  time.Duration
	logger    *log.Logger
	slog      *log.StructuredLogger
	now       func() time.Time
}

func NewRatesWorker(source currency.Source, publisher Publisher, pivot string, interval time.Duration, logger *log.Logger) *RatesWorker {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentWorker)
	return &RatesWorker{
		source:    source,
		publisher: publisher,
		pivot:     pivot,
		interval:  interval,
		logger:    logger,
		slog:      log.NewStructuredLogger(logger),
		now:       time.Now,
	}
}

// Refresh fetches one table and publishes it
func (w *RatesWorker) Refresh(ctx context.Context) (*amqp.RatesUpdatedMessage, error) {
	rates, err := w.source.Fetch(ctx, w.pivot)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	w.slog.LogRatesFetched(ctx, w.pivot, len(rates), "api")

	msg := amqp.NewRatesUpdatedMessage(w.pivot, rates, w.now())
	if err := w.publisher.PublishRatesUpdated(ctx, msg); err != nil {
		return nil, fmt.Errorf("publish rates: %w", err)
	}
	return msg, nil
}

// Run refreshes once at startup and then on every tick until ctx is done.
// Failed refreshes are logged and retried on the next tick.
func (w *RatesWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting rates worker",
		log.FieldPivot, w.pivot,
		"interval", w.interval)

	w.refreshAndLog(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Rates worker stopped", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			w.refreshAndLog(ctx)
		}
	}
}

func (w *RatesWorker) refreshAndLog(ctx context.Context) {
	if _, err := w.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.slog.LogError(ctx, "Rates refresh failed", err, log.ComponentWorker, log.OpFetch,
			log.NewFields().WithRates(w.pivot, 0))
	}
}
