// Package services wires ledger stores and the rate provider to the pure
// report functions.
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/period"
	"fintrack/internal/query"
	"fintrack/internal/report"
)

// RatesProvider returns the rate table for a pivot currency.
type RatesProvider interface {
	Rates(ctx context.Context, pivot string) (currency.Rates, error)
}

// TransactionQuery selects and orders a transaction listing.
type TransactionQuery struct {
	Filter query.FilterKey
	Values []string
	Orders []query.Order
}

// AssetBalance is an asset with its derived current balance.
type AssetBalance struct {
	Asset     core.Asset `json:"asset"`
	Balance   float64    `json:"balance"`
	Formatted string     `json:"formatted"`
}

// AssetDetails is an asset with its totals over a resolved window.
type AssetDetails struct {
	Asset   core.Asset     `json:"asset"`
	Window  period.Window  `json:"window"`
	Details report.Details `json:"details"`
}

// CategorySpending is a category with what was spent against its budget.
type CategorySpending struct {
	Category  core.Category `json:"category"`
	Window    period.Window `json:"window"`
	Spent     float64       `json:"spent"`
	Remaining float64       `json:"remaining"`
	Formatted string        `json:"formatted"`
}

// ReportService loads a fresh snapshot for every call and hands it to the
// report package. It holds no ledger state of its own.
type ReportService struct {
	ledger ledger.Reader
	rates  RatesProvider
	pivot  string
	sorter *query.Sorter
	now    func() time.Time
	logger *log.Logger
	slog   *log.StructuredLogger
}

func NewReportService(reader ledger.Reader, rates RatesProvider, pivot string, sorter *query.Sorter, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Discard()
	}
	if sorter == nil {
		sorter = query.NewSorter(language.English)
	}
	logger = logger.WithComponent(log.ComponentReport)
	return &ReportService{
		ledger: reader,
		rates:  rates,
		pivot:  pivot,
		sorter: sorter,
		now:    time.Now,
		logger: logger,
		slog:   log.NewStructuredLogger(logger),
	}
}

// WithClock replaces the wall clock. Intended for tests.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// Resolve returns the concrete window of p as of now.
func (s *ReportService) Resolve(p period.Period) period.Window {
	return period.Resolve(p, s.now())
}

// Transactions filters and sorts the ledger's transactions.
func (s *ReportService) Transactions(ctx context.Context, q TransactionQuery) ([]core.Transaction, error) {
	snap, err := ledger.Load(ctx, s.ledger)
	if err != nil {
		return nil, err
	}
	txs := query.Filter(snap.Transactions, q.Filter, q.Values)
	txs = s.sorter.Sort(txs, q.Orders, snap)
	s.logger.DebugContext(ctx, "Transactions listed", "filter", q.Filter, log.FieldCount, len(txs))
	return txs, nil
}

// Balance returns the current balance of asset id.
func (s *ReportService) Balance(ctx context.Context, id string) (AssetBalance, error) {
	snap, err := ledger.Load(ctx, s.ledger)
	if err != nil {
		return AssetBalance{}, err
	}
	asset, ok := snap.Asset(id)
	if !ok {
		return AssetBalance{}, fmt.Errorf("asset %q: %w", id, ledger.ErrNotFound)
	}

	balance := report.Balance(asset, snap.Transactions, s.now())
	return AssetBalance{
		Asset:     asset,
		Balance:   balance,
		Formatted: core.FormatAmount(balance, asset.Currency),
	}, nil
}

// Details returns the per-type totals of asset id over p.
func (s *ReportService) Details(ctx context.Context, id string, p period.Period) (AssetDetails, error) {
	snap, err := ledger.Load(ctx, s.ledger)
	if err != nil {
		return AssetDetails{}, err
	}
	asset, ok := snap.Asset(id)
	if !ok {
		return AssetDetails{}, fmt.Errorf("asset %q: %w", id, ledger.ErrNotFound)
	}

	now := s.now()
	d := report.AssetDetails(asset, snap.Transactions, p, now)
	s.slog.LogReport(ctx, log.OpDetails, p.String(), "", len(snap.Transactions))
	return AssetDetails{Asset: asset, Window: period.Resolve(p, now), Details: d}, nil
}

// Spent returns what category id spent over p, in its own currency.
func (s *ReportService) Spent(ctx context.Context, id string, p period.Period) (CategorySpending, error) {
	snap, err := ledger.Load(ctx, s.ledger)
	if err != nil {
		return CategorySpending{}, err
	}
	cat, ok := snap.Category(id)
	if !ok {
		return CategorySpending{}, fmt.Errorf("category %q: %w", id, ledger.ErrNotFound)
	}
	rates, err := s.rateTable(ctx)
	if err != nil {
		return CategorySpending{}, err
	}

	now := s.now()
	spent := report.CategorySpent(cat, snap.Transactions, rates, p, now)
	s.slog.LogReport(ctx, log.OpSpent, p.String(), cat.Currency, len(snap.Transactions))
	return CategorySpending{
		Category:  cat,
		Window:    period.Resolve(p, now),
		Spent:     spent,
		Remaining: cat.TotalBudgeted - spent,
		Formatted: core.FormatAmount(spent, cat.Currency),
	}, nil
}

// CategoryHistory returns monthly category spending over p. With a base
// currency the rate table is fetched and cells are converted. ok is false
// when the period holds no transactions.
func (s *ReportService) CategoryHistory(ctx context.Context, p period.Period, base string) (report.Series, bool, error) {
	snap, rates, err := s.historyInputs(ctx, base)
	if err != nil {
		return nil, false, err
	}
	series, ok := report.CategorySpentHistory(snap.Transactions, snap.Categories, p, base, rates, s.now())
	s.slog.LogReport(ctx, log.OpHistory, p.String(), base, len(series))
	return series, ok, nil
}

// AssetHistory returns monthly running asset balances over p. See
// CategoryHistory for base and ok.
func (s *ReportService) AssetHistory(ctx context.Context, p period.Period, base string) (report.Series, bool, error) {
	snap, rates, err := s.historyInputs(ctx, base)
	if err != nil {
		return nil, false, err
	}
	series, ok := report.AssetBalanceHistory(snap.Transactions, snap.Assets, p, base, rates, s.now())
	s.slog.LogReport(ctx, log.OpHistory, p.String(), base, len(series))
	return series, ok, nil
}

func (s *ReportService) historyInputs(ctx context.Context, base string) (core.Snapshot, currency.Rates, error) {
	snap, err := ledger.Load(ctx, s.ledger)
	if err != nil {
		return core.Snapshot{}, nil, err
	}
	if base == "" {
		return snap, nil, nil
	}
	rates, err := s.rateTable(ctx)
	if err != nil {
		return core.Snapshot{}, nil, err
	}
	return snap, rates, nil
}

func (s *ReportService) rateTable(ctx context.Context) (currency.Rates, error) {
	if s.rates == nil {
		return nil, currency.ErrRatesUnavailable
	}
	rates, err := s.rates.Rates(ctx, s.pivot)
	if err != nil {
		s.slog.LogError(ctx, "Failed to load exchange rates", err, log.ComponentRates, log.OpFetch, log.NewFields().WithRates(s.pivot, 0))
		return nil, err
	}
	return rates, nil
}
