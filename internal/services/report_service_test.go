package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/ledger"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/period"
	"fintrack/internal/query"
)

type stubRates struct {
	rates currency.Rates
	err   error
	calls int
}

func (s *stubRates) Rates(_ context.Context, pivot string) (currency.Rates, error) {
	s.calls++
	return s.rates, s.err
}

func fixture() core.Snapshot {
	return core.Snapshot{
		Assets: []core.Asset{
			{ID: "1", Name: "Bank", InitBalance: 1000, Currency: "USD"},
			{ID: "2", Name: "Cash", InitBalance: 50, Currency: "EUR"},
		},
		Categories: []core.Category{
			{ID: "food", Name: "Groceries", TotalBudgeted: 100, Currency: "EUR"},
		},
		Transactions: []core.Transaction{
			{ID: "t1", Name: "Supermarket", Amount: 200, Currency: "USD", Date: core.NewDate(2024, 1, 15), Type: core.Expense, AssetID: "1", CategoryID: "food"},
			{ID: "t2", Name: "Market", Amount: 30, Currency: "EUR", Date: core.NewDate(2024, 3, 2), Type: core.Expense, AssetID: "2", CategoryID: "food"},
			{ID: "t3", Name: "Withdrawal", Amount: 100, Currency: "USD", Date: core.NewDate(2024, 3, 5), Type: core.Transfer, AssetID: "2", AssetFromID: "1"},
		},
	}
}

func newService(rates RatesProvider) *ReportService {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	return NewReportService(memory.New(fixture()), rates, "USD", nil, nil).
		WithClock(func() time.Time { return now })
}

func TestReportService_Balance(t *testing.T) {
	svc := newService(nil)

	got, err := svc.Balance(context.Background(), "1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if got.Balance != 700 || got.Formatted != "700 USD" {
		t.Fatalf("Balance = %+v", got)
	}

	if _, err := svc.Balance(context.Background(), "missing"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReportService_Details(t *testing.T) {
	svc := newService(nil)
	got, err := svc.Details(context.Background(), "2", period.ThisMonth())
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if got.Window != (period.Window{Start: "2024-03-01", End: "2024-03-31"}) {
		t.Errorf("window = %+v", got.Window)
	}
	if got.Details.Expense != 30 || got.Details.TransferTo != 100 {
		t.Errorf("details = %+v", got.Details)
	}
}

func TestReportService_Spent(t *testing.T) {
	rates := &stubRates{rates: currency.Rates{"USD": 1, "EUR": 0.5}}
	svc := newService(rates)

	got, err := svc.Spent(context.Background(), "food", period.NewRelative(period.Past, period.Year, 1))
	if err != nil {
		t.Fatalf("Spent: %v", err)
	}
	if got.Spent != 130 || got.Remaining != -30 {
		t.Fatalf("Spent = %+v", got)
	}

	if _, err := newService(nil).Spent(context.Background(), "food", period.ThisMonth()); !errors.Is(err, currency.ErrRatesUnavailable) {
		t.Fatalf("err = %v, want ErrRatesUnavailable", err)
	}
}

func TestReportService_History(t *testing.T) {
	rates := &stubRates{rates: currency.Rates{"USD": 1, "EUR": 0.5}}
	svc := newService(rates)
	ctx := context.Background()
	all := period.NewAbsolute("2024-01-01", "2024-12-31")

	series, ok, err := svc.CategoryHistory(ctx, all, "")
	if err != nil || !ok {
		t.Fatalf("CategoryHistory = %v, %v", ok, err)
	}
	if len(series) != 3 || rates.calls != 0 {
		t.Fatalf("series = %v, rate calls %d", series, rates.calls)
	}

	series, ok, err = svc.AssetHistory(ctx, all, "USD")
	if err != nil || !ok {
		t.Fatalf("AssetHistory = %v, %v", ok, err)
	}
	if v, _ := series[2].Value("Cash"); v != (50-30+100)/0.5 {
		t.Fatalf("Cash in March = %v", v)
	}
	if rates.calls != 1 {
		t.Fatalf("rate calls = %d", rates.calls)
	}

	_, ok, err = svc.AssetHistory(ctx, period.NewAbsolute("2020-01-01", "2020-12-31"), "")
	if err != nil || ok {
		t.Fatalf("empty history = %v, %v", ok, err)
	}
}

func TestReportService_Transactions(t *testing.T) {
	svc := newService(nil)
	got, err := svc.Transactions(context.Background(), TransactionQuery{
		Filter: query.ByCategory,
		Values: []string{"food"},
		Orders: []query.Order{{Key: query.SortAsset, Direction: query.Descending}},
	})
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(got) != 2 || got[0].ID != "t2" {
		t.Fatalf("transactions = %+v", got)
	}
}
