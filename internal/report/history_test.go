package report

import (
	"encoding/json"
	"math"
	"slices"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/period"
)

var q1 = period.NewAbsolute("2023-10-01", "2024-03-31")

func TestCategorySpentHistory(t *testing.T) {
	categories := []core.Category{{ID: "food", Name: "Groceries", Currency: "USD"}}
	txs := []core.Transaction{
		{Type: core.Expense, CategoryID: "food", Amount: 30, Currency: "USD", Date: core.NewDate(2024, 2, 3)},
		{Type: core.Expense, CategoryID: "food", Amount: 50, Currency: "USD", Date: core.NewDate(2024, 1, 10)},
	}

	series, ok := CategorySpentHistory(txs, categories, q1, "", nil, now)
	if !ok {
		t.Fatal("expected data")
	}

	got, err := json.Marshal(series)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[{"month":"2024-01","Groceries":50},{"month":"2024-02","Groceries":30}]`
	if string(got) != want {
		t.Fatalf("series = %s, want %s", got, want)
	}
}

func TestCategorySpentHistoryIgnoresNonExpenses(t *testing.T) {
	categories := []core.Category{
		{ID: "food", Name: "Groceries", Currency: "USD"},
		{ID: "fun", Name: "Fun", Currency: "USD"},
	}
	txs := []core.Transaction{
		{Type: core.Expense, CategoryID: "food", Amount: 12, Date: core.NewDate(2024, 3, 1)},
		{Type: core.Income, AssetID: "1", Amount: 900, Date: core.NewDate(2024, 3, 2)},
		{Type: core.Expense, CategoryID: "gone", Amount: 7, Date: core.NewDate(2024, 3, 3)},
	}

	series, ok := CategorySpentHistory(txs, categories, q1, "", nil, now)
	if !ok || len(series) != 1 {
		t.Fatalf("series = %v, ok = %v", series, ok)
	}
	if v, _ := series[0].Value("Groceries"); v != 12 {
		t.Errorf("Groceries = %v", v)
	}
	if v, found := series[0].Value("Fun"); !found || v != 0 {
		t.Errorf("Fun = %v, %v; want a zero cell", v, found)
	}
}

func TestCategorySpentHistoryBaseCurrencyRounds(t *testing.T) {
	categories := []core.Category{{ID: "food", Name: "Groceries", Currency: "EUR"}}
	rates := currency.Rates{"USD": 1, "EUR": 0.3}
	txs := []core.Transaction{
		{Type: core.Expense, CategoryID: "food", Amount: 10, Currency: "EUR", Date: core.NewDate(2024, 3, 1)},
	}

	series, _ := CategorySpentHistory(txs, categories, q1, "USD", rates, now)
	if v, _ := series[0].Value("Groceries"); v != 33.33 {
		t.Fatalf("Groceries = %v, want 33.33", v)
	}
}

func TestCategorySpentHistoryMergesSharedNames(t *testing.T) {
	categories := []core.Category{
		{ID: "c1", Name: "Food", Currency: "USD"},
		{ID: "c2", Name: "Food", Currency: "USD"},
		{ID: "c3", Name: "month", Currency: "USD"},
	}
	txs := []core.Transaction{
		{Type: core.Expense, CategoryID: "c1", Amount: 5, Date: core.NewDate(2024, 3, 1)},
		{Type: core.Expense, CategoryID: "c2", Amount: 7, Date: core.NewDate(2024, 3, 2)},
	}

	series, ok := CategorySpentHistory(txs, categories, q1, "", nil, now)
	if !ok {
		t.Fatal("expected data")
	}
	got, err := json.Marshal(series)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[{"month":"2024-03","Food":12,"month (c3)":0}]`
	if string(got) != want {
		t.Fatalf("series = %s, want %s", got, want)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded[0]["month"] != "2024-03" || decoded[0]["Food"] != 12.0 {
		t.Fatalf("decoded = %v", decoded)
	}
}

func TestCategorySpentHistoryMergedNamesRoundAfterSum(t *testing.T) {
	categories := []core.Category{
		{ID: "c1", Name: "Food", Currency: "USD"},
		{ID: "c2", Name: "Food", Currency: "USD"},
	}
	txs := []core.Transaction{
		{Type: core.Expense, CategoryID: "c1", Amount: 0.1, Currency: "USD", Date: core.NewDate(2024, 3, 1)},
		{Type: core.Expense, CategoryID: "c2", Amount: 0.2, Currency: "USD", Date: core.NewDate(2024, 3, 2)},
	}

	series, _ := CategorySpentHistory(txs, categories, q1, "USD", currency.Rates{"USD": 1}, now)
	if v, _ := series[0].Value("Food"); v != 0.3 {
		t.Fatalf("Food = %v, want 0.3", v)
	}
}

func TestAssetBalanceHistoryMergesSharedNames(t *testing.T) {
	assets := []core.Asset{
		{ID: "1", Name: "Cash", InitBalance: 100, Currency: "USD"},
		{ID: "2", Name: "Cash", InitBalance: 50, Currency: "USD"},
	}
	txs := []core.Transaction{
		{Type: core.Expense, AssetID: "2", Amount: 20, Date: core.NewDate(2024, 3, 1)},
	}

	series, _ := AssetBalanceHistory(txs, assets, q1, "", nil, now)
	if len(series[0].Values) != 1 {
		t.Fatalf("values = %v, want one merged column", series[0].Values)
	}
	if v, _ := series[0].Value("Cash"); v != 130 {
		t.Fatalf("Cash = %v, want 130", v)
	}
}

func TestAssetBalanceHistory(t *testing.T) {
	assets := []core.Asset{
		{ID: "1", Name: "Bank", InitBalance: 1000, Currency: "USD"},
		{ID: "2", Name: "Savings", InitBalance: 0, Currency: "EUR"},
	}
	txs := []core.Transaction{
		{Type: core.Income, AssetID: "1", Amount: 500, Date: core.NewDate(2023, 11, 30)},
		{Type: core.Transfer, AssetID: "2", AssetFromID: "1", Amount: 300, Date: core.NewDate(2024, 1, 5)},
		{Type: core.Expense, AssetID: "1", Amount: 200, Date: core.NewDate(2024, 2, 14)},
	}

	series, ok := AssetBalanceHistory(txs, assets, q1, "", nil, now)
	if !ok {
		t.Fatal("expected data")
	}
	if got := series.Months(); !slices.Equal(got, []string{"2023-11", "2023-12", "2024-01", "2024-02"}) {
		t.Fatalf("months = %v", got)
	}

	want := map[string][2]float64{
		"2023-11": {1500, 0},
		"2023-12": {1500, 0},
		"2024-01": {1200, 300},
		"2024-02": {1000, 300},
	}
	for _, r := range series {
		b, _ := r.Value("Bank")
		s, _ := r.Value("Savings")
		if w := want[r.Month]; b != w[0] || s != w[1] {
			t.Errorf("%s: Bank=%v Savings=%v, want %v", r.Month, b, s, w)
		}
	}
}

func TestAssetBalanceHistoryBaseCurrency(t *testing.T) {
	assets := []core.Asset{{ID: "2", Name: "Savings", InitBalance: 10, Currency: "EUR"}}
	rates := currency.Rates{"USD": 1, "EUR": 0.3}
	txs := []core.Transaction{
		{Type: core.Income, AssetID: "2", Amount: 0, Date: core.NewDate(2024, 3, 1)},
	}

	series, _ := AssetBalanceHistory(txs, assets, q1, "USD", rates, now)
	v, _ := series[0].Value("Savings")
	if math.Abs(v-10/0.3) > 1e-9 || v == 33.33 {
		t.Fatalf("Savings = %v, want unrounded %v", v, 10/0.3)
	}
}

func TestHistoryNoData(t *testing.T) {
	assets := []core.Asset{bank()}
	categories := []core.Category{{ID: "food", Name: "Groceries"}}
	txs := []core.Transaction{
		{Type: core.Expense, AssetID: "1", CategoryID: "food", Amount: 5, Date: core.NewDate(2020, 1, 1)},
	}

	if s, ok := AssetBalanceHistory(txs, assets, q1, "", nil, now); ok || s != nil {
		t.Errorf("asset history = %v, %v; want no data", s, ok)
	}
	if s, ok := CategorySpentHistory(nil, categories, q1, "", nil, now); ok || s != nil {
		t.Errorf("category history = %v, %v; want no data", s, ok)
	}
}

func TestHistoryMissingRateEncodesNull(t *testing.T) {
	categories := []core.Category{{ID: "food", Name: "Groceries", Currency: "XYZ"}}
	txs := []core.Transaction{
		{Type: core.Expense, CategoryID: "food", Amount: 5, Date: core.NewDate(2024, 3, 1)},
	}
	series, _ := CategorySpentHistory(txs, categories, q1, "USD", currency.Rates{"USD": 1}, now)
	got, err := json.Marshal(series)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(got) != `[{"month":"2024-03","Groceries":null}]` {
		t.Fatalf("json = %s", got)
	}
}

func TestMonthSpan(t *testing.T) {
	tests := []struct {
		name        string
		first, last time.Time
		want        []string
	}{
		{"same month", core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31), []string{"2024-05"}},
		{"across year end", core.NewDate(2023, 11, 30), core.NewDate(2024, 2, 1), []string{"2023-11", "2023-12", "2024-01", "2024-02"}},
		{"later month number in earlier year", core.NewDate(2023, 12, 1), core.NewDate(2024, 1, 1), []string{"2023-12", "2024-01"}},
		{"first day of 31-day month", core.NewDate(2024, 1, 31), core.NewDate(2024, 3, 1), []string{"2024-01", "2024-02", "2024-03"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := monthSpan(tt.first, tt.last); !slices.Equal(got, tt.want) {
				t.Errorf("monthSpan() = %v, want %v", got, tt.want)
			}
		})
	}
}
