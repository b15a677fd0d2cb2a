package report

import (
	"math"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/period"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func bank() core.Asset {
	return core.Asset{ID: "1", Name: "Bank", InitBalance: 1000, Currency: "USD"}
}

func TestBalance(t *testing.T) {
	savings := core.Asset{ID: "2", Name: "Savings", InitBalance: 50, Currency: "USD"}

	tests := []struct {
		name  string
		asset core.Asset
		txs   []core.Transaction
		at    time.Time
		want  float64
	}{
		{
			name:  "no transactions",
			asset: bank(),
			want:  1000,
		},
		{
			name:  "single expense",
			asset: bank(),
			txs: []core.Transaction{
				{Type: core.Expense, AssetID: "1", Amount: 200, Currency: "USD", Date: core.NewDate(2024, 1, 15)},
			},
			want: 800,
		},
		{
			name:  "future transactions are ignored",
			asset: bank(),
			txs: []core.Transaction{
				{Type: core.Income, AssetID: "1", Amount: 300, Date: core.NewDate(2024, 3, 1)},
				{Type: core.Income, AssetID: "1", Amount: 999, Date: core.NewDate(2024, 4, 1)},
			},
			want: 1300,
		},
		{
			name:  "transaction at now counts",
			asset: bank(),
			txs: []core.Transaction{
				{Type: core.Expense, AssetID: "1", Amount: 10, Date: now},
			},
			want: 990,
		},
		{
			name:  "transfer out and in",
			asset: savings,
			txs: []core.Transaction{
				{Type: core.Transfer, AssetID: "2", AssetFromID: "1", Amount: 100, Date: core.NewDate(2024, 2, 1)},
				{Type: core.Transfer, AssetID: "1", AssetFromID: "2", Amount: 30, Date: core.NewDate(2024, 2, 2)},
				{Type: core.Expense, AssetID: "1", Amount: 70, Date: core.NewDate(2024, 2, 3)},
			},
			want: 120,
		},
		{
			name:  "today counts early in a zone east of UTC",
			asset: bank(),
			txs: []core.Transaction{
				{Type: core.Expense, AssetID: "1", Amount: 200, Date: core.NewDate(2024, 1, 16)},
			},
			at:   time.Date(2024, 1, 16, 2, 0, 0, 0, time.FixedZone("UTC+5", 5*60*60)),
			want: 800,
		},
		{
			name:  "tomorrow is ignored late in a zone west of UTC",
			asset: bank(),
			txs: []core.Transaction{
				{Type: core.Expense, AssetID: "1", Amount: 200, Date: core.NewDate(2024, 1, 16)},
			},
			at:   time.Date(2024, 1, 15, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*60*60)),
			want: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			if at.IsZero() {
				at = now
			}
			if got := Balance(tt.asset, tt.txs, at); got != tt.want {
				t.Errorf("Balance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransferConservesBalance(t *testing.T) {
	from := bank()
	to := core.Asset{ID: "2", Name: "Savings", InitBalance: 0, Currency: "USD"}
	before := []core.Transaction{
		{Type: core.Income, AssetID: "1", Amount: 500, Date: core.NewDate(2024, 1, 2)},
	}
	after := append(before, core.Transaction{
		Type: core.Transfer, AssetID: "2", AssetFromID: "1", Amount: 250, Date: core.NewDate(2024, 1, 3),
	})

	if d := Balance(from, after, now) - Balance(from, before, now); d != -250 {
		t.Errorf("source moved by %v, want -250", d)
	}
	if d := Balance(to, after, now) - Balance(to, before, now); d != 250 {
		t.Errorf("target moved by %v, want 250", d)
	}
}

func TestAssetDetails(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Income, AssetID: "1", Amount: 1000, Date: core.NewDate(2024, 3, 1)},
		{Type: core.Expense, AssetID: "1", Amount: 40, Date: core.NewDate(2024, 3, 2)},
		{Type: core.Expense, AssetID: "1", Amount: 60, Date: core.NewDate(2024, 3, 31)},
		{Type: core.Transfer, AssetID: "1", AssetFromID: "2", Amount: 25, Date: core.NewDate(2024, 3, 5)},
		{Type: core.Transfer, AssetID: "2", AssetFromID: "1", Amount: 75, Date: core.NewDate(2024, 3, 6)},
		{Type: core.Expense, AssetID: "1", Amount: 500, Date: core.NewDate(2024, 2, 29)},
		{Type: core.Income, AssetID: "2", Amount: 500, Date: core.NewDate(2024, 3, 10)},
	}

	got := AssetDetails(bank(), txs, period.ThisMonth(), now)
	want := Details{Income: 1000, Expense: 100, TransferTo: 25, TransferFrom: 75}
	if got != want {
		t.Fatalf("AssetDetails() = %+v, want %+v", got, want)
	}

	got = AssetDetails(bank(), txs, period.NewAbsolute("2024-02-01", "2024-02-29"), now)
	if got != (Details{Expense: 500}) {
		t.Fatalf("February details = %+v", got)
	}
}

func TestCategorySpent(t *testing.T) {
	food := core.Category{ID: "food", Name: "Groceries", Currency: "EUR"}
	rates := currency.Rates{"USD": 1, "EUR": 0.5}
	txs := []core.Transaction{
		{Type: core.Expense, CategoryID: "food", Amount: 100, Currency: "USD", Date: core.NewDate(2024, 3, 3)},
		{Type: core.Expense, CategoryID: "food", Amount: 20, Currency: "EUR", Date: core.NewDate(2024, 3, 4)},
		{Type: core.Expense, CategoryID: "fun", Amount: 20, Currency: "EUR", Date: core.NewDate(2024, 3, 4)},
		{Type: core.Expense, CategoryID: "food", Amount: 20, Currency: "EUR", Date: core.NewDate(2024, 2, 4)},
	}

	if got := CategorySpent(food, txs, rates, period.ThisMonth(), now); got != 70 {
		t.Fatalf("CategorySpent() = %v, want 70", got)
	}

	missing := append(txs, core.Transaction{Type: core.Expense, CategoryID: "food", Amount: 1, Currency: "GBP", Date: core.NewDate(2024, 3, 5)})
	if got := CategorySpent(food, missing, rates, period.ThisMonth(), now); !math.IsNaN(got) {
		t.Fatalf("CategorySpent() with missing rate = %v, want NaN", got)
	}

	if got := CategorySpent(food, nil, rates, period.ThisMonth(), now); got != 0 {
		t.Fatalf("CategorySpent() with no data = %v", got)
	}
}
