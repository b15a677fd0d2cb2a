// Package report derives balances, period totals and monthly series from a
// ledger snapshot. Every function is pure: it reads the collections it is
// given, never modifies them, and recomputes from scratch on each call.
package report

import (
	"time"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/period"
	"fintrack/internal/query"
)

// Details are the per-type totals of one asset over a period, in each
// transaction's own currency.
type Details struct {
	Income       float64 `json:"income"`
	Expense      float64 `json:"expense"`
	TransferTo   float64 `json:"transferTo"`
	TransferFrom float64 `json:"transferFrom"`
}

// Balance is the asset's initial balance adjusted by every transaction
// dated on or before the calendar day of now, taken in now's location.
// Transactions dated after that day are ignored.
func Balance(asset core.Asset, txs []core.Transaction, now time.Time) float64 {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	balance := asset.InitBalance
	for _, tx := range txs {
		if core.Day(tx.Date).After(today) {
			continue
		}
		balance += effect(tx, asset.ID)
	}
	return balance
}

// effect is the signed change tx makes to the balance of asset id.
func effect(tx core.Transaction, id string) float64 {
	switch {
	case tx.AssetID == id:
		if tx.Type == core.Expense {
			return -tx.Amount
		}
		return tx.Amount
	case tx.Type == core.Transfer && tx.AssetFromID == id:
		return -tx.Amount
	default:
		return 0
	}
}

// AssetDetails sums the asset's income, expense and transfers within the
// resolved period window. TransferTo collects transfers into the asset and
// TransferFrom transfers out of it.
func AssetDetails(asset core.Asset, txs []core.Transaction, p period.Period, now time.Time) Details {
	var d Details
	for _, tx := range query.ByWindow(txs, period.Resolve(p, now)) {
		switch {
		case tx.AssetID == asset.ID:
			switch tx.Type {
			case core.Income:
				d.Income += tx.Amount
			case core.Expense:
				d.Expense += tx.Amount
			case core.Transfer:
				d.TransferTo += tx.Amount
			}
		case tx.Type == core.Transfer && tx.AssetFromID == asset.ID:
			d.TransferFrom += tx.Amount
		}
	}
	return d
}

// CategorySpent totals the category's expenses within the period, each
// converted into the category's currency. A currency missing from rates
// makes the total NaN.
func CategorySpent(category core.Category, txs []core.Transaction, rates currency.Rates, p period.Period, now time.Time) float64 {
	total := 0.0
	for _, tx := range query.ByWindow(txs, period.Resolve(p, now)) {
		if tx.Type != core.Expense || tx.CategoryID != category.ID {
			continue
		}
		total += currency.Convert(rates, tx.Currency, category.Currency, tx.Amount)
	}
	return total
}
