// Package query selects and orders transaction collections.
//
// Neither Filter nor Sort modifies the slice it is given: Filter returns
// either the input itself (identity filters) or a fresh subsequence, and
// Sort always returns a fresh slice.
package query

import (
	"math"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/period"
)

const (
	None       FilterKey = "None"
	ByName     FilterKey = "Name"
	ByAsset    FilterKey = "Asset"
	ByCategory FilterKey = "Category"
	ByType     FilterKey = "Type"
	ByDate     FilterKey = "Date"
	ByAmount   FilterKey = "Amount"
)

// FilterKey selects the predicate. Unknown keys behave as None.
type FilterKey string

var filterKeys = []FilterKey{None, ByName, ByAsset, ByCategory, ByType, ByDate, ByAmount}

// ParseFilterKey matches s against the known keys case-insensitively. An
// empty string means None.
func ParseFilterKey(s string) (FilterKey, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, true
	}
	for _, k := range filterKeys {
		if strings.EqualFold(s, string(k)) {
			return k, true
		}
	}
	return "", false
}

// Filter keeps the transactions matching key and values, preserving their
// relative order. The shape of values depends on key:
//
//	Name, Category, Type  [text]
//	Asset                 [assetID]  (target or transfer source)
//	Date                  [start, end] as YYYY-MM-DD, or ["allTime"]
//	Amount                [min, max] numeric strings, "" for no bound
//
// None, an unknown key, or a payload made only of empty strings returns
// txs unchanged.
func Filter(txs []core.Transaction, key FilterKey, values []string) []core.Transaction {
	if key == None || isBlank(values) {
		return txs
	}

	var keep func(core.Transaction) bool
	switch key {
	case ByName:
		needle := strings.ToLower(values[0])
		keep = func(tx core.Transaction) bool {
			return strings.Contains(strings.ToLower(tx.Name), needle)
		}
	case ByAsset:
		id := values[0]
		keep = func(tx core.Transaction) bool {
			return tx.AssetID == id || tx.AssetFromID == id
		}
	case ByCategory:
		id := values[0]
		keep = func(tx core.Transaction) bool {
			return tx.CategoryID == id
		}
	case ByType:
		typ := values[0]
		keep = func(tx core.Transaction) bool {
			return string(tx.Type) == typ
		}
	case ByDate:
		if values[0] == period.AllTime {
			return txs
		}
		keep = dateBetween(values)
	case ByAmount:
		keep = amountBetween(values)
	default:
		return txs
	}

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// ByWindow is shorthand for a date filter over a resolved period.
func ByWindow(txs []core.Transaction, w period.Window) []core.Transaction {
	return Filter(txs, ByDate, w.Values())
}

func isBlank(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}

// dateBetween compares calendar days, both bounds inclusive. A missing
// bound is open; an unparseable one matches nothing.
func dateBetween(values []string) func(core.Transaction) bool {
	var (
		hasStart, hasEnd bool
		invalid          bool
	)
	start, end := core.NewDate(1, 1, 1), core.NewDate(9999, 12, 31)
	if values[0] != "" {
		t, err := core.ParseDate(values[0])
		invalid = invalid || err != nil
		start, hasStart = t, err == nil
	}
	if len(values) > 1 && values[1] != "" {
		t, err := core.ParseDate(values[1])
		invalid = invalid || err != nil
		end, hasEnd = t, err == nil
	}
	if invalid {
		return func(core.Transaction) bool { return false }
	}
	return func(tx core.Transaction) bool {
		day := core.Day(tx.Date)
		if hasStart && day.Before(start) {
			return false
		}
		if hasEnd && day.After(end) {
			return false
		}
		return true
	}
}

// amountBetween treats an empty min as 0 and an empty max as +Inf. A bound
// that does not parse becomes NaN, which no amount satisfies.
func amountBetween(values []string) func(core.Transaction) bool {
	lo, hi := 0.0, math.Inf(1)
	if values[0] != "" {
		lo = parseBound(values[0])
	}
	if len(values) > 1 && values[1] != "" {
		hi = parseBound(values[1])
	}
	return func(tx core.Transaction) bool {
		return tx.Amount >= lo && tx.Amount <= hi
	}
}

func parseBound(s string) float64 {
	v, err := core.ParseAmount(s)
	if err != nil {
		return math.NaN()
	}
	return v
}
