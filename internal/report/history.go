package report

import (
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/period"
	"fintrack/internal/query"
)

// CategorySpentHistory buckets expense amounts per category and calendar
// month over the period. With a base currency every cell is converted from
// the category's currency and rounded to cents. Amounts are summed as
// recorded, without converting each transaction into the category
// currency first.
//
// ok is false when no transaction falls in the period.
func CategorySpentHistory(txs []core.Transaction, categories []core.Category, p period.Period, base string, rates currency.Rates, now time.Time) (Series, bool) {
	in := inWindow(txs, p, now)
	if len(in) == 0 {
		return nil, false
	}

	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	m := newMatrix(monthSpan(in[0].Date, in[len(in)-1].Date), ids)
	for _, tx := range in {
		if tx.Type == core.Expense {
			m.add(tx.Month(), tx.CategoryID, tx.Amount)
		}
	}

	names := make([]string, len(categories))
	for j, c := range categories {
		names[j] = c.Name
		if base == "" {
			continue
		}
		for i := range m.months {
			m.cells[i][j] = core.Round2(currency.Convert(rates, c.Currency, base, m.cells[i][j]))
		}
	}
	series := m.series(names)
	if base != "" {
		// merged names sum rounded cells
		for _, r := range series {
			for k := range r.Values {
				r.Values[k].Value = core.Round2(r.Values[k].Value)
			}
		}
	}
	return series, true
}

// AssetBalanceHistory reports each asset's running balance at the end of
// every calendar month in the period, seeded from its initial balance.
// Only transactions inside the period move the balance. With a base
// currency each balance is converted from the asset's currency, unrounded.
//
// ok is false when no transaction falls in the period.
func AssetBalanceHistory(txs []core.Transaction, assets []core.Asset, p period.Period, base string, rates currency.Rates, now time.Time) (Series, bool) {
	in := inWindow(txs, p, now)
	if len(in) == 0 {
		return nil, false
	}

	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
	}
	m := newMatrix(monthSpan(in[0].Date, in[len(in)-1].Date), ids)
	for _, tx := range in {
		month := tx.Month()
		switch tx.Type {
		case core.Income:
			m.add(month, tx.AssetID, tx.Amount)
		case core.Expense:
			m.add(month, tx.AssetID, -tx.Amount)
		case core.Transfer:
			m.add(month, tx.AssetID, tx.Amount)
			m.add(month, tx.AssetFromID, -tx.Amount)
		}
	}

	names := make([]string, len(assets))
	for j, a := range assets {
		names[j] = a.Name
		running := a.InitBalance
		for i := range m.months {
			running += m.cells[i][j]
			if base == "" {
				m.cells[i][j] = running
			} else {
				m.cells[i][j] = currency.Convert(rates, a.Currency, base, running)
			}
		}
	}
	return m.series(names), true
}

// inWindow filters txs to the resolved period and orders them by date.
func inWindow(txs []core.Transaction, p period.Period, now time.Time) []core.Transaction {
	filtered := query.ByWindow(txs, period.Resolve(p, now))
	return query.Sort(filtered, []query.Order{{Key: query.SortDate, Direction: query.Ascending}}, nil)
}

// monthSpan lists every calendar month from first to last inclusive as
// YYYY-MM keys.
func monthSpan(first, last time.Time) []string {
	first, last = first.UTC(), last.UTC()
	n := (last.Year()-first.Year())*12 + int(last.Month()) - int(first.Month())
	if n < 0 {
		n = 0
	}
	start := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]string, 0, n+1)
	for i := 0; i <= n; i++ {
		months = append(months, core.MonthKey(start.AddDate(0, i, 0)))
	}
	return months
}

// matrix is a month by entity grid of amounts. Rows follow months in
// chronological order, columns follow entities in declaration order.
type matrix struct {
	ids     []string
	months  []string
	row     map[string]int
	col     map[string]int
	cells   [][]float64
	columns int
}

func newMatrix(months, ids []string) *matrix {
	m := &matrix{
		ids:     ids,
		months:  months,
		row:     make(map[string]int, len(months)),
		col:     make(map[string]int, len(ids)),
		cells:   make([][]float64, len(months)),
		columns: len(ids),
	}
	for i, month := range months {
		m.row[month] = i
		m.cells[i] = make([]float64, len(ids))
	}
	for j, id := range ids {
		if _, dup := m.col[id]; !dup {
			m.col[id] = j
		}
	}
	return m
}

// add accumulates v into the cell for month and entity id. Unknown months
// or ids are dropped.
func (m *matrix) add(month, id string, v float64) {
	i, ok := m.row[month]
	if !ok {
		return
	}
	j, ok := m.col[id]
	if !ok {
		return
	}
	m.cells[i][j] += v
}

// series emits one record per month. Entities sharing a display name are
// summed into a single value under that name. A name equal to the month
// key is suffixed with the entity id so it cannot shadow the month.
func (m *matrix) series(names []string) Series {
	labels, target := columnLabels(names, m.ids)
	out := make(Series, len(m.months))
	for i, month := range m.months {
		points := make([]Point, len(labels))
		for k, label := range labels {
			points[k].Name = label
		}
		for j := 0; j < m.columns; j++ {
			points[target[j]].Value += m.cells[i][j]
		}
		out[i] = Record{Month: month, Values: points}
	}
	return out
}

// columnLabels returns the distinct output names in first-seen order and,
// for every entity column, the index of the name it reports under.
func columnLabels(names, ids []string) ([]string, []int) {
	index := make(map[string]int, len(names))
	labels := make([]string, 0, len(names))
	target := make([]int, len(names))
	for j, name := range names {
		if name == monthKey {
			name = fmt.Sprintf("%s (%s)", name, ids[j])
		}
		k, ok := index[name]
		if !ok {
			k = len(labels)
			index[name] = k
			labels = append(labels, name)
		}
		target[j] = k
	}
	return labels, target
}
