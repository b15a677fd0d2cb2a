package query

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"fintrack/internal/core"
)

const (
	SortName       SortKey = "Name"
	SortAsset      SortKey = "Asset"
	SortCategory   SortKey = "Category"
	SortDate       SortKey = "Date"
	SortAmount     SortKey = "Amount"
	SortType       SortKey = "Type"
	SortLastEdited SortKey = "Last Edited"

	Ascending  Direction = "Ascending"
	Descending Direction = "Descending"
)

type (
	SortKey   string
	Direction string

	// Order is one ranked sort key. The first Order in a list is primary;
	// later ones only break ties.
	Order struct {
		Key       SortKey   `json:"key"`
		Direction Direction `json:"direction"`
	}

	// Lookup resolves referenced entities to display names. Unknown ids
	// resolve to "". core.Snapshot implements it.
	Lookup interface {
		AssetName(id string) string
		CategoryName(id string) string
	}
)

// ParseDirection accepts "asc"/"ascending" and "desc"/"descending" in any case.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, true
	case "desc", "descending":
		return Descending, true
	default:
		return "", false
	}
}

var sortKeys = []SortKey{SortName, SortAsset, SortCategory, SortDate, SortAmount, SortType, SortLastEdited}

// ParseSortKey matches s against the known keys case-insensitively.
// "LastEdited" and "last_edited" are accepted for Last Edited.
func ParseSortKey(s string) (SortKey, bool) {
	s = strings.TrimSpace(s)
	norm := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
	for _, k := range sortKeys {
		if strings.EqualFold(norm, strings.ReplaceAll(string(k), " ", "")) {
			return k, true
		}
	}
	return "", false
}

// Sorter orders transactions with locale-aware string comparison.
type Sorter struct {
	tag language.Tag
}

func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{tag: tag}
}

// Sort is Sorter.Sort with English collation.
func Sort(txs []core.Transaction, orders []Order, lookup Lookup) []core.Transaction {
	return NewSorter(language.English).Sort(txs, orders, lookup)
}

// Sort returns a stably sorted copy of txs. An empty order list returns
// txs unchanged. Asset and Category keys compare resolved names, not ids.
func (s *Sorter) Sort(txs []core.Transaction, orders []Order, lookup Lookup) []core.Transaction {
	if len(orders) == 0 {
		return txs
	}
	if lookup == nil {
		lookup = core.Snapshot{}
	}

	// Collators keep internal buffers, so each call gets its own.
	col := collate.New(s.tag)
	cmps := make([]func(a, b core.Transaction) int, 0, len(orders))
	for _, o := range orders {
		cmp := s.comparator(col, o.Key, lookup)
		if o.Direction == Descending {
			asc := cmp
			cmp = func(a, b core.Transaction) int { return -asc(a, b) }
		}
		cmps = append(cmps, cmp)
	}

	out := slices.Clone(txs)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		for _, cmp := range cmps {
			if c := cmp(a, b); c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

func (s *Sorter) comparator(col *collate.Collator, key SortKey, lookup Lookup) func(a, b core.Transaction) int {
	switch key {
	case SortName:
		return func(a, b core.Transaction) int {
			return col.CompareString(a.Name, b.Name)
		}
	case SortAsset:
		return func(a, b core.Transaction) int {
			return col.CompareString(lookup.AssetName(a.AssetID), lookup.AssetName(b.AssetID))
		}
	case SortCategory:
		return func(a, b core.Transaction) int {
			return col.CompareString(lookup.CategoryName(a.CategoryID), lookup.CategoryName(b.CategoryID))
		}
	case SortType:
		return func(a, b core.Transaction) int {
			return col.CompareString(string(a.Type), string(b.Type))
		}
	case SortDate:
		return func(a, b core.Transaction) int {
			return a.Date.Compare(b.Date)
		}
	case SortAmount:
		return func(a, b core.Transaction) int {
			return compareFloat(a.Amount, b.Amount)
		}
	case SortLastEdited:
		// Most recently created first.
		return func(a, b core.Transaction) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	default:
		return func(core.Transaction, core.Transaction) int { return 0 }
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SortFilter filters by one key and then sorts by one key. An empty
// direction skips sorting.
func SortFilter(txs []core.Transaction, key FilterKey, values []string, order Order, lookup Lookup) []core.Transaction {
	filtered := Filter(txs, key, values)
	if order.Direction == "" {
		return filtered
	}
	return Sort(filtered, []Order{order}, lookup)
}
