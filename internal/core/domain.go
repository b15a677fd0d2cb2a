package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income   TxType = "income"
	Expense  TxType = "expense"
	Transfer TxType = "transfer"
)

type (
	TxType string

	// Transaction is one ledger entry. Which of CategoryID, Source and
	// AssetFromID is meaningful depends on Type.
	Transaction struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Amount      float64   `json:"amount"`
		Currency    string    `json:"currency"`
		Date        time.Time `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
		Type        TxType    `json:"type"`
		AssetID     string    `json:"asset_id"`                // target asset
		CategoryID  string    `json:"category_id,omitempty"`   // expense only
		Source      string    `json:"source,omitempty"`        // income only
		AssetFromID string    `json:"asset_from_id,omitempty"` // transfer only
	}

	// Asset balances are never stored; see report.Balance.
	Asset struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		InitBalance float64 `json:"initBalance"`
		Currency    string  `json:"currency"`
	}

	Category struct {
		ID            string  `json:"id"`
		Name          string  `json:"name"`
		TotalBudgeted float64 `json:"totalBudgeted"`
		Currency      string  `json:"currency"`
	}

	// Snapshot is the full set of collections a computation runs over.
	Snapshot struct {
		Transactions []Transaction `json:"transactions"`
		Assets       []Asset       `json:"assets"`
		Categories   []Category    `json:"categories"`
	}
)

var (
	ErrUnknownType     = errors.New("unknown transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyCurrency   = errors.New("empty currency")
	ErrMissingAsset    = errors.New("missing target asset")
	ErrSelfTransfer    = errors.New("transfer source equals target asset")
	ErrMissingCategory = errors.New("expense without category")
)

// ParseTxType accepts the three known types case-insensitively.
func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrUnknownType
	}
	return t, nil
}

func (t TxType) IsValid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	default:
		return false
	}
}

func (t TxType) String() string {
	return string(t)
}

// Validate is used by the storage adapters before accepting a row. The
// computation packages never call it.
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrUnknownType
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Currency) == "" {
		return ErrEmptyCurrency
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.AssetID == "" {
		return ErrMissingAsset
	}
	switch t.Type {
	case Expense:
		if t.CategoryID == "" {
			return ErrMissingCategory
		}
	case Transfer:
		if t.AssetFromID == "" {
			return errors.New("transfer without source asset")
		}
		if t.AssetFromID == t.AssetID {
			return ErrSelfTransfer
		}
	}
	return nil
}

// Month returns the YYYY-MM bucket the transaction falls into.
func (t Transaction) Month() string {
	return MonthKey(t.Date)
}

func (a Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(a.Currency) == "" {
		return ErrEmptyCurrency
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.Currency) == "" {
		return ErrEmptyCurrency
	}
	return nil
}

// AssetName resolves an asset id to its display name, or "" when the id is
// not in the snapshot.
func (s Snapshot) AssetName(id string) string {
	for _, a := range s.Assets {
		if a.ID == id {
			return a.Name
		}
	}
	return ""
}

// CategoryName resolves a category id to its display name, or "".
func (s Snapshot) CategoryName(id string) string {
	for _, c := range s.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (s Snapshot) Asset(id string) (Asset, bool) {
	for _, a := range s.Assets {
		if a.ID == id {
			return a, true
		}
	}
	return Asset{}, false
}

func (s Snapshot) Category(id string) (Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
