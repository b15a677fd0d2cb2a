package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"fintrack/internal/core"
)

// The persistence layer stores whatever the client posted, so numbers may
// arrive as JSON numbers or numeric strings, ids as strings or numbers, and
// timestamps as dates, RFC 3339 strings or epoch milliseconds. The types
// below absorb those variations.

type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		v, err := core.ParseAmount(s)
		if err != nil {
			return err
		}
		*n = flexNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: %s", core.ErrInvalidAmount, b)
	}
	*n = flexNumber(v)
	return nil
}

type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
	default:
		*s = flexString(b)
	}
	return nil
}

type flexTime time.Time

func (t *flexTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = flexTime{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*t = flexTime{}
			return nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			*t = flexTime(time.UnixMilli(ms).UTC())
			return nil
		}
		v, err := core.ParseDate(s)
		if err != nil {
			return err
		}
		*t = flexTime(v)
		return nil
	}
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrInvalidDate, b)
	}
	*t = flexTime(time.UnixMilli(ms).UTC())
	return nil
}

type transactionRecord struct {
	ID          flexString `json:"id"`
	Name        string     `json:"name"`
	Amount      flexNumber `json:"amount"`
	Currency    string     `json:"currency"`
	Date        flexTime   `json:"date"`
	CreatedAt   flexTime   `json:"createdAt"`
	Type        string     `json:"type"`
	AssetID     flexString `json:"asset_id"`
	CategoryID  flexString `json:"category_id"`
	Source      string     `json:"source"`
	AssetFromID flexString `json:"asset_from_id"`
}

func (r transactionRecord) transaction() core.Transaction {
	return core.Transaction{
		ID:          string(r.ID),
		Name:        r.Name,
		Amount:      float64(r.Amount),
		Currency:    r.Currency,
		Date:        time.Time(r.Date),
		CreatedAt:   time.Time(r.CreatedAt),
		Type:        core.TxType(r.Type),
		AssetID:     string(r.AssetID),
		CategoryID:  string(r.CategoryID),
		Source:      r.Source,
		AssetFromID: string(r.AssetFromID),
	}
}

type assetRecord struct {
	ID          flexString `json:"id"`
	Name        string     `json:"name"`
	InitBalance flexNumber `json:"initBalance"`
	Currency    string     `json:"currency"`
}

func (r assetRecord) asset() core.Asset {
	return core.Asset{
		ID:          string(r.ID),
		Name:        r.Name,
		InitBalance: float64(r.InitBalance),
		Currency:    r.Currency,
	}
}

type categoryRecord struct {
	ID            flexString `json:"id"`
	Name          string     `json:"name"`
	TotalBudgeted flexNumber `json:"totalBudgeted"`
	Currency      string     `json:"currency"`
}

func (r categoryRecord) category() core.Category {
	return core.Category{
		ID:            string(r.ID),
		Name:          r.Name,
		TotalBudgeted: float64(r.TotalBudgeted),
		Currency:      r.Currency,
	}
}

// DecodeTransactions reads a JSON array of transactions.
func DecodeTransactions(r io.Reader) ([]core.Transaction, error) {
	return decodeList(r, transactionRecord.transaction)
}

// DecodeAssets reads a JSON array of assets.
func DecodeAssets(r io.Reader) ([]core.Asset, error) {
	return decodeList(r, assetRecord.asset)
}

// DecodeCategories reads a JSON array of categories.
func DecodeCategories(r io.Reader) ([]core.Category, error) {
	return decodeList(r, categoryRecord.category)
}

func decodeList[R, T any](r io.Reader, conv func(R) T) ([]T, error) {
	var records []R
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if err == io.EOF {
			return []T{}, nil
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	out := make([]T, len(records))
	for i, rec := range records {
		out[i] = conv(rec)
	}
	return out, nil
}
