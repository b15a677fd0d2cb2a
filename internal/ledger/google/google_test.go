package google

import (
	"bytes"
	"context"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

func TestRowsToJSON(t *testing.T) {
	values := [][]any{
		{"id", "name", "amount", "currency", "date", "type", "asset_id", "category_id"},
		{"t1", "Groceries", 50.0, "USD", "2024-01-15", "expense", "1", "food"},
		{"", "", ""},
		{"t2", "Coffee", "3,5", "EUR", "2024-01-16", "expense", 1.0},
	}

	body, err := rowsToJSON(values)
	if err != nil {
		t.Fatalf("rowsToJSON: %v", err)
	}
	txs, err := ledger.DecodeTransactions(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d rows from %s", len(txs), body)
	}
	if txs[0].Amount != 50 || txs[0].CategoryID != "food" || !txs[0].Date.Equal(core.NewDate(2024, 1, 15)) {
		t.Errorf("first row = %+v", txs[0])
	}
	if txs[1].Amount != 3.5 || txs[1].AssetID != "1" || txs[1].CategoryID != "" {
		t.Errorf("second row = %+v", txs[1])
	}
}

func TestRowsToJSONEmpty(t *testing.T) {
	body, err := rowsToJSON(nil)
	if err != nil || string(body) != "[]" {
		t.Fatalf("rowsToJSON(nil) = %s, %v", body, err)
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); err == nil {
		t.Fatal("missing spreadsheet id accepted")
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "abc"}, nil); err == nil {
		t.Fatal("missing credentials accepted")
	}
}
