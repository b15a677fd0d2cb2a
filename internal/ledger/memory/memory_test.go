package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
)

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(AssetsFile, `[{"id":"1","name":"Bank","initBalance":"1000","currency":"USD"}]`)
	write(TransactionsFile, `[{"id":"t1","name":"Food","amount":"200","currency":"USD","date":"2024-01-15","type":"expense","asset_id":"1","category_id":"c"}]`)

	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("NewFromFiles: %v", err)
	}
	ctx := context.Background()

	assets, _ := s.Assets(ctx)
	if len(assets) != 1 || assets[0].InitBalance != 1000 {
		t.Fatalf("assets = %+v", assets)
	}
	txs, _ := s.Transactions(ctx)
	if len(txs) != 1 || txs[0].Amount != 200 {
		t.Fatalf("transactions = %+v", txs)
	}
	cats, _ := s.Categories(ctx)
	if len(cats) != 0 {
		t.Fatalf("categories = %+v, want none", cats)
	}
}

func TestNewFromFilesBadJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, CategoriesFile), []byte(`{"oops"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromFiles(dir); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSaveUpserts(t *testing.T) {
	s := New(core.Snapshot{})
	ctx := context.Background()

	a := core.Asset{Name: "Cash", Currency: "EUR"}
	if err := s.SaveAsset(ctx, a); err != nil {
		t.Fatalf("SaveAsset: %v", err)
	}
	assets, _ := s.Assets(ctx)
	if len(assets) != 1 || assets[0].ID == "" {
		t.Fatalf("assets = %+v", assets)
	}

	updated := assets[0]
	updated.InitBalance = 99
	if err := s.SaveAsset(ctx, updated); err != nil {
		t.Fatalf("SaveAsset: %v", err)
	}
	assets, _ = s.Assets(ctx)
	if len(assets) != 1 || assets[0].InitBalance != 99 {
		t.Fatalf("upsert failed: %+v", assets)
	}

	if err := s.SaveCategory(ctx, core.Category{Name: ""}); err == nil {
		t.Fatal("invalid category accepted")
	}

	tx := core.Transaction{Name: "Lunch", Amount: 12, Currency: "EUR", Date: core.NewDate(2024, 1, 1), Type: core.Expense, AssetID: assets[0].ID, CategoryID: "food"}
	if err := s.SaveTransaction(ctx, tx); err != nil {
		t.Fatalf("SaveTransaction: %v", err)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s := New(core.Snapshot{Assets: []core.Asset{{ID: "1", Name: "Bank"}}})
	assets, _ := s.Assets(context.Background())
	assets[0].Name = "changed"
	again, _ := s.Assets(context.Background())
	if again[0].Name != "Bank" {
		t.Fatal("store state leaked through read")
	}
}
