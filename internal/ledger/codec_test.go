package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestDecodeTransactions(t *testing.T) {
	body := `[
		{"id":"a1","name":"Rent","amount":"1,200.5","currency":"EUR","date":"2024-01-15T00:00:00.000Z","createdAt":1705312800000,"type":"expense","asset_id":1,"category_id":"home"},
		{"id":7,"name":"Salary","amount":3000,"currency":"EUR","date":"2024-01-31","createdAt":"2024-01-31T09:00:00Z","type":"income","asset_id":"1","source":"ACME"},
		{"id":"t","name":"Move","amount":"","currency":"EUR","date":"2024-02-01","type":"transfer","asset_id":"2","asset_from_id":"1","category_id":null}
	]`

	txs, err := DecodeTransactions(strings.NewReader(body))
	if err == nil {
		t.Fatal("expected error for thousands separator")
	}

	body = strings.Replace(body, `"1,200.5"`, `"1200,5"`, 1)
	txs, err = DecodeTransactions(strings.NewReader(body))
	if err != nil {
		t.Fatalf("DecodeTransactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d transactions", len(txs))
	}

	rent := txs[0]
	if rent.Amount != 1200.5 || rent.AssetID != "1" || !rent.Date.Equal(core.NewDate(2024, 1, 15)) {
		t.Errorf("rent = %+v", rent)
	}
	if !rent.CreatedAt.Equal(time.UnixMilli(1705312800000)) {
		t.Errorf("createdAt = %v", rent.CreatedAt)
	}
	if txs[1].ID != "7" || txs[1].Source != "ACME" || txs[1].Type != core.Income {
		t.Errorf("salary = %+v", txs[1])
	}
	if txs[2].Amount != 0 || txs[2].AssetFromID != "1" || !txs[2].CreatedAt.IsZero() {
		t.Errorf("transfer = %+v", txs[2])
	}
}

func TestDecodeAssetsAndCategories(t *testing.T) {
	assets, err := DecodeAssets(strings.NewReader(`[{"id":"1","name":"Bank","initBalance":"-50.25","currency":"USD"}]`))
	if err != nil {
		t.Fatalf("DecodeAssets: %v", err)
	}
	if assets[0].InitBalance != -50.25 {
		t.Errorf("asset = %+v", assets[0])
	}

	cats, err := DecodeCategories(strings.NewReader(`[{"id":2,"name":"Food","totalBudgeted":400,"currency":"EUR"}]`))
	if err != nil {
		t.Fatalf("DecodeCategories: %v", err)
	}
	if cats[0].ID != "2" || cats[0].TotalBudgeted != 400 {
		t.Errorf("category = %+v", cats[0])
	}

	empty, err := DecodeAssets(strings.NewReader(""))
	if err != nil || len(empty) != 0 {
		t.Errorf("empty body = %v, %v", empty, err)
	}
}

type fakeReader struct {
	snap core.Snapshot
	err  error
}

func (f fakeReader) Transactions(context.Context) ([]core.Transaction, error) {
	return f.snap.Transactions, f.err
}

func (f fakeReader) Assets(context.Context) ([]core.Asset, error) {
	return f.snap.Assets, nil
}

func (f fakeReader) Categories(context.Context) ([]core.Category, error) {
	return f.snap.Categories, nil
}

func TestLoad(t *testing.T) {
	want := core.Snapshot{
		Transactions: []core.Transaction{{ID: "t"}},
		Assets:       []core.Asset{{ID: "a"}},
		Categories:   []core.Category{{ID: "c"}},
	}
	got, err := Load(context.Background(), fakeReader{snap: want})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Transactions) != 1 || got.Assets[0].ID != "a" || got.Categories[0].ID != "c" {
		t.Fatalf("snapshot = %+v", got)
	}

	boom := errors.New("boom")
	if _, err := Load(context.Background(), fakeReader{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
