package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// Seed file names inside a data directory.
const (
	TransactionsFile = "transactions.json"
	AssetsFile       = "assets.json"
	CategoriesFile   = "categories.json"
)

// Store keeps a ledger in memory. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	seq   int
	txs   []core.Transaction
	asset []core.Asset
	cats  []core.Category
}

var (
	_ ledger.Reader = (*Store)(nil)
	_ ledger.Writer = (*Store)(nil)
)

// New returns a store holding a copy of snap.
func New(snap core.Snapshot) *Store {
	return &Store{
		txs:   slices.Clone(snap.Transactions),
		asset: slices.Clone(snap.Assets),
		cats:  slices.Clone(snap.Categories),
	}
}

// NewFromFiles seeds a store from the JSON files in dir. Missing files
// leave the matching collection empty.
func NewFromFiles(dir string) (*Store, error) {
	snap, err := ReadSeed(dir)
	if err != nil {
		return nil, err
	}
	return New(snap), nil
}

// ReadSeed loads the seed files of dir without building a store.
func ReadSeed(dir string) (core.Snapshot, error) {
	var (
		snap core.Snapshot
		err  error
	)
	if snap.Transactions, err = readFile(filepath.Join(dir, TransactionsFile), ledger.DecodeTransactions); err != nil {
		return snap, err
	}
	if snap.Assets, err = readFile(filepath.Join(dir, AssetsFile), ledger.DecodeAssets); err != nil {
		return snap, err
	}
	if snap.Categories, err = readFile(filepath.Join(dir, CategoriesFile), ledger.DecodeCategories); err != nil {
		return snap, err
	}
	return snap, nil
}

func readFile[T any](path string, decode func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return out, nil
}

func (s *Store) Transactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.txs), nil
}

func (s *Store) Assets(_ context.Context) ([]core.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.asset), nil
}

func (s *Store) Categories(_ context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cats), nil
}

// SaveTransaction validates tx and inserts or replaces it by id. An empty
// id gets a synthetic one.
func (s *Store) SaveTransaction(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == "" {
		tx.ID = s.nextID()
	}
	s.txs = upsert(s.txs, tx, func(t core.Transaction) string { return t.ID })
	return nil
}

func (s *Store) SaveAsset(_ context.Context, a core.Asset) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = s.nextID()
	}
	s.asset = upsert(s.asset, a, func(a core.Asset) string { return a.ID })
	return nil
}

func (s *Store) SaveCategory(_ context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = s.nextID()
	}
	s.cats = upsert(s.cats, c, func(c core.Category) string { return c.ID })
	return nil
}

func (s *Store) nextID() string {
	s.seq++
	return fmt.Sprintf("mem:%d", s.seq)
}

func upsert[T any](items []T, item T, id func(T) string) []T {
	key := id(item)
	if i := slices.IndexFunc(items, func(v T) bool { return id(v) == key }); i >= 0 {
		items[i] = item
		return items
	}
	return append(items, item)
}
