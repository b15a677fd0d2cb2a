package backend

import (
	"context"

	"fintrack/internal/ledger"
)

// Backend is the ledger store the service reads snapshots from.
type Backend interface {
	ledger.Reader
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory backend seed files; the sqlite backend also imports them
	// into an empty database.
	DataDirectory string

	// SQLite specific
	SQLiteDBPath string

	// REST specific
	LedgerAPIURL string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleTransactionsSheet  string
	GoogleAssetsSheet        string
	GoogleCategoriesSheet    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	RESTBackend   BackendType = "rest"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, SheetsBackend, RESTBackend:
		return true
	default:
		return false
	}
}
