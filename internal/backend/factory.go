package backend

import (
	"context"
	"fmt"

	"fintrack/internal/ledger"
	"fintrack/internal/ledger/google"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/ledger/rest"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case RESTBackend:
		return f.createRESTBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	if err := f.seedIfEmpty(ctx, repo, config.DataDirectory); err != nil {
		repo.Close()
		return nil, err
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

// seedIfEmpty imports the memory seed files into a fresh database.
func (f *DefaultFactory) seedIfEmpty(ctx context.Context, repo *storage.SQLiteRepository, dir string) error {
	if dir == "" {
		return nil
	}
	empty, err := repo.Empty(ctx)
	if err != nil || !empty {
		return err
	}
	snap, err := memory.ReadSeed(dir)
	if err != nil {
		return fmt.Errorf("read seed data: %w", err)
	}
	if err := ledger.Import(ctx, repo, snap); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	f.logger.Info("Seeded SQLite backend",
		"data_directory", dir,
		"transactions", len(snap.Transactions),
		"assets", len(snap.Assets),
		"categories", len(snap.Categories))
	return nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, google.Config{
		SpreadsheetID:     config.GoogleSpreadsheetID,
		CredentialsJSON:   config.GoogleServiceAccountJSON,
		CredentialsFile:   config.GoogleServiceAccountFile,
		TransactionsSheet: config.GoogleTransactionsSheet,
		AssetsSheet:       config.GoogleAssetsSheet,
		CategoriesSheet:   config.GoogleCategoriesSheet,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)
	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createRESTBackend(config Config) (*BackendResult, error) {
	f.logger.Info("Initialized REST backend", "url", config.LedgerAPIURL)
	return &BackendResult{Backend: rest.New(config.LedgerAPIURL, nil)}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store, err := memory.NewFromFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory backend seed: %w", err)
	}

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return &BackendResult{Backend: store}, nil
}
