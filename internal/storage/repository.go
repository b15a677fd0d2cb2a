package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// SQLiteRepository stores the ledger in a local SQLite database.
type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

var (
	_ ledger.Reader = (*SQLiteRepository)(nil)
	_ ledger.Writer = (*SQLiteRepository)(nil)
)

// NewSQLiteRepository opens (creating if needed) the database at dbPath
// and brings its schema up to date.
func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Empty reports whether the database holds no assets, categories or transactions.
func (r *SQLiteRepository) Empty(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM assets)
		     + (SELECT COUNT(*) FROM categories)
		     + (SELECT COUNT(*) FROM transactions)`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count rows: %w", err)
	}
	return n == 0, nil
}

func (r *SQLiteRepository) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, amount, currency, date, created_at, type,
		       asset_id, category_id, source, asset_from_id
		FROM transactions
		ORDER BY date, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx              core.Transaction
			date, createdAt string
			typ             string
		)
		if err := rows.Scan(&tx.ID, &tx.Name, &tx.Amount, &tx.Currency, &date, &createdAt, &typ,
			&tx.AssetID, &tx.CategoryID, &tx.Source, &tx.AssetFromID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		if createdAt != "" {
			if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
				return nil, fmt.Errorf("transaction %s created_at: %w", tx.ID, err)
			}
		}
		tx.Type = core.TxType(typ)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Assets(ctx context.Context) ([]core.Asset, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, init_balance, currency FROM assets ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var out []core.Asset
	for rows.Next() {
		var a core.Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.InitBalance, &a.Currency); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, total_budgeted, currency FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.TotalBudgeted, &c.Currency); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveTransaction validates tx and upserts it. An empty id gets a UUID and
// a zero CreatedAt is set to now.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, name, amount, currency, date, created_at, type,
		                          asset_id, category_id, source, asset_from_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			amount = excluded.amount,
			currency = excluded.currency,
			date = excluded.date,
			created_at = excluded.created_at,
			type = excluded.type,
			asset_id = excluded.asset_id,
			category_id = excluded.category_id,
			source = excluded.source,
			asset_from_id = excluded.asset_from_id`,
		tx.ID, tx.Name, tx.Amount, tx.Currency, core.FormatDate(tx.Date),
		tx.CreatedAt.UTC().Format(time.RFC3339Nano), string(tx.Type),
		tx.AssetID, tx.CategoryID, tx.Source, tx.AssetFromID)
	if err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}

	r.logger.DebugContext(ctx, "Transaction saved", "id", tx.ID, "type", tx.Type, log.FieldAssetID, tx.AssetID)
	return nil
}

func (r *SQLiteRepository) SaveAsset(ctx context.Context, a core.Asset) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assets (id, name, init_balance, currency) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			init_balance = excluded.init_balance,
			currency = excluded.currency`,
		a.ID, a.Name, a.InitBalance, a.Currency)
	if err != nil {
		return fmt.Errorf("save asset: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SaveCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, total_budgeted, currency) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			total_budgeted = excluded.total_budgeted,
			currency = excluded.currency`,
		c.ID, c.Name, c.TotalBudgeted, c.Currency)
	if err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}
