// Package ledger defines how ledger snapshots are read from, and written
// to, the stores that back the service.
package ledger

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

var ErrNotFound = errors.New("not found")

// Ports for outbound adapters. Each read returns the full current
// collection for one resource.
type (
	TransactionReader interface {
		Transactions(ctx context.Context) ([]core.Transaction, error)
	}

	AssetReader interface {
		Assets(ctx context.Context) ([]core.Asset, error)
	}

	CategoryReader interface {
		Categories(ctx context.Context) ([]core.Category, error)
	}

	Reader interface {
		TransactionReader
		AssetReader
		CategoryReader
	}

	// Writer upserts records by id. Stores that are read-only do not
	// implement it.
	Writer interface {
		SaveTransaction(ctx context.Context, tx core.Transaction) error
		SaveAsset(ctx context.Context, a core.Asset) error
		SaveCategory(ctx context.Context, c core.Category) error
	}
)
