package ledger

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
)

// Load reads the three collections concurrently into one snapshot. The
// first failure cancels the other reads.
func Load(ctx context.Context, r Reader) (core.Snapshot, error) {
	var snap core.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		txs, err := r.Transactions(gctx)
		if err != nil {
			return fmt.Errorf("read transactions: %w", err)
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		assets, err := r.Assets(gctx)
		if err != nil {
			return fmt.Errorf("read assets: %w", err)
		}
		snap.Assets = assets
		return nil
	})
	g.Go(func() error {
		cats, err := r.Categories(gctx)
		if err != nil {
			return fmt.Errorf("read categories: %w", err)
		}
		snap.Categories = cats
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}
	return snap, nil
}

// Import copies every record of snap into w, assets and categories first.
func Import(ctx context.Context, w Writer, snap core.Snapshot) error {
	for _, a := range snap.Assets {
		if err := w.SaveAsset(ctx, a); err != nil {
			return fmt.Errorf("import asset %q: %w", a.ID, err)
		}
	}
	for _, c := range snap.Categories {
		if err := w.SaveCategory(ctx, c); err != nil {
			return fmt.Errorf("import category %q: %w", c.ID, err)
		}
	}
	for _, tx := range snap.Transactions {
		if err := w.SaveTransaction(ctx, tx); err != nil {
			return fmt.Errorf("import transaction %q: %w", tx.ID, err)
		}
	}
	return nil
}
