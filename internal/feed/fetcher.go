package feed

import (
	"context"

	"github.com/paystream/paystream/internal/transfers"
	"github.com/paystream/paystream/pkg/models"
)

// Fetcher pulls the current view of transfers for a tracked account set.
// Implementations must be safe for sequential reuse across ticks; the
// session never issues overlapping calls.
type Fetcher interface {
	Fetch(ctx context.Context, accountIDs []string) ([]models.Transfer, error)
}

// StoreFetcher adapts the transfer store to the feed's Fetcher contract,
// applying the configured result cap.
type StoreFetcher struct {
	store *transfers.Store
	limit int
}

// NewStoreFetcher wraps a transfer store with a fixed result cap.
func NewStoreFetcher(store *transfers.Store, limit int) *StoreFetcher {
	return &StoreFetcher{store: store, limit: limit}
}

// Fetch returns the most recent transfers touching the tracked accounts.
func (f *StoreFetcher) Fetch(ctx context.Context, accountIDs []string) ([]models.Transfer, error) {
	return f.store.ListByAccounts(ctx, accountIDs, f.limit)
}
