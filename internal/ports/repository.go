package ports

import (
	"context"

	"tradeforge/internal/domain"
)

// TradeRepository is the persistence collaborator for executed fills.
// The analytics engine never writes; it takes a full snapshot per call and
// recomputes from scratch, so edits and deletes by the caller need no
// incremental bookkeeping here.
type TradeRepository interface {
	// Create saves a new trade and returns its assigned ID.
	Create(ctx context.Context, trade *domain.TradeRecord) (int64, error)
	// GetAll returns every trade ordered by (timestamp, id) ascending.
	GetAll(ctx context.Context) ([]domain.TradeRecord, error)
	// GetByTicker returns all trades for one ticker in the same order.
	GetByTicker(ctx context.Context, ticker string) ([]domain.TradeRecord, error)
	// Delete removes a trade by ID. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}
