package interfaces

import (
	"context"

	"github.com/bigbadman-lab/onesol/internal/types"
)

// Catalog sources trades from the remote trade catalog.
type Catalog interface {
	// RandomTrade returns one trade whose ID is not in excludeIDs.
	// Implementations signal a structurally empty catalog (every trade
	// excluded) with catalog.ErrNoTrades rather than a generic failure.
	RandomTrade(ctx context.Context, excludeIDs []string) (*types.Trade, error)
	TradeByID(ctx context.Context, id string) (*types.Trade, error)
}

// Probe reports whether the device currently has network reachability.
// Consulted before fetches so the engine can fail fast instead of hanging.
type Probe interface {
	Online(ctx context.Context) bool
}
