package catalog

import "errors"

var (
	// ErrNoTrades means the catalog cannot supply a trade outside the
	// exclusion set. This includes the server returning a trade that is in
	// the set: the exclusion filter is eventually consistent, so a
	// violating response is treated as authoritative exhaustion.
	ErrNoTrades = errors.New("no trades available")

	// ErrInvalidTrade means the server returned a trade payload missing
	// required fields.
	ErrInvalidTrade = errors.New("invalid trade payload")

	// ErrNotFound means no trade with the requested ID exists.
	ErrNotFound = errors.New("trade not found")
)
