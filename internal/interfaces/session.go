package interfaces

import (
	"context"

	"github.com/bigbadman-lab/onesol/internal/types"
)

// Session drives one endless-mode play-through.
type Session interface {
	StartRun(ctx context.Context) error
	SelectWager(amount float64)
	SubmitPrediction(ctx context.Context, p types.Prediction) (*types.TradeResult, error)
	CompleteRun()
	ResetRun()

	Active() bool
	Stats() types.RunStats
	CurrentTrade() *types.Trade
	Results() []types.TradeResult
}
