package gameobs

import (
	"context"
	"time"

	"github.com/bigbadman-lab/onesol/internal/interfaces"
	"github.com/bigbadman-lab/onesol/internal/logger"
	"github.com/bigbadman-lab/onesol/internal/trace"
	"github.com/bigbadman-lab/onesol/internal/types"
)

type observableSession struct {
	session interfaces.Session
}

var _ interfaces.Session = (*observableSession)(nil)

// Wrap decorates a session with spans and timing logs around the operations
// that touch the network.
func Wrap(s interfaces.Session) interfaces.Session {
	return &observableSession{
		session: s,
	}
}

func (o *observableSession) StartRun(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "session.StartRun")
	defer span.End()

	start := time.Now()

	if err := o.session.StartRun(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Run start failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	stats := o.session.Stats()
	logger.Info(ctx, "Run start completed",
		"balance", stats.Balance,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (o *observableSession) SubmitPrediction(ctx context.Context, p types.Prediction) (*types.TradeResult, error) {
	ctx, span := trace.StartSpan(ctx, "session.SubmitPrediction")
	defer span.End()

	start := time.Now()

	result, err := o.session.SubmitPrediction(ctx, p)
	if err != nil {
		logger.ErrorWithErr(ctx, "Prediction failed", err,
			"prediction", string(p),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	logger.Info(ctx, "Prediction settled",
		"trade_id", result.TradeID,
		"prediction", string(p),
		"correct", result.IsCorrect,
		"pnl", result.PNL,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (o *observableSession) SelectWager(amount float64) { o.session.SelectWager(amount) }
func (o *observableSession) CompleteRun()               { o.session.CompleteRun() }
func (o *observableSession) ResetRun()                  { o.session.ResetRun() }
func (o *observableSession) Active() bool               { return o.session.Active() }
func (o *observableSession) Stats() types.RunStats      { return o.session.Stats() }
func (o *observableSession) CurrentTrade() *types.Trade { return o.session.CurrentTrade() }
func (o *observableSession) Results() []types.TradeResult {
	return o.session.Results()
}
