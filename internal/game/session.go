package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/bigbadman-lab/onesol/internal/catalog"
	"github.com/bigbadman-lab/onesol/internal/interfaces"
	"github.com/bigbadman-lab/onesol/internal/keystore"
	"github.com/bigbadman-lab/onesol/internal/logger"
	"github.com/bigbadman-lab/onesol/internal/types"
)

// Config tunes a session.
type Config struct {
	StartingBalance float64
	PNLCap          float64
}

// Session owns one endless-mode play-through: balance, history, the trade on
// screen, the prefetched next trade, and the set of IDs already played
// today. The caller serializes operations (at most one StartRun or
// SubmitPrediction in flight); the only internal concurrency is the
// one-ahead prefetch, whose failure is absorbed silently.
type Session struct {
	cfg     Config
	catalog interfaces.Catalog
	probe   interfaces.Probe
	seen    *keystore.DaySet

	mu           sync.Mutex
	active       bool
	balance      float64
	tradeCount   int
	correctCount int
	results      []types.TradeResult
	current      *types.Trade
	next         *types.Trade
	selectedBet  *float64
	usedIDs      []string

	// gen tags prefetches; results landing after a reset or a new run
	// carry a stale gen and are discarded unread.
	gen        int
	prefetches sync.WaitGroup
}

var _ interfaces.Session = (*Session)(nil)

func NewSession(cfg Config, cat interfaces.Catalog, probe interfaces.Probe, seen *keystore.DaySet) *Session {
	if cfg.StartingBalance <= 0 {
		cfg.StartingBalance = StartingBalance
	}
	if cfg.PNLCap <= 0 {
		cfg.PNLCap = DefaultPNLCap
	}
	return &Session{cfg: cfg, catalog: cat, probe: probe, seen: seen}
}

// StartRun begins a fresh run: loads today's exclusion set (resetting it on
// a new day), fetches the first trade, persists the updated set, and kicks
// off the prefetch for the trade after it. Prefetch failure is non-fatal.
func (s *Session) StartRun(ctx context.Context) error {
	if !s.probe.Online(ctx) {
		return ErrOffline
	}

	used, err := s.seen.LoadToday(ctx)
	if err != nil {
		logger.Warn(ctx, "Keystore read failed, starting with empty exclusion set", "error", err)
		used = nil
	}

	first, err := s.catalog.RandomTrade(ctx, used)
	if err != nil {
		if errors.Is(err, catalog.ErrNoTrades) {
			return fmt.Errorf("start run: %w", ErrExhausted)
		}
		return fmt.Errorf("start run: %w", err)
	}

	used = appendID(used, first.ID)
	if err := s.seen.Save(ctx, used); err != nil {
		logger.Warn(ctx, "Failed to persist used trade ids", "error", err, "count", len(used))
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.active = true
	s.balance = s.cfg.StartingBalance
	s.tradeCount = 0
	s.correctCount = 0
	s.results = nil
	s.current = first
	s.next = nil
	s.selectedBet = nil
	s.usedIDs = used
	s.mu.Unlock()

	logger.Info(ctx, "Run started", "first_trade", first.ID, "excluded", len(used))

	s.prefetch(ctx, gen, slices.Clone(used))
	return nil
}

// SelectWager records the wager for the current trade. Membership in the
// offered bet options and affordability are the caller's concern.
func (s *Session) SelectWager(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedBet = &amount
}

// SubmitPrediction settles the current trade against the player's call and
// advances to the next one, preferring the prefetched trade. A trade whose
// prefetch raced the exclusion update is discarded and replaced by a fresh,
// validated fetch. On exhaustion the current trade is cleared so the caller
// never shows stale data; on any other failure the session is untouched.
func (s *Session) SubmitPrediction(ctx context.Context, prediction types.Prediction) (*types.TradeResult, error) {
	s.mu.Lock()
	if s.current == nil || s.selectedBet == nil {
		s.mu.Unlock()
		return nil, nil
	}
	cur := *s.current
	bet := *s.selectedBet
	next := s.next
	gen := s.gen
	exclude := appendID(slices.Clone(s.usedIDs), cur.ID)
	s.mu.Unlock()

	newCurrent, err := s.resolveNext(ctx, next, exclude)
	if err != nil {
		if errors.Is(err, ErrExhausted) {
			s.mu.Lock()
			if s.gen == gen {
				s.current = nil
				s.next = nil
			}
			s.mu.Unlock()
			return nil, fmt.Errorf("submit prediction: %w", ErrExhausted)
		}
		return nil, fmt.Errorf("submit prediction: %w", err)
	}

	pnl := PNL(bet, prediction, cur.Outcome, cur.ReturnPct, s.cfg.PNLCap)
	isCorrect := prediction == cur.Outcome
	result := types.TradeResult{
		TradeID:    cur.ID,
		BetAmount:  bet,
		Prediction: prediction,
		Outcome:    cur.Outcome,
		PNL:        pnl,
		IsCorrect:  isCorrect,
		ReturnPct:  cur.ReturnPct,
		Reason:     cur.ReasonShort,
	}
	newUsed := appendID(exclude, newCurrent.ID)

	s.mu.Lock()
	s.balance = round2(math.Max(0, s.balance+pnl))
	s.tradeCount++
	if isCorrect {
		s.correctCount++
	}
	s.results = append(s.results, result)
	s.current = newCurrent
	s.next = nil
	s.selectedBet = nil
	s.usedIDs = newUsed
	balance := s.balance
	s.mu.Unlock()

	if err := s.seen.Save(ctx, newUsed); err != nil {
		logger.Warn(ctx, "Failed to persist used trade ids", "error", err, "count", len(newUsed))
	}

	logger.Result(ctx, cur.ID, string(prediction), isCorrect, pnl, balance)

	s.prefetch(ctx, gen, newUsed)
	return &result, nil
}

// resolveNext picks the trade to show after the current one: the prefetched
// trade if it is still valid, otherwise a fresh fetch validated against the
// exclusion set.
func (s *Session) resolveNext(ctx context.Context, next *types.Trade, exclude []string) (*types.Trade, error) {
	if next != nil && !slices.Contains(exclude, next.ID) {
		return next, nil
	}
	if next != nil {
		logger.Warn(ctx, "Prefetched trade already used, fetching replacement", "trade_id", next.ID)
	}

	if !s.probe.Online(ctx) {
		return nil, ErrOffline
	}
	t, err := s.catalog.RandomTrade(ctx, exclude)
	if err != nil {
		if errors.Is(err, catalog.ErrNoTrades) {
			return nil, ErrExhausted
		}
		return nil, err
	}
	if slices.Contains(exclude, t.ID) {
		// The catalog's exclusion filter let a used trade through; treat
		// as authoritative exhaustion.
		return nil, ErrExhausted
	}
	return t, nil
}

// prefetch fetches the trade after next in the background. Failures are
// absorbed: the next submission simply fetches synchronously. The fetch
// outlives the triggering operation's context on purpose.
func (s *Session) prefetch(ctx context.Context, gen int, exclude []string) {
	ctx = context.WithoutCancel(ctx)
	s.prefetches.Add(1)
	go func() {
		defer s.prefetches.Done()
		t, err := s.catalog.RandomTrade(ctx, exclude)
		if err != nil {
			logger.Debug(ctx, "Prefetch failed", "error", err)
			return
		}
		s.mu.Lock()
		if s.gen == gen && s.active {
			s.next = t
		}
		s.mu.Unlock()
	}()
}

// CompleteRun marks the run inactive, keeping final totals readable until
// ResetRun.
func (s *Session) CompleteRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// ResetRun zeroes all in-memory state. The persisted used-ID set is
// day-scoped, not run-scoped, and is left untouched.
func (s *Session) ResetRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.active = false
	s.balance = s.cfg.StartingBalance
	s.tradeCount = 0
	s.correctCount = 0
	s.results = nil
	s.current = nil
	s.next = nil
	s.selectedBet = nil
	s.usedIDs = nil
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) Stats() types.RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.RunStats{
		Active:       s.active,
		Balance:      s.balance,
		TradeCount:   s.tradeCount,
		CorrectCount: s.correctCount,
	}
}

// CurrentTrade returns a copy of the trade on screen, or nil.
func (s *Session) CurrentTrade() *types.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	t := *s.current
	return &t
}

func (s *Session) Results() []types.TradeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.results)
}

func appendID(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}
