package game

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/bigbadman-lab/onesol/internal/catalog"
	"github.com/bigbadman-lab/onesol/internal/keystore"
	"github.com/bigbadman-lab/onesol/internal/types"
)

type fetchResult struct {
	trade *types.Trade
	err   error
}

// fakeCatalog pops queued results in order and records the exclusion list of
// every call. An empty queue reports exhaustion.
type fakeCatalog struct {
	mu    sync.Mutex
	queue []fetchResult
	calls [][]string
}

func (f *fakeCatalog) RandomTrade(_ context.Context, excludeIDs []string) (*types.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, slices.Clone(excludeIDs))
	if len(f.queue) == 0 {
		return nil, catalog.ErrNoTrades
	}
	r := f.queue[0]
	f.queue = f.queue[1:]
	return r.trade, r.err
}

func (f *fakeCatalog) TradeByID(_ context.Context, id string) (*types.Trade, error) {
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) push(results ...fetchResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, results...)
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeCatalog) lastCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

type fakeProbe struct {
	mu     sync.Mutex
	online bool
}

func (p *fakeProbe) Online(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

func (p *fakeProbe) set(online bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online = online
}

func mkTrade(id string, outcome types.Outcome, returnPct float64) *types.Trade {
	return &types.Trade{
		ID:          id,
		Outcome:     outcome,
		ReturnPct:   returnPct,
		ReasonShort: "test reason",
	}
}

func newTestSession(cat *fakeCatalog, probe *fakeProbe) (*Session, *keystore.DaySet) {
	seen := keystore.NewDaySet(keystore.NewMemory())
	return NewSession(Config{}, cat, probe, seen), seen
}

func TestStartRunInitializes(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(
		fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 245)},
		fetchResult{trade: mkTrade("trade_2", types.OutcomeRug, -95)},
	)
	s, seen := newTestSession(cat, &fakeProbe{online: true})

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()

	if !s.Active() {
		t.Error("Expected session to be active")
	}
	stats := s.Stats()
	if stats.Balance != 10.0 {
		t.Errorf("Expected balance 10.0, got %f", stats.Balance)
	}
	if stats.TradeCount != 0 || stats.CorrectCount != 0 {
		t.Errorf("Expected zero counters, got %d/%d", stats.TradeCount, stats.CorrectCount)
	}
	cur := s.CurrentTrade()
	if cur == nil || cur.ID != "trade_1" {
		t.Fatalf("Expected current trade_1, got %+v", cur)
	}

	ids, err := seen.LoadToday(ctx)
	if err != nil {
		t.Fatalf("LoadToday failed: %v", err)
	}
	if !slices.Contains(ids, "trade_1") {
		t.Errorf("Expected persisted set to contain trade_1, got %v", ids)
	}
}

func TestStartRunOffline(t *testing.T) {
	cat := &fakeCatalog{}
	s, _ := newTestSession(cat, &fakeProbe{online: false})

	err := s.StartRun(context.Background())
	if !errors.Is(err, ErrOffline) {
		t.Fatalf("Expected ErrOffline, got %v", err)
	}
	if s.Active() {
		t.Error("Expected session to stay inactive")
	}
	if cat.callCount() != 0 {
		t.Errorf("Expected no catalog calls, got %d", cat.callCount())
	}
}

func TestStartRunExhausted(t *testing.T) {
	s, _ := newTestSession(&fakeCatalog{}, &fakeProbe{online: true})

	err := s.StartRun(context.Background())
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Expected ErrExhausted, got %v", err)
	}
	if s.Active() {
		t.Error("Expected session to stay inactive")
	}
}

func TestSubmitCorrectPrediction(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(
		fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 245)},
		fetchResult{trade: mkTrade("trade_2", types.OutcomeRug, -95)},
		fetchResult{trade: mkTrade("trade_3", types.OutcomeRich, 180)},
	)
	s, _ := newTestSession(cat, &fakeProbe{online: true})

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()

	s.SelectWager(1.0)
	result, err := s.SubmitPrediction(ctx, types.OutcomeRich)
	if err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	s.prefetches.Wait()

	if !result.IsCorrect {
		t.Error("Expected correct result")
	}
	if result.PNL != 2.45 {
		t.Errorf("Expected PNL 2.45, got %f", result.PNL)
	}
	stats := s.Stats()
	if stats.Balance != 12.45 {
		t.Errorf("Expected balance 12.45, got %f", stats.Balance)
	}
	if stats.TradeCount != 1 || stats.CorrectCount != 1 {
		t.Errorf("Expected counters 1/1, got %d/%d", stats.TradeCount, stats.CorrectCount)
	}
	cur := s.CurrentTrade()
	if cur == nil || cur.ID != "trade_2" {
		t.Fatalf("Expected advance to trade_2, got %+v", cur)
	}
	if len(s.Results()) != 1 {
		t.Errorf("Expected 1 recorded result, got %d", len(s.Results()))
	}
}

func TestSubmitIncorrectPrediction(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(
		fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 245)},
		fetchResult{trade: mkTrade("trade_2", types.OutcomeRug, -95)},
	)
	s, _ := newTestSession(cat, &fakeProbe{online: true})

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()

	s.SelectWager(1.0)
	result, err := s.SubmitPrediction(ctx, types.OutcomeRug)
	if err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	if result.IsCorrect {
		t.Error("Expected incorrect result")
	}
	if result.PNL != -1.0 {
		t.Errorf("Expected PNL -1.0, got %f", result.PNL)
	}
	if got := s.Stats().Balance; got != 9.0 {
		t.Errorf("Expected balance 9.0, got %f", got)
	}
	if s.Stats().CorrectCount != 0 {
		t.Error("Expected correct count to stay 0")
	}
}

func TestWinMultiplierCap(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(
		fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 1000)},
		fetchResult{trade: mkTrade("trade_2", types.OutcomeRug, -95)},
	)
	s, _ := newTestSession(cat, &fakeProbe{online: true})

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()

	s.SelectWager(1.0)
	result, err := s.SubmitPrediction(ctx, types.OutcomeRich)
	if err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	if result.PNL != 3.5 {
		t.Errorf("Expected capped PNL 3.5, got %f", result.PNL)
	}
}

func TestBalanceFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(
		fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 245)},
		fetchResult{trade: mkTrade("trade_2", types.OutcomeRug, -95)},
	)
	seen := keystore.NewDaySet(keystore.NewMemory())
	s := NewSession(Config{StartingBalance: 2.0}, cat, &fakeProbe{online: true}, seen)

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()

	s.SelectWager(3.0)
	if _, err := s.SubmitPrediction(ctx, types.OutcomeRug); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	if got := s.Stats().Balance; got != 0 {
		t.Errorf("Expected balance floored at 0, got %f", got)
	}
}

func TestExclusionGrowsAcrossFetches(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(
		fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 245)},
		fetchResult{trade: mkTrade("trade_2", types.OutcomeRug, -95)},
		fetchResult{trade: mkTrade("trade_3", types.OutcomeRich, 180)},
	)
	s, _ := newTestSession(cat, &fakeProbe{online: true})

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()

	s.SelectWager(1.0)
	if _, err := s.SubmitPrediction(ctx, types.OutcomeRich); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	s.prefetches.Wait()

	last := cat.lastCall()
	for _, id := range []string{"trade_1", "trade_2"} {
		if !slices.Contains(last, id) {
			t.Errorf("Expected exclusion list to contain %s, got %v", id, last)
		}
	}
}

func TestStalePrefetchedTradeDiscarded(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 245)})
	s, _ := newTestSession(cat, &fakeProbe{online: true})

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()

	// Plant a prefetched trade whose ID has already been played.
	s.mu.Lock()
	s.next = mkTrade("trade_1", types.OutcomeRich, 245)
	s.mu.Unlock()
	cat.push(fetchResult{trade: mkTrade("trade_2", types.OutcomeRug, -95)})

	s.SelectWager(1.0)
	result, err := s.SubmitPrediction(ctx, types.OutcomeRich)
	if err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	if result == nil || !result.IsCorrect {
		t.Fatal("Expected settled result")
	}
	cur := s.CurrentTrade()
	if cur == nil || cur.ID != "trade_2" {
		t.Fatalf("Expected fresh trade_2 after discarding stale prefetch, got %+v", cur)
	}
}

func TestSubmitExhaustionClearsCurrent(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 245)})
	s, _ := newTestSession(cat, &fakeProbe{online: true})

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()

	s.SelectWager(1.0)
	result, err := s.SubmitPrediction(ctx, types.OutcomeRich)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Expected ErrExhausted, got %v", err)
	}
	if result != nil {
		t.Error("Expected no result on exhaustion")
	}
	if s.CurrentTrade() != nil {
		t.Error("Expected current trade to be cleared")
	}
	stats := s.Stats()
	if stats.Balance != 10.0 || stats.TradeCount != 0 {
		t.Errorf("Expected untouched balance and counters, got %f/%d", stats.Balance, stats.TradeCount)
	}
	if len(s.Results()) != 0 {
		t.Error("Expected no recorded results")
	}
}

func TestSubmitOfflineLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 245)})
	probe := &fakeProbe{online: true}
	s, _ := newTestSession(cat, probe)

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()
	probe.set(false)

	s.SelectWager(1.0)
	_, err := s.SubmitPrediction(ctx, types.OutcomeRich)
	if !errors.Is(err, ErrOffline) {
		t.Fatalf("Expected ErrOffline, got %v", err)
	}
	cur := s.CurrentTrade()
	if cur == nil || cur.ID != "trade_1" {
		t.Fatalf("Expected current trade preserved, got %+v", cur)
	}
	if got := s.Stats().Balance; got != 10.0 {
		t.Errorf("Expected balance unchanged, got %f", got)
	}

	// Back online, the same wager settles.
	probe.set(true)
	cat.push(fetchResult{trade: mkTrade("trade_2", types.OutcomeRug, -95)})
	result, err := s.SubmitPrediction(ctx, types.OutcomeRich)
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if result == nil || result.TradeID != "trade_1" {
		t.Fatalf("Expected trade_1 to settle on retry, got %+v", result)
	}
}

func TestSubmitFetchFailureIsAtomic(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 245)})
	s, _ := newTestSession(cat, &fakeProbe{online: true})

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()
	cat.push(fetchResult{err: errors.New("connection reset")})

	s.SelectWager(1.0)
	_, err := s.SubmitPrediction(ctx, types.OutcomeRich)
	if err == nil || errors.Is(err, ErrExhausted) || errors.Is(err, ErrOffline) {
		t.Fatalf("Expected generic fetch error, got %v", err)
	}
	cur := s.CurrentTrade()
	if cur == nil || cur.ID != "trade_1" {
		t.Fatalf("Expected current trade preserved, got %+v", cur)
	}
	if got := s.Stats().Balance; got != 10.0 {
		t.Errorf("Expected balance unchanged, got %f", got)
	}

	s.mu.Lock()
	betKept := s.selectedBet != nil
	s.mu.Unlock()
	if !betKept {
		t.Error("Expected selected bet to survive a failed fetch")
	}
}

func TestSubmitWithoutWagerIsNoop(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(
		fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 245)},
		fetchResult{trade: mkTrade("trade_2", types.OutcomeRug, -95)},
	)
	s, _ := newTestSession(cat, &fakeProbe{online: true})

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()

	result, err := s.SubmitPrediction(ctx, types.OutcomeRich)
	if err != nil || result != nil {
		t.Fatalf("Expected no-op without wager, got %+v, %v", result, err)
	}
	if got := s.Stats().TradeCount; got != 0 {
		t.Errorf("Expected no settled trades, got %d", got)
	}
}

func TestCompleteRunKeepsTotals(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(
		fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 245)},
		fetchResult{trade: mkTrade("trade_2", types.OutcomeRug, -95)},
	)
	s, _ := newTestSession(cat, &fakeProbe{online: true})

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()
	s.SelectWager(1.0)
	if _, err := s.SubmitPrediction(ctx, types.OutcomeRich); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}

	s.CompleteRun()
	if s.Active() {
		t.Error("Expected session to be inactive")
	}
	stats := s.Stats()
	if stats.Balance != 12.45 || stats.TradeCount != 1 {
		t.Errorf("Expected totals preserved, got %f/%d", stats.Balance, stats.TradeCount)
	}
}

func TestResetRunClearsStateButNotDaySet(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	cat.push(
		fetchResult{trade: mkTrade("trade_1", types.OutcomeRich, 245)},
		fetchResult{trade: mkTrade("trade_2", types.OutcomeRug, -95)},
	)
	s, seen := newTestSession(cat, &fakeProbe{online: true})

	if err := s.StartRun(ctx); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	s.prefetches.Wait()
	s.SelectWager(1.0)
	if _, err := s.SubmitPrediction(ctx, types.OutcomeRich); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	s.prefetches.Wait()

	s.ResetRun()
	s.ResetRun() // idempotent

	if s.Active() {
		t.Error("Expected session to be inactive")
	}
	stats := s.Stats()
	if stats.Balance != 10.0 || stats.TradeCount != 0 || stats.CorrectCount != 0 {
		t.Errorf("Expected zeroed stats, got %+v", stats)
	}
	if s.CurrentTrade() != nil {
		t.Error("Expected no current trade after reset")
	}
	if len(s.Results()) != 0 {
		t.Error("Expected no results after reset")
	}

	ids, err := seen.LoadToday(ctx)
	if err != nil {
		t.Fatalf("LoadToday failed: %v", err)
	}
	if len(ids) == 0 {
		t.Error("Expected persisted day set to survive reset")
	}
}
