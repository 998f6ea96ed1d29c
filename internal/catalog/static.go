package catalog

import (
	"context"
	"math/rand"
	"slices"
	"sync"

	"github.com/bigbadman-lab/onesol/internal/interfaces"
	"github.com/bigbadman-lab/onesol/internal/types"
)

// Static serves the embedded 2025 trade set. It backs catalogd and local
// play without a remote catalog, honoring the same exclusion contract as the
// remote client.
type Static struct {
	mu     sync.Mutex
	trades []types.Trade
	rng    *rand.Rand
}

var _ interfaces.Catalog = (*Static)(nil)

func NewStatic() *Static {
	return NewStaticWithSeed(rand.Int63())
}

// NewStaticWithSeed pins the draw order, for tests.
func NewStaticWithSeed(seed int64) *Static {
	trades := make([]types.Trade, len(trades2025))
	copy(trades, trades2025)
	return &Static{
		trades: trades,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (s *Static) RandomTrade(_ context.Context, excludeIDs []string) (*types.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eligible := make([]int, 0, len(s.trades))
	for i, t := range s.trades {
		if !slices.Contains(excludeIDs, t.ID) {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoTrades
	}
	t := s.trades[eligible[s.rng.Intn(len(eligible))]]
	return &t, nil
}

func (s *Static) TradeByID(_ context.Context, id string) (*types.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.trades {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

// Size returns the number of trades in the set.
func (s *Static) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trades)
}

// PNLCap derives the winning-multiplier ceiling from the set: the maximum
// positive return percentage divided by 100.
func (s *Static) PNLCap() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxPct float64
	for _, t := range s.trades {
		if t.Outcome == types.OutcomeRich && t.ReturnPct > maxPct {
			maxPct = t.ReturnPct
		}
	}
	return maxPct / 100
}

var trades2025 = []types.Trade{
	{
		ID: "trade_1", SnapshotDate: "2025-01-15", Timeframe: "15m",
		CutType: "mid_move", Difficulty: "medium",
		ChartCutImage: "chart_1_cut.png", ChartFinalImage: "chart_1_final.png",
		Outcome: types.OutcomeRich, ReturnPct: 245,
		ReasonShort: "Strong volume breakout with bullish momentum continuation",
		LessonTag:   "volume_confirmation",
	},
	{
		ID: "trade_2", SnapshotDate: "2025-01-16", Timeframe: "15m",
		CutType: "early_signal", Difficulty: "hard",
		ChartCutImage: "chart_2_cut.png", ChartFinalImage: "chart_2_final.png",
		Outcome: types.OutcomeRug, ReturnPct: -95,
		ReasonShort: "Whale dumped liquidity immediately after initial pump",
		LessonTag:   "liquidity_trap",
	},
	{
		ID: "trade_3", SnapshotDate: "2025-01-17", Timeframe: "15m",
		CutType: "mid_move", Difficulty: "easy",
		ChartCutImage: "chart_3_cut.png", ChartFinalImage: "chart_3_final.png",
		Outcome: types.OutcomeRich, ReturnPct: 180,
		ReasonShort: "Steady accumulation with clean support levels",
		LessonTag:   "clean_structure",
	},
	{
		ID: "trade_4", SnapshotDate: "2025-01-18", Timeframe: "15m",
		CutType: "early_signal", Difficulty: "medium",
		ChartCutImage: "chart_4_cut.png", ChartFinalImage: "chart_4_final.png",
		Outcome: types.OutcomeRug, ReturnPct: -82,
		ReasonShort: "Low volume pump, rug pull pattern confirmed",
		LessonTag:   "low_volume_warning",
	},
	{
		ID: "trade_5", SnapshotDate: "2025-01-19", Timeframe: "15m",
		CutType: "mid_move", Difficulty: "medium",
		ChartCutImage: "chart_5_cut.png", ChartFinalImage: "chart_5_final.png",
		Outcome: types.OutcomeRich, ReturnPct: 350,
		ReasonShort: "Massive viral momentum with sustained buying pressure",
		LessonTag:   "viral_momentum",
	},
	{
		ID: "trade_6", SnapshotDate: "2025-01-20", Timeframe: "15m",
		CutType: "early_signal", Difficulty: "hard",
		ChartCutImage: "chart_6_cut.png", ChartFinalImage: "chart_6_final.png",
		Outcome: types.OutcomeRug, ReturnPct: -98,
		ReasonShort: "Dev wallet sold entire position at peak",
		LessonTag:   "dev_dump",
	},
	{
		ID: "trade_7", SnapshotDate: "2025-01-21", Timeframe: "15m",
		CutType: "mid_move", Difficulty: "easy",
		ChartCutImage: "chart_7_cut.png", ChartFinalImage: "chart_7_final.png",
		Outcome: types.OutcomeRich, ReturnPct: 220,
		ReasonShort: "Strong community backing with organic growth",
		LessonTag:   "community_strength",
	},
	{
		ID: "trade_8", SnapshotDate: "2025-01-22", Timeframe: "15m",
		CutType: "early_signal", Difficulty: "medium",
		ChartCutImage: "chart_8_cut.png", ChartFinalImage: "chart_8_final.png",
		Outcome: types.OutcomeRug, ReturnPct: -76,
		ReasonShort: "Coordinated bot activity followed by dump",
		LessonTag:   "bot_manipulation",
	},
	{
		ID: "trade_9", SnapshotDate: "2025-01-23", Timeframe: "15m",
		CutType: "mid_move", Difficulty: "medium",
		ChartCutImage: "chart_9_cut.png", ChartFinalImage: "chart_9_final.png",
		Outcome: types.OutcomeRich, ReturnPct: 195,
		ReasonShort: "Successful breakout above key resistance with volume",
		LessonTag:   "breakout_confirmation",
	},
	{
		ID: "trade_10", SnapshotDate: "2025-01-24", Timeframe: "15m",
		CutType: "early_signal", Difficulty: "easy",
		ChartCutImage: "chart_10_cut.png", ChartFinalImage: "chart_10_final.png",
		Outcome: types.OutcomeRich, ReturnPct: 285,
		ReasonShort: "Clear bullish pattern with high conviction entry",
		LessonTag:   "pattern_recognition",
	},
	{
		ID: "trade_11", SnapshotDate: "2025-01-25", Timeframe: "15m",
		CutType: "mid_move", Difficulty: "hard",
		ChartCutImage: "chart_11_cut.png", ChartFinalImage: "chart_11_final.png",
		Outcome: types.OutcomeRug, ReturnPct: -91,
		ReasonShort: "Fake volume spike masked sell pressure",
		LessonTag:   "fake_volume",
	},
	{
		ID: "trade_12", SnapshotDate: "2025-01-26", Timeframe: "15m",
		CutType: "early_signal", Difficulty: "medium",
		ChartCutImage: "chart_12_cut.png", ChartFinalImage: "chart_12_final.png",
		Outcome: types.OutcomeRich, ReturnPct: 310,
		ReasonShort: "Perfect entry timing on trend reversal",
		LessonTag:   "reversal_timing",
	},
	{
		ID: "trade_13", SnapshotDate: "2025-01-27", Timeframe: "15m",
		CutType: "mid_move", Difficulty: "easy",
		ChartCutImage: "chart_13_cut.png", ChartFinalImage: "chart_13_final.png",
		Outcome: types.OutcomeRich, ReturnPct: 165,
		ReasonShort: "Gradual accumulation with stable price action",
		LessonTag:   "stable_accumulation",
	},
	{
		ID: "trade_14", SnapshotDate: "2025-01-28", Timeframe: "15m",
		CutType: "early_signal", Difficulty: "hard",
		ChartCutImage: "chart_14_cut.png", ChartFinalImage: "chart_14_final.png",
		Outcome: types.OutcomeRug, ReturnPct: -88,
		ReasonShort: "Honeypot contract detected post-launch",
		LessonTag:   "contract_risk",
	},
	{
		ID: "trade_15", SnapshotDate: "2025-01-29", Timeframe: "15m",
		CutType: "mid_move", Difficulty: "medium",
		ChartCutImage: "chart_15_cut.png", ChartFinalImage: "chart_15_final.png",
		Outcome: types.OutcomeRich, ReturnPct: 275,
		ReasonShort: "Strong whale accumulation with price support",
		LessonTag:   "whale_accumulation",
	},
}
