package catalog

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestStaticExcludesPlayedTrades(t *testing.T) {
	ctx := context.Background()
	s := NewStaticWithSeed(42)

	var used []string
	for i := 0; i < s.Size(); i++ {
		trade, err := s.RandomTrade(ctx, used)
		if err != nil {
			t.Fatalf("Draw %d failed: %v", i, err)
		}
		if slices.Contains(used, trade.ID) {
			t.Fatalf("Draw %d repeated trade %s", i, trade.ID)
		}
		used = append(used, trade.ID)
	}

	_, err := s.RandomTrade(ctx, used)
	if !errors.Is(err, ErrNoTrades) {
		t.Fatalf("Expected ErrNoTrades once every trade is used, got %v", err)
	}
}

func TestStaticTradeByID(t *testing.T) {
	ctx := context.Background()
	s := NewStatic()

	trade, err := s.TradeByID(ctx, "trade_5")
	if err != nil {
		t.Fatalf("TradeByID failed: %v", err)
	}
	if trade.ReturnPct != 350 {
		t.Errorf("Expected trade_5 return 350, got %f", trade.ReturnPct)
	}

	_, err = s.TradeByID(ctx, "trade_999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestStaticPNLCap(t *testing.T) {
	s := NewStatic()
	if got := s.PNLCap(); got != 3.5 {
		t.Errorf("Expected cap 3.5 from the best positive return, got %f", got)
	}
}

func TestStaticSize(t *testing.T) {
	s := NewStatic()
	if got := s.Size(); got != 15 {
		t.Errorf("Expected 15 embedded trades, got %d", got)
	}
}
