package keystore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bigbadman-lab/onesol/internal/interfaces"
)

const (
	usedTradeIDsKey  = "used_trade_ids_today"
	lastTradeDateKey = "last_trade_date"
)

// DaySet is the set of trade IDs already played today, persisted as a JSON
// array under a single key. The set resets exactly once per calendar day:
// the first load on a new day clears it and stamps the date marker.
type DaySet struct {
	kv  interfaces.KeyValue
	now func() time.Time
}

func NewDaySet(kv interfaces.KeyValue) *DaySet {
	return &DaySet{kv: kv, now: time.Now}
}

// SetClock overrides the clock, for tests.
func (d *DaySet) SetClock(now func() time.Time) {
	d.now = now
}

func (d *DaySet) today() string {
	return d.now().Format("2006-01-02")
}

// LoadToday returns today's used IDs, resetting the persisted set first if
// the stored date marker is not today.
func (d *DaySet) LoadToday(ctx context.Context) ([]string, error) {
	lastDate, err := d.kv.Get(ctx, lastTradeDateKey)
	if err != nil {
		return nil, fmt.Errorf("read date marker: %w", err)
	}

	today := d.today()
	if lastDate != today {
		if err := d.kv.Delete(ctx, usedTradeIDsKey); err != nil {
			return nil, fmt.Errorf("clear used ids: %w", err)
		}
		if err := d.kv.Set(ctx, lastTradeDateKey, today); err != nil {
			return nil, fmt.Errorf("stamp date marker: %w", err)
		}
		return nil, nil
	}

	stored, err := d.kv.Get(ctx, usedTradeIDsKey)
	if err != nil {
		return nil, fmt.Errorf("read used ids: %w", err)
	}
	if stored == "" {
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(stored), &ids); err != nil {
		// Corrupt entry; safer to start over than to fail the run.
		return nil, nil
	}
	return ids, nil
}

// Save persists the used-ID set and refreshes the date marker.
func (d *DaySet) Save(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode used ids: %w", err)
	}
	if err := d.kv.Set(ctx, usedTradeIDsKey, string(b)); err != nil {
		return fmt.Errorf("write used ids: %w", err)
	}
	if err := d.kv.Set(ctx, lastTradeDateKey, d.today()); err != nil {
		return fmt.Errorf("stamp date marker: %w", err)
	}
	return nil
}
