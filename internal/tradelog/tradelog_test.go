package tradelog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendWritesJSONLine(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ONESOL_LOG_DIR", dir)

	err := Append(Entry{
		TradeID:    "trade_1",
		Prediction: "RICH",
		Outcome:    "RICH",
		Bet:        1.0,
		PNL:        2.45,
		Balance:    12.45,
		Correct:    true,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	day := time.Now().Local().Format("2006-01-02")
	b, err := os.ReadFile(filepath.Join(dir, day+".txt"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if e.TradeID != "trade_1" || e.PNL != 2.45 || !e.Correct {
		t.Errorf("Unexpected entry: %+v", e)
	}
	if e.Time == "" {
		t.Error("Expected timestamp to be stamped")
	}
}

func TestAppendRunWritesToRunsDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ONESOL_LOG_DIR", dir)

	err := AppendRun(RunEntry{
		Outcome:      "CASHED_OUT",
		FinalBalance: 12.45,
		TradeCount:   3,
		CorrectCount: 2,
	})
	if err != nil {
		t.Fatalf("AppendRun failed: %v", err)
	}

	day := time.Now().Local().Format("2006-01-02")
	if _, err := os.Stat(filepath.Join(dir, "runs", day+".txt")); err != nil {
		t.Errorf("Expected runs journal file: %v", err)
	}
}
