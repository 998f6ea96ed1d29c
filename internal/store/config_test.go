package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
api:
  base_url: "https://api.example.com"
  timeout_seconds: 10
game:
  starting_balance: 25.0
  bet_options: [0.5, 2.0]
  pnl_cap: 4.0
server:
  port: 9000
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("Unexpected base_url %q", cfg.API.BaseURL)
	}
	if cfg.Game.StartingBalance != 25.0 {
		t.Errorf("Expected starting_balance 25.0, got %f", cfg.Game.StartingBalance)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	// Unset fields pick up defaults.
	if cfg.API.RetryAttempts != 3 {
		t.Errorf("Expected default retry_attempts 3, got %d", cfg.API.RetryAttempts)
	}
	if cfg.Server.DBPath != "catalogd.db" {
		t.Errorf("Expected default db_path, got %q", cfg.Server.DBPath)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate, got %v", err)
	}
	if cfg.Game.StartingBalance != 10.0 {
		t.Errorf("Expected starting_balance 10.0, got %f", cfg.Game.StartingBalance)
	}
	if len(cfg.Game.BetOptions) != 3 {
		t.Errorf("Expected 3 bet options, got %v", cfg.Game.BetOptions)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Game.BetOptions = []float64{0.25, -1}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for negative bet option")
	}

	cfg = Default()
	cfg.Game.StartingBalance = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for zero starting balance")
	}

	cfg = Default()
	cfg.Game.PNLCap = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for negative pnl cap")
	}
}
