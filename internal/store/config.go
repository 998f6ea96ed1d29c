package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		RetryAttempts  int    `yaml:"retry_attempts"`
		RetryBaseMS    int    `yaml:"retry_base_ms"`
	} `yaml:"api"`
	Game struct {
		StartingBalance float64   `yaml:"starting_balance"`
		BetOptions      []float64 `yaml:"bet_options"`
		// PNLCap of 0 means "derive from the embedded catalog".
		PNLCap float64 `yaml:"pnl_cap"`
	} `yaml:"game"`
	Keystore struct {
		Path string `yaml:"path"`
	} `yaml:"keystore"`
	Server struct {
		Port          uint16 `yaml:"port"`
		DBPath        string `yaml:"db_path"`
		RetentionDays int    `yaml:"retention_days"`
		RetentionCron string `yaml:"retention_cron"`
	} `yaml:"server"`
}

func (c *Config) Validate() error {
	if c.Game.StartingBalance <= 0 {
		return fmt.Errorf("game.starting_balance must be positive, got %.2f", c.Game.StartingBalance)
	}
	if len(c.Game.BetOptions) == 0 {
		return fmt.Errorf("game.bet_options cannot be empty")
	}
	for _, b := range c.Game.BetOptions {
		if b <= 0 {
			return fmt.Errorf("game.bet_options must all be positive, got %.2f", b)
		}
	}
	if c.Game.PNLCap < 0 {
		return fmt.Errorf("game.pnl_cap cannot be negative, got %.2f", c.Game.PNLCap)
	}
	if c.API.RetryAttempts < 1 {
		return fmt.Errorf("api.retry_attempts must be at least 1, got %d", c.API.RetryAttempts)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// Default returns a Config with every default applied, for running without a
// config.yaml.
func Default() *Config {
	var c Config
	applyDefaults(&c)
	return &c
}

func applyDefaults(c *Config) {
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 30
	}
	if c.API.RetryAttempts == 0 {
		c.API.RetryAttempts = 3
	}
	if c.API.RetryBaseMS == 0 {
		c.API.RetryBaseMS = 500
	}
	if c.Game.StartingBalance == 0 {
		c.Game.StartingBalance = 10.0
	}
	if len(c.Game.BetOptions) == 0 {
		c.Game.BetOptions = []float64{0.25, 1.0, 3.0}
	}
	if c.Keystore.Path == "" {
		c.Keystore.Path = "onesol-keystore.db"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8787
	}
	if c.Server.DBPath == "" {
		c.Server.DBPath = "catalogd.db"
	}
	if c.Server.RetentionDays == 0 {
		c.Server.RetentionDays = 30
	}
	if c.Server.RetentionCron == "" {
		// Five past midnight, local time.
		c.Server.RetentionCron = "0 5 0 * * *"
	}
}
