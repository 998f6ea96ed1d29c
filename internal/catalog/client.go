package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/bigbadman-lab/onesol/internal/api"
	"github.com/bigbadman-lab/onesol/internal/interfaces"
	"github.com/bigbadman-lab/onesol/internal/logger"
	"github.com/bigbadman-lab/onesol/internal/types"
)

// Client talks to the remote trade catalog API.
type Client struct {
	http api.Doer
}

var _ interfaces.Catalog = (*Client)(nil)

// Params configures the catalog client.
type Params struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int
	RetryBase     time.Duration
}

// NewClient builds a catalog client with retry-on-transient-failure.
func NewClient(p Params) *Client {
	opts := []api.ClientOption{
		api.WithBaseURL(p.BaseURL),
		api.WithLogging(true),
	}
	if p.Timeout > 0 {
		opts = append(opts, api.WithTimeout(p.Timeout))
	}
	return &Client{
		http: api.WithRetry(api.NewClient(opts...), p.RetryAttempts, p.RetryBase),
	}
}

type randomTradeRequest struct {
	ExcludeIDs []string `json:"excludeIds"`
}

type apiError struct {
	Error string `json:"error"`
}

// RandomTrade fetches one trade not in excludeIDs. The server's 404
// "No trades available" maps to ErrNoTrades, as does a response whose ID is
// already excluded.
func (c *Client) RandomTrade(ctx context.Context, excludeIDs []string) (*types.Trade, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	req := api.NewRequest(http.MethodPost, "/api/trades/random").
		WithContext(ctx).
		WithBody(randomTradeRequest{ExcludeIDs: excludeIDs})

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch random trade: %w", err)
	}
	if !resp.OK() {
		var e apiError
		_ = json.Unmarshal(resp.Body, &e)
		if resp.StatusCode == http.StatusNotFound && e.Error == "No trades available" {
			return nil, ErrNoTrades
		}
		return nil, fmt.Errorf("fetch random trade: HTTP %d: %s", resp.StatusCode, string(resp.Body))
	}

	var trade types.Trade
	if err := resp.JSON(&trade); err != nil {
		return nil, fmt.Errorf("fetch random trade: %w", err)
	}
	if trade.ID == "" {
		return nil, fmt.Errorf("fetch random trade: %w", ErrInvalidTrade)
	}
	if slices.Contains(excludeIDs, trade.ID) {
		logger.Warn(ctx, "Server returned an excluded trade, treating as exhaustion",
			"trade_id", trade.ID, "excluded", len(excludeIDs))
		return nil, ErrNoTrades
	}
	return &trade, nil
}

// TradeByID fetches a single trade for result display.
func (c *Client) TradeByID(ctx context.Context, id string) (*types.Trade, error) {
	req := api.NewRequest(http.MethodGet, "/api/trades/"+id).WithContext(ctx)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trade %s: %w", id, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch trade %s: %w", id, ErrNotFound)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("fetch trade %s: HTTP %d", id, resp.StatusCode)
	}

	var trade types.Trade
	if err := resp.JSON(&trade); err != nil {
		return nil, fmt.Errorf("fetch trade %s: %w", id, err)
	}
	if trade.ID == "" {
		return nil, fmt.Errorf("fetch trade %s: %w", id, ErrInvalidTrade)
	}
	return &trade, nil
}
