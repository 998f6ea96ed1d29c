package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bigbadman-lab/onesol/internal/api"
	"github.com/bigbadman-lab/onesol/internal/types"
)

// ErrInvalidEmail means the server rejected the submitted email address.
// The caller should drop the stored email and resubmit without it.
var ErrInvalidEmail = errors.New("invalid email format")

// Client talks to the leaderboard and profile API.
type Client struct {
	http api.Doer
}

// Params configures the leaderboard client.
type Params struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int
	RetryBase     time.Duration
}

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

type apiError struct {
	Error string `json:"error"`
}

// SubmitScore posts a finished run. A 400 naming the email maps to
// ErrInvalidEmail so the caller can retry without it.
func (c *Client) SubmitScore(ctx context.Context, sub types.ScoreSubmission) error {
	req := api.NewRequest(http.MethodPost, "/api/leaderboard/submit").
		WithContext(ctx).
		WithBody(sub)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit score: %w", err)
	}
	if !resp.OK() {
		var e apiError
		_ = json.Unmarshal(resp.Body, &e)
		if resp.StatusCode == http.StatusBadRequest && e.Error == "Invalid email format" {
			return ErrInvalidEmail
		}
		return fmt.Errorf("submit score: HTTP %d: %s", resp.StatusCode, string(resp.Body))
	}
	return nil
}

type todayResponse struct {
	Leaderboard []types.LeaderboardEntry `json:"leaderboard"`
}

// Today fetches today's standings. Accepts either the wrapped
// {"leaderboard": [...]} shape or a bare array.
func (c *Client) Today(ctx context.Context) ([]types.LeaderboardEntry, error) {
	req := api.NewRequest(http.MethodGet, "/api/leaderboard/today").WithContext(ctx)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("fetch leaderboard: HTTP %d", resp.StatusCode)
	}

	var wrapped todayResponse
	if err := resp.JSON(&wrapped); err == nil && wrapped.Leaderboard != nil {
		return wrapped.Leaderboard, nil
	}
	var entries []types.LeaderboardEntry
	if err := resp.JSON(&entries); err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	return entries, nil
}

// Profile fetches the stored profile for a device UUID.
func (c *Client) Profile(ctx context.Context, uuid string) (*types.Profile, error) {
	req := api.NewRequest(http.MethodGet, "/api/user/profile?uuid="+uuid).WithContext(ctx)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("fetch profile: HTTP %d", resp.StatusCode)
	}

	var p types.Profile
	if err := resp.JSON(&p); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return &p, nil
}

// SaveProfile upserts the nickname and email for a device UUID.
func (c *Client) SaveProfile(ctx context.Context, p types.Profile) error {
	req := api.NewRequest(http.MethodPost, "/api/user/profile").
		WithContext(ctx).
		WithBody(p)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if !resp.OK() {
		var e apiError
		_ = json.Unmarshal(resp.Body, &e)
		if resp.StatusCode == http.StatusBadRequest && e.Error == "Invalid email format" {
			return ErrInvalidEmail
		}
		return fmt.Errorf("save profile: HTTP %d: %s", resp.StatusCode, string(resp.Body))
	}
	return nil
}

type deleteRequest struct {
	UUID string `json:"uuid"`
}

// DeleteUser removes all server-side data for a device UUID.
func (c *Client) DeleteUser(ctx context.Context, uuid string) error {
	req := api.NewRequest(http.MethodPost, "/api/user/delete").
		WithContext(ctx).
		WithBody(deleteRequest{UUID: uuid})

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("delete user: HTTP %d", resp.StatusCode)
	}
	return nil
}
