package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/bigbadman-lab/onesol/internal/interfaces"
)

// HealthProbe checks device connectivity with a lightweight HEAD request
// against the catalog's health endpoint. Short timeout so the caller fails
// fast instead of hanging on a dead link.
type HealthProbe struct {
	baseURL string
	client  *http.Client
}

var _ interfaces.Probe = (*HealthProbe)(nil)

func NewHealthProbe(baseURL string) *HealthProbe {
	return &HealthProbe{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (p *HealthProbe) Online(ctx context.Context) bool {
	if p.head(ctx, p.baseURL+"/api/health") {
		return true
	}
	// Health endpoint may not exist; any answer from the base URL counts.
	return p.head(ctx, p.baseURL)
}

func (p *HealthProbe) head(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// AlwaysOnline is the probe for in-process catalogs.
type AlwaysOnline struct{}

func (AlwaysOnline) Online(context.Context) bool { return true }
