package api

import (
	"time"

	"github.com/bigbadman-lab/onesol/internal/logger"
)

// retryDoer retries transient failures with bounded exponential backoff.
// Transport errors and 5xx responses are retried; 4xx responses are returned
// to the caller unchanged since they carry domain meaning.
type retryDoer struct {
	next      Doer
	attempts  int
	baseDelay time.Duration
}

// WithRetry wraps a Doer with retry-on-transient-failure behavior. attempts
// is the total number of tries (minimum 1); baseDelay doubles after each
// failed attempt.
func WithRetry(next Doer, attempts int, baseDelay time.Duration) Doer {
	if attempts < 1 {
		attempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &retryDoer{next: next, attempts: attempts, baseDelay: baseDelay}
}

func (r *retryDoer) Do(req *Request) (*Response, error) {
	var (
		resp *Response
		err  error
	)
	delay := r.baseDelay
	for i := 0; i < r.attempts; i++ {
		resp, err = r.next.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if i == r.attempts-1 {
			break
		}

		logger.Debug(req.ctx, "Retrying request",
			"method", req.Method,
			"url", req.URL,
			"attempt", i+1,
			"delay", delay,
			"error", err)

		select {
		case <-req.ctx.Done():
			return nil, req.ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return resp, err
}
