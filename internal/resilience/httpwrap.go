package resilience

import (
	"context"
	"net/http"
	"time"
)

// HTTPClient wraps an http.Client with circuit breaking and bounded retries.
// Used for outbound probes against third party endpoints such as product
// image URLs.
type HTTPClient struct {
	Client   *http.Client
	Breaker  *Breaker
	Retries  int
	BaseWait time.Duration
}

// NewHTTPClient builds a wrapped client with a per-request timeout.
func NewHTTPClient(timeout time.Duration, breaker *Breaker) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		Client:   &http.Client{Timeout: timeout},
		Breaker:  breaker,
		Retries:  2,
		BaseWait: 100 * time.Millisecond,
	}
}

// Do executes the request honoring the breaker state. Requests are retried on
// transport errors and 5xx responses with exponential backoff.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if c.Breaker != nil && !c.Breaker.Allow(ctx) {
		return nil, ErrOpenCircuit
	}

	attempts := c.Retries + 1
	if attempts < 1 {
		attempts = 1
	}

	var resp *http.Response
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err = c.Client.Do(req)
		success := err == nil && resp.StatusCode < http.StatusInternalServerError
		if success {
			c.report(ctx, true)
			return resp, nil
		}
		if attempt == attempts {
			break
		}
		if resp != nil {
			resp.Body.Close()
		}
		select {
		case <-ctx.Done():
			c.report(ctx, false)
			return nil, ctx.Err()
		case <-time.After(Backoff(c.BaseWait, attempt, 0.2)):
		}
	}

	c.report(ctx, false)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) report(ctx context.Context, success bool) {
	if c.Breaker != nil {
		c.Breaker.Report(ctx, success)
	}
}

var _ interface {
	Do(*http.Request) (*http.Response, error)
} = (*HTTPClient)(nil)

// Doer is the minimal outbound HTTP contract consumed by probes.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}
