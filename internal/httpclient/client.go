// Package httpclient provides the outbound HTTP client shared by the
// recognition provider and catalog legs.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Doer is the subset of Client the upstream clients depend on.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client wraps an http.Client with a token bucket limiter. Requests are
// sent at most once; failed calls are reported, never retried.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a rate-limited HTTP client. A non-positive perSecond
// disables limiting.
func NewClient(httpClient *http.Client, perSecond float64) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Do waits for a limiter slot and sends req bound to ctx. When the next slot
// lies past ctx's deadline the error matches context.DeadlineExceeded.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			return nil, fmt.Errorf("rate limiter: %w: %v", context.DeadlineExceeded, err)
		}
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return c.httpClient.Do(req.WithContext(ctx))
}
