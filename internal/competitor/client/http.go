package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shoplite/pricing-service/internal/competitor"
)

// HTTPClient talks to the external pricing feed. Server-side failures are
// retried twice with exponential backoff; anything else fails immediately.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) FetchPrices(ctx context.Context) ([]competitor.Price, error) {
	var prices []competitor.Price

	operation := func() error {
		var err error
		prices, err = c.fetch(ctx)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return prices, nil
}

func (c *HTTPClient) fetch(ctx context.Context) ([]competitor.Price, error) {
	u, err := url.Parse(c.baseURL + "/prices")
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
		var prices []competitor.Price
		if err := json.NewDecoder(res.Body).Decode(&prices); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode prices: %w", err))
		}
		return prices, nil
	case res.StatusCode >= 500:
		// Retryable.
		return nil, fmt.Errorf("pricing feed unavailable: %s", res.Status)
	default:
		return nil, backoff.Permanent(fmt.Errorf("unexpected response from pricing feed: %s", res.Status))
	}
}
