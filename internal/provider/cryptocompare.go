package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/mtlprog/bestpath/internal/domain"
)

// CryptoCompareClient fetches spot prices from the CryptoCompare min-api.
type CryptoCompareClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
	maxRetries int
}

// NewCryptoCompareClient creates a new CryptoCompare API client. A non-positive rps disables
// client-side rate limiting; a negative maxRetries is treated as 0.
func NewCryptoCompareClient(baseURL, apiKey string, rps float64, maxRetries int, retryDelay time.Duration) *CryptoCompareClient {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &CryptoCompareClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(limit, 1),
		retryDelay: retryDelay,
		maxRetries: max(maxRetries, 0),
	}
}

// FetchPrice returns how many units of pair.Target one unit of pair.Source buys.
func (c *CryptoCompareClient) FetchPrice(ctx context.Context, pair domain.Pair) (domain.Amount, error) {
	u := fmt.Sprintf("%s/data/price?fsym=%s&tsyms=%s",
		c.baseURL, url.QueryEscape(string(pair.Source)), url.QueryEscape(string(pair.Target)))

	body, err := c.fetchWithRetry(ctx, u)
	if err != nil {
		return domain.Amount{}, err
	}
	return parsePrice(body, pair.Target)
}

// parsePrice extracts the target price from a body like {"USDT":12.789}.
func parsePrice(body []byte, target domain.Currency) (domain.Amount, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return domain.Amount{}, fmt.Errorf("%w: parsing CryptoCompare response: %w", ErrNoPrice, err)
	}

	num, ok := raw[string(target)].(json.Number)
	if !ok {
		return domain.Amount{}, fmt.Errorf("%w: %s missing in %s", ErrNoPrice, target, bytes.TrimSpace(body))
	}
	price, err := domain.ParseAmount(num.String())
	if err != nil {
		return domain.Amount{}, fmt.Errorf("%w: %w", ErrNoPrice, err)
	}
	if price.IsZero() {
		return domain.Amount{}, fmt.Errorf("%w: zero %s price", ErrNoPrice, target)
	}
	return price, nil
}

func (c *CryptoCompareClient) fetchWithRetry(ctx context.Context, u string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			baseDelay := c.retryDelay
			if baseDelay == 0 {
				baseDelay = time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for CryptoCompare rate limit: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("creating CryptoCompare request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Apikey "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("CryptoCompare request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading CryptoCompare response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("CryptoCompare rate limited (attempt %d/%d)", attempt+1, c.maxRetries+1)
			continue
		}

		return nil, fmt.Errorf("CryptoCompare HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}
