// Package ebay provides a rate-limited client for the eBay Browse API.
package ebay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/maggierui/listing-scanner-sub000/internal/common"
	"github.com/maggierui/listing-scanner-sub000/internal/service"
)

const (
	// DefaultBaseURL is the production Browse API root.
	DefaultBaseURL = "https://api.ebay.com/buy/browse/v1"

	defaultTimeout = 15 * time.Second

	// Calls beyond this many per day are logged, never blocked. The Browse
	// API application quota is 5000/day; warn early enough to react.
	defaultDailyQuota = 4500
)

// APIError is a non-2xx marketplace response, carrying the status and body
// for diagnostics.
type APIError struct {
	Body       string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Config holds marketplace client configuration.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	DailyQuota int64
}

// Client implements service.MarketplaceClient against the Browse API.
type Client struct {
	httpClient *http.Client
	tokens     service.TokenSource
	limiter    service.Limiter
	logger     *slog.Logger
	baseURL    string
	timeout    time.Duration
	dailyQuota int64
	calls      atomic.Int64
}

// NewClient creates a marketplace client. The limiter gates every outbound
// call; pass a no-op limiter to disable pacing in tests.
func NewClient(cfg Config, tokens service.TokenSource, limiter service.Limiter) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("limiter is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.DailyQuota <= 0 {
		cfg.DailyQuota = defaultDailyQuota
	}

	return &Client{
		httpClient: &http.Client{},
		tokens:     tokens,
		limiter:    limiter,
		logger:     slog.Default().With("component", "ebay"),
		baseURL:    cfg.BaseURL,
		timeout:    cfg.Timeout,
		dailyQuota: cfg.DailyQuota,
	}, nil
}

// SearchItems runs one keyword query capped at limit results.
func (c *Client) SearchItems(ctx context.Context, phrase string, limit int) ([]service.ItemSummary, error) {
	if phrase == "" {
		return nil, fmt.Errorf("search phrase cannot be empty")
	}

	query := url.Values{}
	query.Set("q", phrase)
	query.Set("limit", strconv.Itoa(limit))

	return c.search(ctx, query)
}

// SellerItems returns up to limit of one seller's own listings.
func (c *Client) SellerItems(ctx context.Context, seller string, limit int) ([]service.ItemSummary, error) {
	if seller == "" {
		return nil, fmt.Errorf("seller cannot be empty")
	}

	query := url.Values{}
	query.Set("filter", fmt.Sprintf("sellers:{%s}", seller))
	query.Set("limit", strconv.Itoa(limit))

	return c.search(ctx, query)
}

// CallCount reports how many API calls this process has made.
func (c *Client) CallCount() int64 {
	return c.calls.Load()
}

func (c *Client) search(ctx context.Context, query url.Values) ([]service.ItemSummary, error) {
	body, err := c.get(ctx, "/item_summary/search", query)
	if err != nil {
		return nil, err
	}

	var resp browseSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	items := make([]service.ItemSummary, 0, len(resp.ItemSummaries))
	for _, raw := range resp.ItemSummaries {
		items = append(items, mapItemSummary(raw))
	}

	return items, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain bearer token: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	count := c.calls.Add(1)
	if count > c.dailyQuota {
		c.logger.Warn("Approaching daily API quota",
			"calls", count,
			"quota", c.dailyQuota)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w after %s: %v", common.ErrTimeout, c.timeout, err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", common.ErrRateLimited, string(body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func mapItemSummary(raw browseItemSummary) service.ItemSummary {
	price, err := strconv.ParseFloat(raw.Price.Value, 64)
	if err != nil {
		price = 0
	}

	return service.ItemSummary{
		ItemID:        raw.ItemID,
		Title:         raw.Title,
		Condition:     raw.Condition,
		Currency:      raw.Price.Currency,
		URL:           raw.ItemWebURL,
		Seller:        raw.Seller.Username,
		Price:         price,
		FeedbackScore: raw.Seller.FeedbackScore,
	}
}
