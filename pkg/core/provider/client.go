// Package provider fetches statement bundles and quotes from the market
// data vendor. Responses are decoded leniently, cached in memory and
// fetched under a rate limit so a burst of valuation requests cannot
// hammer the vendor.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"stockval/pkg/core/config"
	"stockval/pkg/core/statement"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	cache      *gocache.Cache
	ttl        time.Duration
}

func New(cfg config.ProviderConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		cache:      gocache.New(ttl, 2*ttl),
		ttl:        ttl,
	}
}

// fetch performs one rate-limited GET and returns the body plus content
// type. Callers decide how to decode.
func (c *Client) fetch(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("vendor returned status %d for %s", resp.StatusCode, path)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// FetchStatement retrieves one statement table for a symbol. Vendors
// occasionally serve maintenance pages as HTML tables; those are parsed
// rather than rejected.
func (c *Client) FetchStatement(ctx context.Context, symbol string, name statement.StatementName, quarterly bool, lang string) (*statement.Table, error) {
	period := "year"
	if quarterly {
		period = "quarter"
	}
	cacheKey := fmt.Sprintf("stmt:%s:%s:%s:%s", symbol, name, period, lang)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(*statement.Table), nil
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("period", period)
	query.Set("lang", lang)

	body, contentType, err := c.fetch(ctx, "/financials/"+string(name), query)
	if err != nil {
		return nil, err
	}

	var table *statement.Table
	if strings.Contains(contentType, "text/html") {
		table, err = ParseHTMLTable(strings.NewReader(string(body)))
	} else {
		table, err = ParseRecords(body)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s for %s: %w", name, symbol, err)
	}
	table.Name = string(name)
	if name == statement.Ratios {
		categorizeRatios(table)
	}

	c.cache.Set(cacheKey, table, c.ttl)
	return table, nil
}

// FetchPriceBoard retrieves the live price board row for a symbol.
func (c *Client) FetchPriceBoard(ctx context.Context, symbol string) (*statement.Table, error) {
	cacheKey := "board:" + symbol
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(*statement.Table), nil
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	body, _, err := c.fetch(ctx, "/price-board", query)
	if err != nil {
		return nil, err
	}
	table, err := ParseRecords(body)
	if err != nil {
		return nil, fmt.Errorf("decode price board for %s: %w", symbol, err)
	}
	table.Name = string(statement.PriceBoard)

	c.cache.Set(cacheKey, table, c.ttl)
	return table, nil
}

// FetchBundle assembles the full statement bundle for a symbol. Individual
// statement failures degrade the bundle instead of failing it, matching
// how partial vendor outages actually present. When the English income and
// balance tables both come back empty the fetch retries in Vietnamese,
// which covers tickers that never got a translated statement set.
func (c *Client) FetchBundle(ctx context.Context, symbol string, quarterly bool) (*statement.Bundle, error) {
	bundle := &statement.Bundle{Symbol: symbol, Quarterly: quarterly}

	lang := "en"
	c.fillStatements(ctx, bundle, quarterly, lang)
	if bundle.Income.Empty() && bundle.Balance.Empty() {
		fmt.Printf("[PROVIDER] %s has no English statements, retrying in Vietnamese\n", symbol)
		c.fillStatements(ctx, bundle, quarterly, "vn")
	}

	if board, err := c.FetchPriceBoard(ctx, symbol); err == nil {
		bundle.PriceBoard = board
	} else {
		fmt.Printf("[PROVIDER] Price board unavailable for %s: %v\n", symbol, err)
	}

	if !bundle.HasStatements() {
		return nil, fmt.Errorf("no statement data available for %s", symbol)
	}
	return bundle, nil
}

func (c *Client) fillStatements(ctx context.Context, bundle *statement.Bundle, quarterly bool, lang string) {
	for _, name := range []statement.StatementName{statement.Income, statement.Balance, statement.CashFlow, statement.Ratios} {
		table, err := c.FetchStatement(ctx, bundle.Symbol, name, quarterly, lang)
		if err != nil {
			fmt.Printf("[PROVIDER] %s %s fetch failed: %v\n", bundle.Symbol, name, err)
			continue
		}
		bundle.SetStatement(name, table)
	}
}
