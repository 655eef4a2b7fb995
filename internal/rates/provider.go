// Package rates fetches the current UAH-per-reference-currency exchange rate
// from the PrivatBank public quote endpoint.
//
// Every failure past this boundary — transport error, bad status, malformed
// body, missing currency entry — comes back wrapping core.ErrRateUnavailable.
// Callers treat an unavailable rate as an expected outcome, not a crash.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vydatky/internal/core"
)

// quote is one entry of the PrivatBank exchange listing.
type quote struct {
	CCY     string `json:"ccy"`
	BaseCCY string `json:"base_ccy"`
	Buy     string `json:"buy"`
	Sale    string `json:"sale"`
}

type Client struct {
	httpClient *http.Client
	url        string
	currency   string
}

// NewClient builds a rate client for the given endpoint and currency code.
// The timeout bounds the whole fetch; a slow upstream fails instead of
// hanging the caller.
func NewClient(url, currency string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		currency:   strings.ToUpper(strings.TrimSpace(currency)),
	}
}

// GetRate fetches the current buy rate for the configured currency. Every
// call performs a fresh fetch; there is no caching or retry.
func (c *Client) GetRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: build request: %v", core.ErrRateUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "Rate fetch failed", "error", err, "url", c.url)
		return 0, fmt.Errorf("%w: fetch quotes: %v", core.ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: quote source returned status %d", core.ErrRateUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("%w: read response: %v", core.ErrRateUnavailable, err)
	}

	var quotes []quote
	if err := json.Unmarshal(body, &quotes); err != nil {
		return 0, fmt.Errorf("%w: malformed quote response: %v", core.ErrRateUnavailable, err)
	}

	for _, q := range quotes {
		if !strings.EqualFold(q.CCY, c.currency) {
			continue
		}
		rate, err := parseRate(q.Buy)
		if err != nil {
			return 0, fmt.Errorf("%w: bad buy rate %q for %s: %v", core.ErrRateUnavailable, q.Buy, c.currency, err)
		}
		slog.DebugContext(ctx, "Fetched exchange rate", "currency", c.currency, "rate", rate)
		return rate, nil
	}

	return 0, fmt.Errorf("%w: currency %s not present in quote response", core.ErrRateUnavailable, c.currency)
}

// parseRate normalizes a decimal comma to a dot before parsing. The upstream
// has been observed to use both separators.
func parseRate(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if rate <= 0 {
		return 0, fmt.Errorf("non-positive rate %v", rate)
	}
	return rate, nil
}
