package balance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/earnview/portfolio/internal/domain"
)

// Client fetches wallet balances from the balance API with retry on 429.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a balance API client.
func NewClient(baseURL string, maxRetries int, baseDelay time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// balanceRow is the wire format for one asset balance.
type balanceRow struct {
	AssetID    string `json:"assetId"`
	RawBalance string `json:"rawBalance"`
}

// FetchBalances returns the account's balances keyed by canonical asset
// identifier. Rows that fail identifier or amount validation are logged
// and skipped; they never fail the snapshot.
func (c *Client) FetchBalances(ctx context.Context, account string) (domain.BalanceSnapshot, error) {
	body, err := c.get(ctx, "/v1/accounts/"+url.PathEscape(account)+"/balances")
	if err != nil {
		return nil, fmt.Errorf("fetching balances for %s: %w", account, err)
	}

	var rows []balanceRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parsing balance response: %w", err)
	}

	snapshot := make(domain.BalanceSnapshot, len(rows))
	for _, row := range rows {
		id, err := domain.ParseAssetID(row.AssetID)
		if err != nil {
			slog.Warn("skipping balance row with malformed identifier", "assetId", row.AssetID, "error", err)
			continue
		}
		if row.RawBalance == "" || domain.SafeParse(row.RawBalance).IsNegative() {
			slog.Warn("skipping balance row with invalid amount", "assetId", row.AssetID, "rawBalance", row.RawBalance)
			continue
		}
		snapshot[id.Canonical()] = row.RawBalance
	}

	return snapshot, nil
}

// get performs a GET request with exponential backoff on 429.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path

	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("HTTP 429 at %s (attempt %d/%d)", url, attempt+1, c.maxRetries+1)
			if attempt < c.maxRetries {
				delay := c.baseDelay * time.Duration(1<<uint(attempt))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, lastErr
		}

		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(body))
	}

	return nil, lastErr
}
