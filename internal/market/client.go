package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/earnview/portfolio/internal/domain"
)

// Client fetches market data from a CoinGecko-style markets API. Responses
// are returned in market-cap rank order, which this layer relies on for the
// ranked id list.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration

	// coinIDs maps provider coin ids to canonical asset identifiers.
	coinIDs map[string]domain.AssetID
}

// NewClient creates a market data client. requestsPerSecond throttles calls
// to stay inside the provider's public rate limits.
func NewClient(baseURL string, coinIDs map[string]domain.AssetID, requestsPerSecond float64, maxRetries int, baseDelay time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		coinIDs:    coinIDs,
	}
}

// marketRow is the provider's wire format for one asset.
type marketRow struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol"`
	CurrentPrice  *float64 `json:"current_price"`
	MarketCapRank *int     `json:"market_cap_rank"`
}

// FetchMarkets fetches current price and rank for all configured coins.
// Rows for unknown coins or with no mappable data are logged and skipped;
// a partial result is not an error.
func (c *Client) FetchMarkets(ctx context.Context) ([]domain.MarketRecord, error) {
	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_asc", c.baseURL)

	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}

	var rows []marketRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parsing market data response: %w", err)
	}

	records := make([]domain.MarketRecord, 0, len(rows))
	for _, row := range rows {
		assetID, ok := c.coinIDs[row.ID]
		if !ok {
			continue
		}

		rec := domain.MarketRecord{ID: assetID, MarketCapRank: row.MarketCapRank}
		if row.CurrentPrice != nil {
			p := decimal.NewFromFloat(*row.CurrentPrice)
			rec.Price = &p
		}
		if rec.Price == nil && rec.MarketCapRank == nil {
			slog.Warn("skipping market row with no usable data", "coin", row.ID)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating market data request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("market data request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading market data response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("market data rate limited (attempt %d/%d)", attempt+1, c.maxRetries+1)
			continue
		}

		return nil, fmt.Errorf("market data HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}
