package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Client fetches per-vault yield metrics from the earn API and serves them
// from an in-memory table. PricePerShare and FindByVaultToken read whatever
// the last successful Refresh installed.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.RWMutex
	metrics map[string]vaultMetrics
}

type vaultMetrics struct {
	PricePerShare decimal.Decimal
	APY           *decimal.Decimal
}

// metricsRow is the wire format for one vault's metrics.
type metricsRow struct {
	VaultAddress  string           `json:"vaultAddress"`
	PricePerShare string           `json:"pricePerShare"`
	APY           *decimal.Decimal `json:"apy"`
}

// NewClient creates a vault yield client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		metrics:    make(map[string]vaultMetrics),
	}
}

// Refresh fetches current metrics for all vaults and replaces the table.
// Rows with an unparseable price-per-share are logged and skipped.
func (c *Client) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/vaults", nil)
	if err != nil {
		return fmt.Errorf("creating vault metrics request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching vault metrics: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading vault metrics response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vault metrics HTTP %d: %s", resp.StatusCode, string(body))
	}

	var rows []metricsRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("parsing vault metrics response: %w", err)
	}

	table := make(map[string]vaultMetrics, len(rows))
	for _, row := range rows {
		pps, err := decimal.NewFromString(row.PricePerShare)
		if err != nil {
			slog.Warn("skipping vault metrics row with bad price-per-share", "vault", row.VaultAddress, "value", row.PricePerShare)
			continue
		}
		table[row.VaultAddress] = vaultMetrics{PricePerShare: pps, APY: row.APY}
	}

	c.mu.Lock()
	c.metrics = table
	c.mu.Unlock()
	return nil
}

// PricePerShare returns the vault's raw exchange rate from the last refresh.
func (c *Client) PricePerShare(ctx context.Context, vaultAddress string) (decimal.Decimal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.metrics[vaultAddress]
	if !ok {
		return decimal.Zero, fmt.Errorf("no metrics for vault %s", vaultAddress)
	}
	return m.PricePerShare, nil
}

// FindByVaultToken returns the yield terms for a vault token, if known.
func (c *Client) FindByVaultToken(vaultAddress string) (Terms, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.metrics[vaultAddress]
	if !ok || m.APY == nil {
		return Terms{}, false
	}
	return Terms{APY: *m.APY}, true
}
