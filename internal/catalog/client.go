package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/earnview/portfolio/internal/domain"
)

// Client fetches asset metadata from the asset catalog API. Implements
// AssetProvider.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an asset catalog API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ByNetwork returns the full catalog for a network.
func (c *Client) ByNetwork(ctx context.Context, network string) ([]domain.AssetRecord, error) {
	body, err := c.get(ctx, "/v1/assets?network="+url.QueryEscape(network))
	if err != nil {
		return nil, fmt.Errorf("fetching catalog for network %s: %w", network, err)
	}

	var records []domain.AssetRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("parsing catalog response: %w", err)
	}
	return records, nil
}

// ByTokenID returns a single asset, or nil if the catalog does not know it.
func (c *Client) ByTokenID(ctx context.Context, id domain.AssetID) (*domain.AssetRecord, error) {
	body, err := c.getAllowNotFound(ctx, "/v1/assets/"+url.PathEscape(id.Canonical()))
	if err != nil {
		return nil, fmt.Errorf("fetching asset %s: %w", id.Canonical(), err)
	}
	if body == nil {
		return nil, nil
	}

	var rec domain.AssetRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("parsing asset response: %w", err)
	}
	return &rec, nil
}

// Description returns the long-form description text for an asset.
func (c *Client) Description(ctx context.Context, id domain.AssetID) (string, error) {
	body, err := c.get(ctx, "/v1/assets/"+url.PathEscape(id.Canonical())+"/description")
	if err != nil {
		return "", fmt.Errorf("fetching description for %s: %w", id.Canonical(), err)
	}

	var payload struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parsing description response: %w", err)
	}
	return payload.Description, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	body, err := c.getAllowNotFound(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("HTTP 404 from %s%s", c.baseURL, path)
	}
	return body, nil
}

// getAllowNotFound performs a GET request. A 404 response returns (nil, nil)
// so callers can distinguish "unknown asset" from transport failure.
func (c *Client) getAllowNotFound(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(body))
	}
	return body, nil
}
