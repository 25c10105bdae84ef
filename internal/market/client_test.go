package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/earnview/portfolio/internal/domain"
)

func testCoinIDs() map[string]domain.AssetID {
	return map[string]domain.AssetID{
		"ethereum": domain.NativeAssetID("ethereum", "mainnet"),
		"usd-coin": domain.TokenAssetID("ethereum", "mainnet", domain.ContractTypeERC20, "0xusdc"),
	}
}

func TestFetchMarkets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "ethereum", "symbol": "eth", "current_price": 2500.5, "market_cap_rank": 2},
			{"id": "usd-coin", "symbol": "usdc", "current_price": 1.0, "market_cap_rank": 6},
			{"id": "unmapped-coin", "symbol": "xyz", "current_price": 3.0, "market_cap_rank": 99}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, testCoinIDs(), 100, 1, time.Millisecond)
	records, err := client.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("FetchMarkets: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (unmapped coin skipped)", len(records))
	}
	if records[0].ID.Chain != "ethereum" || records[0].ID.ContractType != domain.ContractTypeNative {
		t.Errorf("first record id = %v", records[0].ID)
	}
	if records[0].Price == nil || records[0].Price.String() != "2500.5" {
		t.Errorf("eth price = %v, want 2500.5", records[0].Price)
	}
	if records[1].MarketCapRank == nil || *records[1].MarketCapRank != 6 {
		t.Errorf("usdc rank = %v, want 6", records[1].MarketCapRank)
	}
}

func TestFetchMarketsNullPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": "ethereum", "symbol": "eth", "current_price": null, "market_cap_rank": 2}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, testCoinIDs(), 100, 1, time.Millisecond)
	records, err := client.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("FetchMarkets: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Price != nil {
		t.Error("price should be absent, not zero")
	}
}

func TestFetchMarketsRetryOn429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": "ethereum", "symbol": "eth", "current_price": 2500, "market_cap_rank": 2}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, testCoinIDs(), 100, 2, time.Millisecond)
	records, err := client.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestFetchMarketsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, testCoinIDs(), 100, 1, time.Millisecond)
	if _, err := client.FetchMarkets(context.Background()); err == nil {
		t.Fatal("expected error on HTTP 500")
	}
}
