package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/earnview/portfolio/internal/portfolio"
	"github.com/earnview/portfolio/internal/row"
	"github.com/earnview/portfolio/internal/snapshot"
)

type fakePortfolio struct {
	err error
}

func (f *fakePortfolio) Refresh(_ context.Context, account string) (portfolio.View, error) {
	if f.err != nil {
		return portfolio.View{}, f.err
	}
	return portfolio.View{
		Account:         account,
		Rows:            []row.Row{{ID: "eth:mainnet", Symbol: "ETH", CryptoAmount: "2"}},
		TotalVaultValue: decimal.Zero,
		GeneratedAt:     time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}, nil
}

type fakeRepo struct {
	latest *snapshot.Snapshot
	byDate map[string]*snapshot.Snapshot
	saved  int
}

func (f *fakeRepo) Save(_ context.Context, _ int, _ time.Time, _ json.RawMessage) error {
	f.saved++
	return nil
}

func (f *fakeRepo) GetLatest(_ context.Context, _ string) (*snapshot.Snapshot, error) {
	if f.latest == nil {
		return nil, snapshot.ErrNotFound
	}
	return f.latest, nil
}

func (f *fakeRepo) GetByDate(_ context.Context, _ string, date time.Time) (*snapshot.Snapshot, error) {
	s, ok := f.byDate[date.Format("2006-01-02")]
	if !ok {
		return nil, snapshot.ErrNotFound
	}
	return s, nil
}

func (f *fakeRepo) List(_ context.Context, _ string, limit int) ([]snapshot.Snapshot, error) {
	if f.latest == nil {
		return nil, nil
	}
	return []snapshot.Snapshot{*f.latest}, nil
}

func (f *fakeRepo) EnsureAccount(_ context.Context, _, _ string) (int, error) {
	return 1, nil
}

func (f *fakeRepo) GetAccountID(_ context.Context, _ string) (int, error) {
	return 1, nil
}

func newTestServer(repo *fakeRepo, apiKey string) *httptest.Server {
	pf := &fakePortfolio{}
	snapshots := snapshot.NewService(pf, repo)
	srv := NewServer("0", snapshots, pf, "0xdefault", apiKey)
	return httptest.NewServer(srv.Handler)
}

func TestGetPortfolio(t *testing.T) {
	ts := newTestServer(&fakeRepo{}, "")
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/portfolio?account=0xabc")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var view portfolio.View
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if view.Account != "0xabc" {
		t.Errorf("Account = %q, want 0xabc", view.Account)
	}
	if len(view.Rows) != 1 || view.Rows[0].Symbol != "ETH" {
		t.Errorf("Rows = %+v", view.Rows)
	}
}

func TestGetPortfolioDefaultAccount(t *testing.T) {
	ts := newTestServer(&fakeRepo{}, "")
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/portfolio")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var view portfolio.View
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if view.Account != "0xdefault" {
		t.Errorf("Account = %q, want 0xdefault", view.Account)
	}
}

func TestGetLatestSnapshotNotFound(t *testing.T) {
	ts := newTestServer(&fakeRepo{}, "")
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/snapshots/latest?account=0xabc")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetSnapshotByDate(t *testing.T) {
	stored := &snapshot.Snapshot{
		ID:           7,
		SnapshotDate: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Data:         json.RawMessage(`{"account":"0xabc"}`),
	}
	repo := &fakeRepo{byDate: map[string]*snapshot.Snapshot{"2026-08-28": stored}}
	ts := newTestServer(repo, "")
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/snapshots/2026-08-28?account=0xabc")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got snapshot.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.ID != 7 {
		t.Errorf("ID = %d, want 7", got.ID)
	}
}

func TestGetSnapshotByDateInvalidDate(t *testing.T) {
	ts := newTestServer(&fakeRepo{}, "")
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/snapshots/not-a-date")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGenerateSnapshotRequiresAuth(t *testing.T) {
	repo := &fakeRepo{}
	ts := newTestServer(repo, "secret-key")
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/snapshots/generate?account=0xabc", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", resp.StatusCode)
	}
	if repo.saved != 0 {
		t.Error("snapshot generated without auth")
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/snapshots/generate?account=0xabc", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST with token: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("status with token = %d, want 200", resp2.StatusCode)
	}
	if repo.saved != 1 {
		t.Errorf("saved = %d, want 1", repo.saved)
	}
}
