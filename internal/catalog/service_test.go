package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/earnview/portfolio/internal/domain"
)

type fakeProvider struct {
	mu           sync.Mutex
	assets       map[string]domain.AssetRecord
	descriptions map[string]string
	failDesc     map[string]error
	byTokenErr   error
	descCalls    int
}

func (f *fakeProvider) ByNetwork(ctx context.Context, network string) ([]domain.AssetRecord, error) {
	var out []domain.AssetRecord
	for _, rec := range f.assets {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeProvider) ByTokenID(ctx context.Context, id domain.AssetID) (*domain.AssetRecord, error) {
	if f.byTokenErr != nil {
		return nil, f.byTokenErr
	}
	rec, ok := f.assets[id.Canonical()]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeProvider) Description(ctx context.Context, id domain.AssetID) (string, error) {
	f.mu.Lock()
	f.descCalls++
	f.mu.Unlock()

	key := id.Canonical()
	if err, ok := f.failDesc[key]; ok {
		return "", err
	}
	return f.descriptions[key], nil
}

func newFakeProvider(records ...domain.AssetRecord) *fakeProvider {
	f := &fakeProvider{
		assets:       make(map[string]domain.AssetRecord),
		descriptions: make(map[string]string),
		failDesc:     make(map[string]error),
	}
	for _, rec := range records {
		key := rec.ID.Canonical()
		f.assets[key] = rec
		f.descriptions[key] = "about " + rec.Symbol
	}
	return f
}

func TestFetchOneUpserts(t *testing.T) {
	rec := testRecord("AAA")
	svc := NewService(newFakeProvider(rec), NewStore())

	got, err := svc.FetchOne(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if got.Description != "about AAA" {
		t.Errorf("Description = %q, want %q", got.Description, "about AAA")
	}

	cached, ok := svc.Store().Get(rec.ID)
	if !ok {
		t.Fatal("record not upserted into store")
	}
	if cached.Description != "about AAA" {
		t.Error("store holds record without fetched description")
	}
}

func TestFetchOneProviderErrorLeavesCacheUnchanged(t *testing.T) {
	rec := testRecord("AAA")
	provider := newFakeProvider(rec)
	provider.byTokenErr = errors.New("provider down")
	svc := NewService(provider, NewStore())

	_, err := svc.FetchOne(context.Background(), rec.ID)
	if err == nil {
		t.Fatal("expected error")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if fe.ID != rec.ID {
		t.Errorf("FetchError.ID = %v, want %v", fe.ID, rec.ID)
	}
	if svc.Store().Len() != 0 {
		t.Error("failed fetch must not touch the cache")
	}
}

func TestFetchOneNotFound(t *testing.T) {
	svc := NewService(newFakeProvider(), NewStore())

	unknown := domain.TokenAssetID("ethereum", "mainnet", domain.ContractTypeERC20, "0xunknown")
	_, err := svc.FetchOne(context.Background(), unknown)
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if svc.Store().Len() != 0 {
		t.Error("not-found fetch must not touch the cache")
	}
}

func TestFetchOneDescriptionFailureStillUpserts(t *testing.T) {
	rec := testRecord("AAA")
	provider := newFakeProvider(rec)
	provider.failDesc[rec.ID.Canonical()] = errors.New("description service down")
	svc := NewService(provider, NewStore())

	got, err := svc.FetchOne(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if got.Description != "" {
		t.Errorf("Description = %q, want empty", got.Description)
	}
	if svc.Store().Len() != 1 {
		t.Error("asset should be cached even when its description is unavailable")
	}
}

func TestFetchDescriptionsPartialFailureIsolation(t *testing.T) {
	var records []domain.AssetRecord
	for _, sym := range []string{"AAA", "BBB", "CCC", "DDD", "EEE"} {
		records = append(records, testRecord(sym))
	}
	provider := newFakeProvider(records...)
	failing := records[2]
	provider.failDesc[failing.ID.Canonical()] = errors.New("forced failure")

	store := NewStore()
	store.Upsert(Normalize(records))
	svc := NewService(provider, store)

	ids := make([]domain.AssetID, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}

	failures := svc.FetchDescriptions(context.Background(), ids)
	if len(failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(failures))
	}
	if _, ok := failures[failing.ID.Canonical()]; !ok {
		t.Errorf("missing failure entry for %s", failing.ID.Canonical())
	}

	for _, rec := range records {
		cached, _ := store.Get(rec.ID)
		if rec.ID == failing.ID {
			if cached.Description != "" {
				t.Error("failed fetch must leave its cache entry unchanged")
			}
			continue
		}
		if cached.Description != "about "+rec.Symbol {
			t.Errorf("%s description = %q, want %q", rec.Symbol, cached.Description, "about "+rec.Symbol)
		}
	}
}

func TestFetchDescriptionsRequiresCatalogEntry(t *testing.T) {
	rec := testRecord("AAA")
	svc := NewService(newFakeProvider(rec), NewStore())

	failures := svc.FetchDescriptions(context.Background(), []domain.AssetID{rec.ID})
	if len(failures) != 1 {
		t.Fatalf("failures = %d, want 1 (entry not in catalog yet)", len(failures))
	}
}

func TestLoadAllDoesNotWriteStore(t *testing.T) {
	rec := testRecord("AAA")
	svc := NewService(newFakeProvider(rec), NewStore())

	snap, err := svc.LoadAll(context.Background(), "mainnet")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(snap.IDs) != 1 {
		t.Errorf("snapshot ids = %d, want 1", len(snap.IDs))
	}
	if svc.Store().Len() != 0 {
		t.Error("LoadAll must return a snapshot without writing the store")
	}

	svc.Store().Upsert(snap)
	if svc.Store().Len() != 1 {
		t.Error("caller-driven merge failed")
	}
}

func TestConcurrentFetchOneDifferentIDs(t *testing.T) {
	var records []domain.AssetRecord
	for i := range 8 {
		records = append(records, testRecord(fmt.Sprintf("T%02d", i)))
	}
	svc := NewService(newFakeProvider(records...), NewStore())

	var wg sync.WaitGroup
	for _, rec := range records {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.FetchOne(context.Background(), rec.ID); err != nil {
				t.Errorf("FetchOne(%s): %v", rec.ID.Canonical(), err)
			}
		}()
	}
	wg.Wait()

	if svc.Store().Len() != len(records) {
		t.Errorf("store has %d records, want %d", svc.Store().Len(), len(records))
	}
}
