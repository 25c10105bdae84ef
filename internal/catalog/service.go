package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/earnview/portfolio/internal/domain"
)

// descriptionFetchLimit bounds concurrent description fetches per batch.
const descriptionFetchLimit = 4

// AssetProvider supplies raw catalog data from the external asset service.
type AssetProvider interface {
	// ByNetwork returns the full catalog for a network.
	ByNetwork(ctx context.Context, network string) ([]domain.AssetRecord, error)
	// ByTokenID returns a single asset, or nil if the provider does not know it.
	ByTokenID(ctx context.Context, id domain.AssetID) (*domain.AssetRecord, error)
	// Description returns the long-form description text for an asset.
	Description(ctx context.Context, id domain.AssetID) (string, error)
}

// FetchError reports a failed provider call for one asset. The cache is
// left unchanged for that identifier.
type FetchError struct {
	ID  domain.AssetID
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching asset %s: %v", e.ID.Canonical(), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Service populates the catalog store from an AssetProvider.
type Service struct {
	provider AssetProvider
	store    *Store
}

// NewService creates a catalog Service. Both dependencies are required.
func NewService(provider AssetProvider, store *Store) *Service {
	if provider == nil {
		panic("catalog.NewService: provider is nil")
	}
	if store == nil {
		panic("catalog.NewService: store is nil")
	}
	return &Service{provider: provider, store: store}
}

// Store exposes the underlying store for read-side consumers.
func (s *Service) Store() *Store { return s.store }

// LoadAll fetches the full catalog for a network and returns a fresh
// normalized snapshot. It does not write to the store: the caller decides
// when to merge, keeping cache writes out of fetch paths.
func (s *Service) LoadAll(ctx context.Context, network string) (Snapshot, error) {
	records, err := s.provider.ByNetwork(ctx, network)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading catalog for network %s: %w", network, err)
	}
	return Normalize(records), nil
}

// FetchOne fetches a single asset plus its description and merges it into
// the store. On any failure the store is left unchanged and a FetchError
// is returned.
func (s *Service) FetchOne(ctx context.Context, id domain.AssetID) (domain.AssetRecord, error) {
	rec, err := s.provider.ByTokenID(ctx, id)
	if err != nil {
		return domain.AssetRecord{}, &FetchError{ID: id, Err: err}
	}
	if rec == nil {
		return domain.AssetRecord{}, &FetchError{ID: id, Err: fmt.Errorf("asset not found")}
	}
	if err := validate(*rec); err != nil {
		return domain.AssetRecord{}, &FetchError{ID: id, Err: err}
	}

	record := *rec
	desc, err := s.provider.Description(ctx, id)
	if err != nil {
		// Description is decoration; the asset itself is still usable.
		slog.Warn("asset description unavailable", "asset", id.Canonical(), "error", err)
	} else {
		record.Description = desc
	}

	s.store.Upsert(single(record))
	return record, nil
}

// FetchDescriptions fetches descriptions for cached assets with per-item
// failure isolation: one failing fetch never blocks or voids the others.
// Returns the errors keyed by canonical identifier; successes are already
// merged into the store when it returns.
func (s *Service) FetchDescriptions(ctx context.Context, ids []domain.AssetID) map[string]error {
	var mu sync.Mutex
	failures := make(map[string]error)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(descriptionFetchLimit)

	for _, id := range ids {
		g.Go(func() error {
			key := id.Canonical()

			rec, ok := s.store.Get(id)
			if !ok {
				// Description fetch is sequenced after the catalog entry exists.
				mu.Lock()
				failures[key] = &FetchError{ID: id, Err: fmt.Errorf("asset not in catalog")}
				mu.Unlock()
				return nil
			}

			desc, err := s.provider.Description(gctx, id)
			if err != nil {
				slog.Warn("description fetch failed, skipping", "asset", key, "error", err)
				mu.Lock()
				failures[key] = &FetchError{ID: id, Err: err}
				mu.Unlock()
				return nil
			}

			rec.Description = desc
			s.store.Upsert(single(rec))
			return nil
		})
	}

	// Goroutines always return nil; Wait only observes ctx cancellation.
	_ = g.Wait()
	return failures
}

// Normalize converts raw provider records into a snapshot keyed by
// canonical identifier. Malformed records are rejected at the boundary,
// logged and skipped; duplicates collapse to the last occurrence.
func Normalize(records []domain.AssetRecord) Snapshot {
	snap := Snapshot{ByID: make(map[string]domain.AssetRecord, len(records))}
	for _, rec := range records {
		if err := validate(rec); err != nil {
			slog.Warn("rejecting malformed catalog record", "asset", rec.ID.Canonical(), "error", err)
			continue
		}
		key := rec.ID.Canonical()
		if _, seen := snap.ByID[key]; !seen {
			snap.IDs = append(snap.IDs, key)
		}
		snap.ByID[key] = rec
	}
	return snap
}

func validate(rec domain.AssetRecord) error {
	if _, err := domain.ParseAssetID(rec.ID.Canonical()); err != nil {
		return err
	}
	if rec.Symbol == "" {
		return fmt.Errorf("record has empty symbol")
	}
	if rec.Precision < 0 {
		return fmt.Errorf("record has negative precision %d", rec.Precision)
	}
	return nil
}

func single(rec domain.AssetRecord) Snapshot {
	key := rec.ID.Canonical()
	return Snapshot{
		ByID: map[string]domain.AssetRecord{key: rec},
		IDs:  []string{key},
	}
}
