package market

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/earnview/portfolio/internal/domain"
)

// Store caches market data records keyed by canonical asset identifier.
// Entries expire after the configured TTL, so stale prices fall back to the
// placeholder path instead of rendering as fresh. The rank order of the last
// refresh is kept alongside the entries.
type Store struct {
	entries *gocache.Cache

	mu        sync.RWMutex
	rankedIDs []string
}

// NewStore creates a market data store with the given entry TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: gocache.New(ttl, 2*ttl),
	}
}

// Replace installs a freshly fetched record set. The input order is the
// provider's market-cap rank order and is captured as the ranked id list.
func (s *Store) Replace(records []domain.MarketRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries.Flush()
	ranked := make([]string, 0, len(records))
	for _, rec := range records {
		key := rec.ID.Canonical()
		s.entries.SetDefault(key, rec)
		if rec.MarketCapRank != nil {
			ranked = append(ranked, key)
		}
	}
	s.rankedIDs = ranked
}

// Get returns the market record for an asset, if present and not expired.
func (s *Store) Get(id domain.AssetID) (domain.MarketRecord, bool) {
	v, ok := s.entries.Get(id.Canonical())
	if !ok {
		return domain.MarketRecord{}, false
	}
	rec, ok := v.(domain.MarketRecord)
	return rec, ok
}

// ByID returns a copy of all live records keyed by canonical identifier.
func (s *Store) ByID() map[string]domain.MarketRecord {
	items := s.entries.Items()
	out := make(map[string]domain.MarketRecord, len(items))
	for k, item := range items {
		if rec, ok := item.Object.(domain.MarketRecord); ok {
			out[k] = rec
		}
	}
	return out
}

// RankedIDs returns the identifiers of ranked assets from the last refresh,
// ascending by market-cap rank.
func (s *Store) RankedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.rankedIDs))
	copy(out, s.rankedIDs)
	return out
}
