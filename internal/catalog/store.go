package catalog

import (
	"sync"

	"github.com/earnview/portfolio/internal/domain"
)

// Snapshot is a normalized slice of catalog state: records keyed by
// canonical identifier plus the insertion-ordered identifier list.
type Snapshot struct {
	ByID map[string]domain.AssetRecord
	IDs  []string
}

// Store holds the session's asset catalog. Keys are always canonical
// identifiers, so two representations of the same asset can never coexist.
// Records are merged in, never deleted, for the lifetime of the store.
type Store struct {
	mu   sync.RWMutex
	byID map[string]domain.AssetRecord
	ids  []string
}

// NewStore creates an empty catalog store.
func NewStore() *Store {
	return &Store{byID: make(map[string]domain.AssetRecord)}
}

// Upsert merges a delta into the store. Merging is last-writer-wins at
// record granularity: an incoming record replaces the stored one wholly for
// that identifier. Unseen identifiers are appended in delta order; repeats
// are skipped, so applying the same delta twice is a no-op the second time.
func (s *Store) Upsert(delta Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range delta.IDs {
		rec, ok := delta.ByID[id]
		if !ok {
			continue
		}
		if _, exists := s.byID[id]; !exists {
			s.ids = append(s.ids, id)
		}
		s.byID[id] = rec
	}
}

// Get returns the record for an asset, if cached.
func (s *Store) Get(id domain.AssetID) (domain.AssetRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id.Canonical()]
	return rec, ok
}

// Snapshot returns a copy of the current state. Callers never observe
// internal maps, so a snapshot stays stable across later upserts.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[string]domain.AssetRecord, len(s.byID))
	for k, v := range s.byID {
		byID[k] = v
	}
	ids := make([]string, len(s.ids))
	copy(ids, s.ids)

	return Snapshot{ByID: byID, IDs: ids}
}

// IDs returns a copy of the canonical identifiers in insertion order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, len(s.ids))
	copy(ids, s.ids)
	return ids
}

// Len returns the number of cached records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
