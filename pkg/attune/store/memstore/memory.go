// Package memstore is an in-memory implementation of store.Store for tests.
package memstore

import (
	"encoding/json"
	"sync"

	"github.com/cognicore/attune/pkg/attune/anonymize"
	"github.com/cognicore/attune/pkg/attune/lexicon"
	"github.com/cognicore/attune/pkg/attune/signal"
	"github.com/cognicore/attune/pkg/attune/store"
)

// Store keeps every tier in maps guarded by one mutex.
type Store struct {
	mu         sync.Mutex
	shared     lexicon.Shared
	users      map[string]*lexicon.UserOverrides
	audit      []store.LogEntry
	staging    []store.StagingRecord
	anonMaps   map[string][]anonymize.Map
	discovered map[string]map[string]signal.Signal
	catalog    []store.CatalogEntry

	// FailAudit makes AppendAudit return failErr, for exercising the
	// log-degraded path.
	FailAudit bool
}

type auditFailure struct{}

func (auditFailure) Error() string { return "memstore: audit append disabled" }

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		shared:     make(lexicon.Shared),
		users:      make(map[string]*lexicon.UserOverrides),
		anonMaps:   make(map[string][]anonymize.Map),
		discovered: make(map[string]map[string]signal.Signal),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SeedCatalog installs catalog entries for dedup tests.
func (s *Store) SeedCatalog(entries []store.CatalogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = append([]store.CatalogEntry{}, entries...)
}

// SharedLexicon returns a deep copy of the shared tier.
func (s *Store) SharedLexicon() (lexicon.Shared, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(lexicon.Shared, len(s.shared))
	for k, v := range s.shared {
		out[k] = v
	}
	return out, nil
}

// PutSharedLexicon replaces the shared tier.
func (s *Store) PutSharedLexicon(lex lexicon.Shared) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shared = make(lexicon.Shared, len(lex))
	for k, v := range lex {
		s.shared[k] = v
	}
	return nil
}

// UserOverrides returns a deep copy of the user's record, fresh if unknown.
func (s *Store) UserOverrides(userHash string) (*lexicon.UserOverrides, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userHash]
	if !ok {
		return lexicon.NewUserOverrides(userHash), nil
	}
	return copyOverrides(u), nil
}

// PutUserOverrides replaces the user's record.
func (s *Store) PutUserOverrides(u *lexicon.UserOverrides) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.UserID] = copyOverrides(u)
	return nil
}

// AppendAudit records one audit entry.
func (s *Store) AppendAudit(e store.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAudit {
		return auditFailure{}
	}
	s.audit = append(s.audit, e)
	return nil
}

// AuditCount returns the number of audit entries.
func (s *Store) AuditCount() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.audit)), nil
}

// ReadAudit streams entries in append order.
func (s *Store) ReadAudit(fn func(e store.LogEntry) error) error {
	s.mu.Lock()
	entries := append([]store.LogEntry{}, s.audit...)
	s.mu.Unlock()

	for _, e := range entries {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// AppendStaging records one rejected candidate.
func (s *Store) AppendStaging(r store.StagingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staging = append(s.staging, r)
	return nil
}

// Staging returns a copy of the staged rejects.
func (s *Store) Staging() []store.StagingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.StagingRecord{}, s.staging...)
}

// AppendAnonymizationMap records one map under the user's hash.
func (s *Store) AppendAnonymizationMap(userHash string, m anonymize.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anonMaps[userHash] = append(s.anonMaps[userHash], m)
	return nil
}

// AnonymizationMaps returns the maps stored for one user.
func (s *Store) AnonymizationMaps(userHash string) []anonymize.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]anonymize.Map{}, s.anonMaps[userHash]...)
}

// PutDiscoveredSignals replaces the user's discovered dimensions.
func (s *Store) PutDiscoveredSignals(userHash string, signals map[string]signal.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]signal.Signal, len(signals))
	for k, v := range signals {
		out[k] = v
	}
	s.discovered[userHash] = out
	return nil
}

// Catalog returns the seeded catalog.
func (s *Store) Catalog() ([]store.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.CatalogEntry{}, s.catalog...), nil
}

// copyOverrides deep-copies via JSON; cheap at test scale and immune to
// aliasing bugs as the record type grows.
func copyOverrides(u *lexicon.UserOverrides) *lexicon.UserOverrides {
	b, err := json.Marshal(u)
	if err != nil {
		return lexicon.NewUserOverrides(u.UserID)
	}
	out := &lexicon.UserOverrides{}
	if err := json.Unmarshal(b, out); err != nil {
		return lexicon.NewUserOverrides(u.UserID)
	}
	if out.Signals == nil {
		out.Signals = make(map[string]*lexicon.SignalOverride)
	}
	return out
}
