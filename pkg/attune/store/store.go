// Package store defines the persistence seam for the learning core. The
// canonical implementation is the JSON/JSONL filestore; memstore backs tests.
// The audit log is the source of truth: every other file is rebuildable from
// it in principle, so lost-last-write on the coalesced JSON files is
// acceptable.
package store

import (
	"time"

	"github.com/cognicore/attune/pkg/attune/anonymize"
	"github.com/cognicore/attune/pkg/attune/lexicon"
	"github.com/cognicore/attune/pkg/attune/signal"
)

// Store persists the learning core's state.
type Store interface {
	Close() error

	// Shared lexicon. A corrupt or missing file loads as empty.
	SharedLexicon() (lexicon.Shared, error)
	PutSharedLexicon(lex lexicon.Shared) error

	// Per-user overrides. Unknown users load as a fresh record.
	UserOverrides(userHash string) (*lexicon.UserOverrides, error)
	PutUserOverrides(u *lexicon.UserOverrides) error

	// Audit log: append-only, one entry per exchange, durable per write.
	AppendAudit(e LogEntry) error
	AuditCount() (int64, error)
	ReadAudit(fn func(e LogEntry) error) error

	// Staging for near-duplicate rejects: append-only.
	AppendStaging(r StagingRecord) error

	// Anonymization maps, kept separate from the log.
	AppendAnonymizationMap(userHash string, m anonymize.Map) error

	// Discovered dimensions for one user.
	PutDiscoveredSignals(userHash string, signals map[string]signal.Signal) error

	// Catalog of prior composites, read-only to the core. Load failures
	// yield an empty catalog.
	Catalog() ([]CatalogEntry, error)
}

// LogEntry is one line of the append-only audit log. It carries only derived
// fields; raw user or assistant text never appears here.
type LogEntry struct {
	Timestamp          time.Time `json:"timestamp"`
	UserIDHash         string    `json:"user_id_hash"`
	Signals            []string  `json:"signals"`
	Gates              []string  `json:"gates"`
	GlyphNames         []string  `json:"glyph_names,omitempty"`
	AIResponseLength   int       `json:"ai_response_length"`
	AnonymizationLevel string    `json:"anonymization_level"`
	AnonymizationMapID string    `json:"anonymization_map_id,omitempty"`
}

// StagingRecord is one rejected candidate, appended to the staging stream
// instead of the catalog.
type StagingRecord struct {
	Source      string         `json:"source"`
	EventType   string         `json:"event_type"`
	Payload     map[string]any `json:"payload"`
	Confidence  float64        `json:"confidence"`
	MatchReason string         `json:"match_reason"`
}

// CatalogEntry is one prior composite as read from the catalog file. Unknown
// fields in the file are ignored; these are the ones dedup needs.
type CatalogEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	CoreSignals []string `json:"core_signals"`
	Keywords    []string `json:"keywords"`
}
