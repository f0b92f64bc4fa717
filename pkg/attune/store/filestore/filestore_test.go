package filestore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/attune/pkg/attune/anonymize"
	"github.com/cognicore/attune/pkg/attune/lexicon"
	"github.com/cognicore/attune/pkg/attune/signal"
	"github.com/cognicore/attune/pkg/attune/store"
)

func discard(string, ...any) {}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	s, err := New(root, discard)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s, root
}

func TestNewCreatesLayout(t *testing.T) {
	_, root := newTestStore(t)

	for _, dir := range []string{
		"lexicon/user_overrides",
		"logs/anonymization_maps",
		"catalog",
		"learning",
		"signals/discovered",
	} {
		info, err := os.Stat(filepath.Join(root, dir))
		if err != nil || !info.IsDir() {
			t.Errorf("missing directory %s: %v", dir, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "logs", "hybrid_learning_log.jsonl")); err != nil {
		t.Errorf("audit log not created: %v", err)
	}
}

func TestSharedLexiconRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	empty, err := s.SharedLexicon()
	if err != nil || len(empty) != 0 {
		t.Fatalf("fresh shared lexicon = %v, %v", empty, err)
	}

	lex := lexicon.Shared{
		"sunset": {Signal: "🌿", Voltage: lexicon.VoltageHigh, Tone: "nature", Source: lexicon.SourceLearned, Confidence: 0.75},
		"felt seen": {
			Signal: "💗", Voltage: lexicon.VoltageHigh, Tone: "love",
			Source: lexicon.SourceLearnedPhrase, Confidence: 0.8, PhraseLength: 2,
		},
	}
	if err := s.PutSharedLexicon(lex); err != nil {
		t.Fatal(err)
	}

	got, err := s.SharedLexicon()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("reloaded %d entries, want 2", len(got))
	}
	if got["felt seen"].PhraseLength != 2 {
		t.Errorf("phrase entry = %+v", got["felt seen"])
	}
}

func TestCorruptSharedLexiconLoadsEmptyAndStaysOnDisk(t *testing.T) {
	s, root := newTestStore(t)
	path := filepath.Join(root, "lexicon", "shared_lexicon.json")

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := s.SharedLexicon()
	if err != nil {
		t.Fatalf("corrupt file should load as empty, got error %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("corrupt file loaded entries: %v", got)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "{not json" {
		t.Errorf("corrupt file was touched: %q, %v", data, err)
	}
}

func TestUserOverridesRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	fresh, err := s.UserOverrides("abc123")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.TrustScore != lexicon.TrustInitial {
		t.Errorf("fresh trust = %v", fresh.TrustScore)
	}

	fresh.Observe([]signal.Hit{
		{Signal: "joy", Confidence: 0.8, MatchedKeywords: []string{"delight"}},
	}, "quality_exchange", 10)
	fresh.ApplyGateOutcome(true)
	if err := s.PutUserOverrides(fresh); err != nil {
		t.Fatal(err)
	}

	got, err := s.UserOverrides("abc123")
	if err != nil {
		t.Fatal(err)
	}
	if got.Signals["joy"] == nil || got.Signals["joy"].Frequency != 1 {
		t.Errorf("reloaded overrides = %+v", got.Signals)
	}
	if got.Contributions != 1 {
		t.Errorf("contributions = %d", got.Contributions)
	}
}

func TestAuditAppendReadCount(t *testing.T) {
	s, _ := newTestStore(t)

	for i := 0; i < 3; i++ {
		err := s.AppendAudit(store.LogEntry{
			Timestamp:  time.Now().UTC(),
			UserIDHash: "abc123",
			Signals:    []string{"joy"},
			Gates:      []string{"quality_exchange"},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.AuditCount()
	if err != nil || n != 3 {
		t.Fatalf("count = %d, %v", n, err)
	}

	var seen int
	err = s.ReadAudit(func(e store.LogEntry) error {
		seen++
		if e.UserIDHash != "abc123" {
			t.Errorf("entry hash = %q", e.UserIDHash)
		}
		return nil
	})
	if err != nil || seen != 3 {
		t.Errorf("read %d entries, %v", seen, err)
	}
}

func TestReadAuditSkipsUnparseableLines(t *testing.T) {
	s, root := newTestStore(t)

	if err := s.AppendAudit(store.LogEntry{UserIDHash: "u1"}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "logs", "hybrid_learning_log.jsonl")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("garbage line\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if err := s.AppendAudit(store.LogEntry{UserIDHash: "u2"}); err != nil {
		t.Fatal(err)
	}

	var hashes []string
	err = s.ReadAudit(func(e store.LogEntry) error {
		hashes = append(hashes, e.UserIDHash)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(hashes) != 2 || hashes[0] != "u1" || hashes[1] != "u2" {
		t.Errorf("hashes = %v, want [u1 u2]", hashes)
	}
}

func TestReadAuditPropagatesCallbackError(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.AppendAudit(store.LogEntry{UserIDHash: "u1"}); err != nil {
		t.Fatal(err)
	}

	stop := errors.New("stop")
	if err := s.ReadAudit(func(store.LogEntry) error { return stop }); !errors.Is(err, stop) {
		t.Errorf("err = %v, want stop", err)
	}
}

func TestStagingAppend(t *testing.T) {
	s, root := newTestStore(t)

	rec := store.StagingRecord{
		Source:      "pattern_detector",
		EventType:   "near_duplicate",
		Payload:     map[string]any{"name": "Felt Seen"},
		Confidence:  0.9,
		MatchReason: "exact_catalog:felt seen",
	}
	if err := s.AppendStaging(rec); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendStaging(rec); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(root, "learning", "near_duplicate_staging.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Errorf("staging lines = %d, want 2", lines)
	}
}

func TestAnonymizationMapAccumulates(t *testing.T) {
	s, root := newTestStore(t)

	for i := 0; i < 2; i++ {
		m := anonymize.Map{
			ID:               "map-" + string(rune('a'+i)),
			Timestamp:        time.Now().UTC(),
			IdentifierGlyphs: map[string]string{"Michelle": "The Mirror"},
		}
		if err := s.AppendAnonymizationMap("abc123", m); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(filepath.Join(root, "logs", "anonymization_maps", "abc123.json"))
	if err != nil {
		t.Fatal(err)
	}
	var maps []anonymize.Map
	if err := json.Unmarshal(data, &maps); err != nil {
		t.Fatal(err)
	}
	if len(maps) != 2 {
		t.Errorf("maps = %d, want 2", len(maps))
	}
}

func TestCatalogMissingIsEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	entries, err := s.Catalog()
	if err != nil || entries != nil {
		t.Errorf("missing catalog = %v, %v, want nil, nil", entries, err)
	}
}

func TestCatalogLoads(t *testing.T) {
	s, root := newTestStore(t)

	body := `[{"id":"01","name":"Felt Seen","symbol":"💗🌱","core_signals":["love","vulnerability"]}]`
	path := filepath.Join(root, "catalog", "composites.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "Felt Seen" {
		t.Errorf("catalog = %+v", entries)
	}
}

func TestPutDiscoveredSignals(t *testing.T) {
	s, root := newTestStore(t)

	sigs := map[string]signal.Signal{
		"memory_lake": {
			Name: "memory_lake", Keywords: []string{"memory", "lake"},
			BaseIntensity: 0.5, Origin: signal.OriginLearned,
		},
	}
	if err := s.PutDiscoveredSignals("abc123", sigs); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "signals", "discovered", "abc123_signals.json")); err != nil {
		t.Errorf("discovered file missing: %v", err)
	}
}
