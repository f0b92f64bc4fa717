package memstore

import (
	"testing"

	"github.com/cognicore/attune/pkg/attune/lexicon"
	"github.com/cognicore/attune/pkg/attune/signal"
	"github.com/cognicore/attune/pkg/attune/store"
)

func TestUserOverridesAreIsolatedCopies(t *testing.T) {
	s := New()

	u, err := s.UserOverrides("abc123")
	if err != nil {
		t.Fatal(err)
	}
	u.Observe([]signal.Hit{
		{Signal: "joy", Confidence: 0.8, MatchedKeywords: []string{"delight"}},
	}, "quality_exchange", 10)
	if err := s.PutUserOverrides(u); err != nil {
		t.Fatal(err)
	}

	// Mutating the put record must not affect the stored copy.
	u.Signals["joy"].Frequency = 999

	got, err := s.UserOverrides("abc123")
	if err != nil {
		t.Fatal(err)
	}
	if got.Signals["joy"].Frequency != 1 {
		t.Errorf("stored frequency = %d, want 1", got.Signals["joy"].Frequency)
	}
}

func TestSharedLexiconCopies(t *testing.T) {
	s := New()

	lex := lexicon.Shared{"sunset": {Tone: "nature", Confidence: 0.75}}
	if err := s.PutSharedLexicon(lex); err != nil {
		t.Fatal(err)
	}
	lex["sunset"] = lexicon.SharedEntry{Tone: "mutated"}

	got, err := s.SharedLexicon()
	if err != nil {
		t.Fatal(err)
	}
	if got["sunset"].Tone != "nature" {
		t.Errorf("stored entry mutated: %+v", got["sunset"])
	}
}

func TestFailAuditFlag(t *testing.T) {
	s := New()

	if err := s.AppendAudit(store.LogEntry{UserIDHash: "u1"}); err != nil {
		t.Fatal(err)
	}

	s.FailAudit = true
	if err := s.AppendAudit(store.LogEntry{UserIDHash: "u2"}); err == nil {
		t.Fatal("expected append failure")
	}

	n, err := s.AuditCount()
	if err != nil || n != 1 {
		t.Errorf("count = %d, %v, want 1", n, err)
	}
}

func TestCatalogSeeding(t *testing.T) {
	s := New()

	s.SeedCatalog([]store.CatalogEntry{{ID: "01", Name: "Felt Seen"}})

	got, err := s.Catalog()
	if err != nil || len(got) != 1 || got[0].Name != "Felt Seen" {
		t.Errorf("catalog = %+v, %v", got, err)
	}
}
