package learn

import (
	"testing"
	"time"

	"github.com/cognicore/attune/pkg/attune/anonymize"
	"github.com/cognicore/attune/pkg/attune/gate"
	"github.com/cognicore/attune/pkg/attune/lexicon"
	"github.com/cognicore/attune/pkg/attune/signal"
	"github.com/cognicore/attune/pkg/attune/store"
	"github.com/cognicore/attune/pkg/attune/store/memstore"
)

func discard(string, ...any) {}

func newTestLearner(ms *memstore.Store, opts ...func(*Config)) *Learner {
	cfg := Config{
		Store:     ms,
		Extractor: signal.NewExtractor(signal.Config{Debugf: discard}),
		Gate:      gate.New(),
		Debugf:    discard,
		Now:       func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
	}
	for _, o := range opts {
		o(&cfg)
	}
	return New(cfg)
}

const qualityText = "I'm feeling inspired by the beauty of nature. The sunset was absolutely transcendent today."
const warmReply = "what a luminous way to meet the evening"

func TestQualityExchangeLearnsBothTiers(t *testing.T) {
	ms := memstore.New()
	l := newTestLearner(ms)

	res, hits := l.LearnFromExchange("abc123", qualityText, warmReply, nil, nil)

	if !res.Success {
		t.Fatal("result not successful")
	}
	if res.Reason != gate.ReasonQuality {
		t.Fatalf("reason = %q", res.Reason)
	}
	if !res.LearnedToUser || !res.LearnedToShared {
		t.Errorf("learned user=%v shared=%v, want both", res.LearnedToUser, res.LearnedToShared)
	}
	if len(hits) == 0 || res.SignalsCount != len(hits) {
		t.Errorf("hits = %d, result count = %d", len(hits), res.SignalsCount)
	}

	shared, _ := ms.SharedLexicon()
	for _, kw := range []string{"inspired", "beauty", "sunset"} {
		if _, ok := shared[kw]; !ok {
			t.Errorf("shared lexicon missing %q", kw)
		}
	}

	u, _ := ms.UserOverrides("abc123")
	if u.Signals["nature"] == nil || u.Signals["nature"].Frequency != 1 {
		t.Errorf("user overrides = %+v", u.Signals)
	}
	if diff := u.TrustScore - 0.6; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("trust = %v, want 0.6 after one pass", u.TrustScore)
	}
}

func TestGatedExchangeStillLearnsUserTier(t *testing.T) {
	ms := memstore.New()
	l := newTestLearner(ms)

	res, _ := l.LearnFromExchange("abc123",
		"I hate how the sunset makes me feel", "that sounds heavy", nil, nil)

	if !res.Success {
		t.Fatal("gated exchange should still report success")
	}
	if res.Reason != "toxic_keyword_hate" {
		t.Fatalf("reason = %q", res.Reason)
	}
	if res.LearnedToShared {
		t.Error("gated exchange reached the shared tier")
	}

	shared, _ := ms.SharedLexicon()
	if len(shared) != 0 {
		t.Errorf("shared lexicon grew: %v", shared)
	}

	u, _ := ms.UserOverrides("abc123")
	if u.Signals["nature"] == nil {
		t.Error("user tier did not record the signal")
	}
	if diff := u.TrustScore - 0.48; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("trust = %v, want 0.48 after one failure", u.TrustScore)
	}

	// The audit entry carries the veto reason.
	var gates []string
	ms.ReadAudit(func(e store.LogEntry) error { gates = e.Gates; return nil })
	if len(gates) != 1 || gates[0] != "toxic_keyword_hate" {
		t.Errorf("audit gates = %v", gates)
	}
}

func TestAuditEntryIsWrittenBeforeLexicon(t *testing.T) {
	ms := memstore.New()
	var order []string
	tracker := &orderTracker{Store: ms, order: &order}

	l := New(Config{
		Store:     tracker,
		Extractor: signal.NewExtractor(signal.Config{Debugf: discard}),
		Gate:      gate.New(),
		Debugf:    discard,
	})

	l.LearnFromExchange("abc123", qualityText, warmReply, nil, nil)

	if len(order) == 0 || order[0] != "audit" {
		t.Fatalf("write order = %v, want audit first", order)
	}
	for _, op := range order[1:] {
		if op == "audit" {
			t.Fatalf("audit written twice: %v", order)
		}
	}
}

// orderTracker records the order of mutating store calls.
type orderTracker struct {
	*memstore.Store
	order *[]string
}

func (o *orderTracker) AppendAudit(e store.LogEntry) error {
	*o.order = append(*o.order, "audit")
	return o.Store.AppendAudit(e)
}

func (o *orderTracker) PutUserOverrides(u *lexicon.UserOverrides) error {
	*o.order = append(*o.order, "user")
	return o.Store.PutUserOverrides(u)
}

func (o *orderTracker) PutSharedLexicon(lex lexicon.Shared) error {
	*o.order = append(*o.order, "shared")
	return o.Store.PutSharedLexicon(lex)
}

func TestAuditFailureIsSurfacedAndLearningProceeds(t *testing.T) {
	ms := memstore.New()
	ms.FailAudit = true
	l := newTestLearner(ms)

	res, _ := l.LearnFromExchange("abc123", qualityText, warmReply, nil, nil)

	if !res.LogWriteFailed {
		t.Fatal("log failure not surfaced")
	}
	if res.LogWriteError == "" {
		t.Error("missing log error text")
	}
	if !res.Success || !res.LearnedToUser || !res.LearnedToShared {
		t.Errorf("learning did not proceed: %+v", res)
	}

	shared, _ := ms.SharedLexicon()
	if len(shared) == 0 {
		t.Error("shared lexicon empty despite best-effort learning")
	}
}

func TestTrustScoreCapsAcrossExchanges(t *testing.T) {
	ms := memstore.New()
	l := newTestLearner(ms)

	for i := 0; i < 10; i++ {
		l.LearnFromExchange("abc123", qualityText, warmReply, nil, nil)
	}

	u, _ := ms.UserOverrides("abc123")
	if u.TrustScore != lexicon.TrustCeiling {
		t.Errorf("trust = %v, want capped at %v", u.TrustScore, lexicon.TrustCeiling)
	}
	if u.Contributions != 10 {
		t.Errorf("contributions = %d", u.Contributions)
	}
}

func TestLocalPromoterKeepsSharedTierClosed(t *testing.T) {
	ms := memstore.New()
	l := newTestLearner(ms, func(c *Config) { c.Promoter = LocalPromoter{} })

	res, _ := l.LearnFromExchange("abc123", qualityText, warmReply, nil, nil)

	if res.LearnedToShared {
		t.Error("local promoter reported shared learning")
	}
	if !res.LearnedToUser {
		t.Error("user tier learning lost")
	}
	shared, _ := ms.SharedLexicon()
	if len(shared) != 0 {
		t.Errorf("shared lexicon grew under local promoter: %v", shared)
	}
}

func TestAnonymizationMapPersistedAndStamped(t *testing.T) {
	ms := memstore.New()
	l := newTestLearner(ms, func(c *Config) {
		c.Anonymizer = anonymize.New(anonymize.Options{})
	})

	l.LearnFromExchange("abc123",
		"Michelle and I watched the sunset and felt pure joy together", warmReply, nil, nil)

	maps := ms.AnonymizationMaps("abc123")
	if len(maps) != 1 {
		t.Fatalf("anonymization maps = %d, want 1", len(maps))
	}
	if maps[0].IdentifierGlyphs["Michelle"] == "" {
		t.Errorf("map did not record the name: %+v", maps[0].IdentifierGlyphs)
	}

	var entry store.LogEntry
	ms.ReadAudit(func(e store.LogEntry) error { entry = e; return nil })
	if entry.AnonymizationMapID != maps[0].ID {
		t.Errorf("log map id = %q, want %q", entry.AnonymizationMapID, maps[0].ID)
	}
	if entry.AnonymizationLevel != string(anonymize.LevelFull) {
		t.Errorf("log level = %q", entry.AnonymizationLevel)
	}
}

func TestProvidedHitsSkipExtraction(t *testing.T) {
	ms := memstore.New()
	l := newTestLearner(ms)

	hits := []signal.Hit{{Signal: "joy", Confidence: 0.8, MatchedKeywords: []string{"delight"}}}
	res, got := l.LearnFromExchange("abc123", "pure delight in the morning air", warmReply, hits, nil)

	if len(got) != 1 || got[0].Signal != "joy" {
		t.Errorf("hits = %v, want the provided slice", got)
	}
	if res.SignalsCount != 1 {
		t.Errorf("signals count = %d", res.SignalsCount)
	}
}
