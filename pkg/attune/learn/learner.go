// Package learn orchestrates per-exchange learning: audit log first, then
// per-user overrides, then quality-gated promotion to the shared lexicon.
package learn

import (
	"fmt"
	"log"
	"time"

	"github.com/cognicore/attune/pkg/attune/anonymize"
	"github.com/cognicore/attune/pkg/attune/gate"
	"github.com/cognicore/attune/pkg/attune/signal"
	"github.com/cognicore/attune/pkg/attune/store"
)

// Result reports what one exchange contributed.
type Result struct {
	Success         bool     `json:"success"`
	LearnedToUser   bool     `json:"learned_to_user"`
	LearnedToShared bool     `json:"learned_to_shared"`
	SharedAdded     []string `json:"shared_added,omitempty"`
	Reason          string   `json:"reason"`
	SignalsCount    int      `json:"signals_count"`

	// LogWriteFailed is set when the audit append failed. Learning still
	// proceeds best-effort, but callers must see the degradation.
	LogWriteFailed bool   `json:"log_write_failed,omitempty"`
	LogWriteError  string `json:"log_write_error,omitempty"`
}

// Config configures a Learner.
type Config struct {
	Store     store.Store
	Extractor *signal.Extractor
	Gate      *gate.Gate
	Promoter  Promoter

	// Anonymizer, when set, produces and persists an anonymization map per
	// exchange and stamps the log entry with its level and map ID.
	Anonymizer *anonymize.Anonymizer

	// MaxContextsPerSignal bounds per-user example contexts (default 10).
	MaxContextsPerSignal int

	// Now overrides the log clock. Defaults to time.Now.
	Now func() time.Time

	// Debugf receives diagnostic lines. Defaults to log.Printf.
	Debugf func(format string, args ...any)
}

// Learner owns all writes to the lexicon store and the audit log.
type Learner struct {
	store       store.Store
	extractor   *signal.Extractor
	gate        *gate.Gate
	promoter    Promoter
	anonymizer  *anonymize.Anonymizer
	maxContexts int
	now         func() time.Time
	debugf      func(format string, args ...any)
}

// New creates a Learner.
func New(cfg Config) *Learner {
	l := &Learner{
		store:       cfg.Store,
		extractor:   cfg.Extractor,
		gate:        cfg.Gate,
		promoter:    cfg.Promoter,
		anonymizer:  cfg.Anonymizer,
		maxContexts: cfg.MaxContextsPerSignal,
		now:         cfg.Now,
		debugf:      cfg.Debugf,
	}
	if l.maxContexts <= 0 {
		l.maxContexts = 10
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.debugf == nil {
		l.debugf = log.Printf
	}
	if l.promoter == nil {
		l.promoter = NewSharedPromoter(cfg.Store, l.debugf)
	}
	return l
}

// LearnFromExchange runs the full per-exchange sequence. hits may be nil, in
// which case extraction runs here; glyphNames annotate the log entry.
//
// Ordering: the audit entry is written before any lexicon mutation. A failed
// append does not abort learning, it is surfaced in the result.
func (l *Learner) LearnFromExchange(userHash, userText, reply string, hits []signal.Hit, glyphNames []string) (Result, []signal.Hit) {
	if len(hits) == 0 {
		hits = l.extractor.Extract(userText)
	}

	decision := l.gate.Evaluate(userText, reply, hits)

	res := Result{SignalsCount: len(hits), Reason: decision.Reason}

	_, mapID := l.AttachAnonymization(userHash, userText)

	if err := l.writeAudit(userHash, reply, hits, glyphNames, decision, mapID); err != nil {
		res.LogWriteFailed = true
		res.LogWriteError = err.Error()
		l.debugf("learn: audit append failed, continuing best-effort: %v", err)
	}

	if err := l.learnToUser(userHash, hits, decision); err != nil {
		l.debugf("learn: user overrides for %s: %v", userHash, err)
	} else {
		res.LearnedToUser = len(hits) > 0
	}

	if decision.OK {
		cands := l.promoter.Collect(userText, hits)
		kept := cands[:0]
		for _, c := range cands {
			if l.promoter.Score(c) > 0 {
				kept = append(kept, c)
			}
		}
		added, err := l.promoter.Persist(kept)
		if err != nil {
			l.debugf("learn: shared promotion: %v", err)
		} else if len(added) > 0 {
			res.LearnedToShared = true
			res.SharedAdded = added
		}
	}

	res.Success = true
	return res, hits
}

// writeAudit builds and appends the privacy-safe log entry. Only derived
// fields are logged; the anonymization map, when enabled, is persisted
// separately under the user's hash.
func (l *Learner) writeAudit(userHash, reply string, hits []signal.Hit, glyphNames []string, decision gate.Decision, mapID string) error {
	entry := store.LogEntry{
		Timestamp:          l.now().UTC(),
		UserIDHash:         userHash,
		Signals:            signalNames(hits),
		Gates:              []string{decision.Reason},
		GlyphNames:         glyphNames,
		AIResponseLength:   len(reply),
		AnonymizationLevel: string(anonymize.LevelMinimal),
		AnonymizationMapID: mapID,
	}

	if l.anonymizer != nil {
		entry.AnonymizationLevel = string(l.anonymizer.Level())
	}

	return l.store.AppendAudit(entry)
}

// AttachAnonymization runs the anonymizer over the user text, persists the
// map, and returns the anonymized text and map ID. Returns the input
// unchanged when anonymization is disabled.
func (l *Learner) AttachAnonymization(userHash, userText string) (string, string) {
	if l.anonymizer == nil {
		return userText, ""
	}
	masked, m := l.anonymizer.Anonymize(userText)
	if err := l.store.AppendAnonymizationMap(userHash, m); err != nil {
		l.debugf("learn: anonymization map for %s: %v", userHash, err)
	}
	return masked, m.ID
}

func (l *Learner) learnToUser(userHash string, hits []signal.Hit, decision gate.Decision) error {
	u, err := l.store.UserOverrides(userHash)
	if err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}
	u.Observe(hits, decision.Reason, l.maxContexts)
	u.ApplyGateOutcome(decision.OK)
	if err := l.store.PutUserOverrides(u); err != nil {
		return fmt.Errorf("persist overrides: %w", err)
	}
	return nil
}

func signalNames(hits []signal.Hit) []string {
	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.Signal
	}
	return names
}
