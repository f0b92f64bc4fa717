package learn

import (
	"log"

	"github.com/cognicore/attune/pkg/attune/ingest"
	"github.com/cognicore/attune/pkg/attune/lexicon"
	"github.com/cognicore/attune/pkg/attune/signal"
	"github.com/cognicore/attune/pkg/attune/store"
)

// Promoter is the capability seam for shared-tier promotion. The full
// promoter writes to the community lexicon; the local promoter is the
// variant used when no shared lexicon is desired.
type Promoter interface {
	// Collect produces the candidate entries for a quality exchange.
	Collect(userText string, hits []signal.Hit) []lexicon.Candidate

	// Score grades one candidate; non-positive scores are discarded.
	Score(c lexicon.Candidate) float64

	// Persist folds surviving candidates into the shared tier and returns
	// the surface forms actually added.
	Persist(cands []lexicon.Candidate) ([]string, error)
}

// SharedPromoter promotes candidates into the store-backed shared lexicon.
type SharedPromoter struct {
	store  store.Store
	tok    *ingest.Tokenizer
	debugf func(format string, args ...any)
}

// NewSharedPromoter creates the full promoter.
func NewSharedPromoter(st store.Store, debugf func(format string, args ...any)) *SharedPromoter {
	if debugf == nil {
		debugf = log.Printf
	}
	return &SharedPromoter{
		store:  st,
		tok:    ingest.NewTokenizer(nil),
		debugf: debugf,
	}
}

// Collect implements Promoter.
func (p *SharedPromoter) Collect(userText string, hits []signal.Hit) []lexicon.Candidate {
	return lexicon.CollectCandidates(userText, hits, p.tok, p.debugf)
}

// Score implements Promoter: a candidate carries its hit confidence.
func (p *SharedPromoter) Score(c lexicon.Candidate) float64 {
	return c.Entry.Confidence
}

// Persist implements Promoter. The shared file is replaced whole; the audit
// log has already anchored the exchange by the time this runs.
func (p *SharedPromoter) Persist(cands []lexicon.Candidate) ([]string, error) {
	if len(cands) == 0 {
		return nil, nil
	}

	shared, err := p.store.SharedLexicon()
	if err != nil {
		return nil, err
	}
	added := shared.Insert(cands)
	if len(added) == 0 {
		return nil, nil
	}
	if err := p.store.PutSharedLexicon(shared); err != nil {
		return nil, err
	}
	return added, nil
}

// LocalPromoter keeps all learning user-local: it collects nothing and
// persists nothing, so the shared tier never grows.
type LocalPromoter struct{}

// Collect implements Promoter.
func (LocalPromoter) Collect(string, []signal.Hit) []lexicon.Candidate { return nil }

// Score implements Promoter.
func (LocalPromoter) Score(lexicon.Candidate) float64 { return 0 }

// Persist implements Promoter.
func (LocalPromoter) Persist([]lexicon.Candidate) ([]string, error) { return nil, nil }
