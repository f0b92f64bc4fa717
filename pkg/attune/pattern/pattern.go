// Package pattern scans per-exchange signal sets for co-occurring pairs and
// emits candidate composites ("glyphs") for them.
package pattern

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/cognicore/attune/pkg/attune/ingest"
	"github.com/cognicore/attune/pkg/attune/signal"
)

const snippetLimit = 80

// Pattern is one observed co-occurrence of two signals in an exchange.
// SignalPair is kept in lexicographic order so (A,B) and (B,A) are the same
// pattern.
type Pattern struct {
	SignalPair        [2]string `json:"signal_pair"`
	CoOccurrenceCount int64     `json:"co_occurrence_count"`
	Keywords          []string  `json:"keywords"`
	ContextSnippet    string    `json:"context_snippet"`

	// CrossSessionCount is the informational running total from the pair
	// counter; MeetsFrequency compares it against the configured threshold.
	// Neither gates emission.
	CrossSessionCount int64 `json:"cross_session_count"`
	MeetsFrequency    bool  `json:"meets_frequency"`
}

// PairCounter aggregates pair sightings across sessions.
type PairCounter interface {
	Increment(ctx context.Context, a, b string) (int64, error)
}

// Detector finds signal pairs in exchanges.
type Detector struct {
	counter PairCounter
	minFreq int64
	tok     *ingest.Tokenizer
	debugf  func(format string, args ...any)
}

// DetectorConfig configures a Detector.
type DetectorConfig struct {
	// Counter, when set, tracks cross-session pair frequencies. Optional.
	Counter PairCounter

	// MinFrequency is the informational cross-session threshold (default
	// 300 for aggregation; 1 means every sighting qualifies).
	MinFrequency int64

	// Debugf receives diagnostic lines. Defaults to log.Printf.
	Debugf func(format string, args ...any)
}

// NewDetector creates a detector.
func NewDetector(cfg DetectorConfig) *Detector {
	d := &Detector{
		counter: cfg.Counter,
		minFreq: cfg.MinFrequency,
		tok:     ingest.NewTokenizer(nil),
		debugf:  cfg.Debugf,
	}
	if d.minFreq <= 0 {
		d.minFreq = 300
	}
	if d.debugf == nil {
		d.debugf = log.Printf
	}
	return d
}

// Detect returns one pattern per unordered pair of distinct signals in the
// exchange, in lexicographic pair order. Fewer than two distinct signals
// yield nothing.
func (d *Detector) Detect(ctx context.Context, text string, hits []signal.Hit) []Pattern {
	names := distinctSignals(hits)
	if len(names) < 2 {
		return nil
	}

	words := d.tok.WordSet(strings.ToLower(text))
	snippet := text
	if len(snippet) > snippetLimit {
		snippet = snippet[:snippetLimit]
	}

	var patterns []Pattern
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := names[i], names[j]
			p := Pattern{
				SignalPair:        [2]string{a, b},
				CoOccurrenceCount: 1,
				Keywords:          pairKeywords(a, b, words),
				ContextSnippet:    snippet,
			}

			if d.counter != nil {
				count, err := d.counter.Increment(ctx, a, b)
				if err != nil {
					d.debugf("pattern: pair counter %s/%s: %v", a, b, err)
				} else {
					p.CrossSessionCount = count
					p.MeetsFrequency = count >= d.minFreq
				}
			}

			patterns = append(patterns, p)
		}
	}
	return patterns
}

// distinctSignals returns the sorted unique signal names of the hits.
func distinctSignals(hits []signal.Hit) []string {
	seen := make(map[string]struct{}, len(hits))
	var names []string
	for _, h := range hits {
		if _, ok := seen[h.Signal]; ok {
			continue
		}
		seen[h.Signal] = struct{}{}
		names = append(names, h.Signal)
	}
	sort.Strings(names)
	return names
}

// pairKeywords intersects the exchange's words with the curated vocabulary
// for the pair, falling back to the signal names themselves.
func pairKeywords(a, b string, words map[string]struct{}) []string {
	var kws []string
	for _, kw := range pairVocabulary[pairKey(a, b)] {
		if _, ok := words[kw]; ok {
			kws = append(kws, kw)
		}
	}
	if len(kws) == 0 {
		kws = []string{a, b}
	}
	return kws
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "+" + b
}
