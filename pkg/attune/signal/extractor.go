package signal

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/cognicore/attune/pkg/attune/ingest"
	"github.com/cognicore/attune/pkg/attune/internalerr"
)

// PersistFunc saves newly discovered signals. Failures are non-fatal;
// discovery keeps the dimensions in memory either way.
type PersistFunc func(discovered map[string]Signal) error

// Config configures an Extractor.
type Config struct {
	// Adaptive enables corpus-driven dimension discovery.
	Adaptive bool

	// Persist, when set, is called with each batch of discovered signals.
	Persist PersistFunc

	// Debugf receives diagnostic lines. Defaults to log.Printf.
	Debugf func(format string, args ...any)
}

// Extractor maps text to ranked signal hits using a layered dictionary:
// base, pre-discovered, and runtime-learned dimensions.
//
// The signal table is read-shared process state. Reads (Extract) take the
// read lock; the only writers are Register and DiscoverDimensions, which
// serialize on the write lock.
type Extractor struct {
	mu          sync.RWMutex
	signals     map[string]Signal
	keywordFreq map[string]map[string]int64 // signal → keyword → match count
	tok         *ingest.Tokenizer
	adaptive    bool
	persist     PersistFunc
	debugf      func(format string, args ...any)
}

// NewExtractor creates an extractor seeded with the base and pre-discovered
// tiers.
func NewExtractor(cfg Config) *Extractor {
	e := &Extractor{
		signals:     make(map[string]Signal),
		keywordFreq: make(map[string]map[string]int64),
		tok:         ingest.NewTokenizer(ingest.DefaultStopwords()),
		adaptive:    cfg.Adaptive,
		persist:     cfg.Persist,
		debugf:      cfg.Debugf,
	}
	if e.debugf == nil {
		e.debugf = log.Printf
	}
	for _, s := range BaseSignals() {
		e.signals[s.Name] = s
	}
	for _, s := range PreDiscoveredSignals() {
		e.signals[s.Name] = s
	}
	return e
}

// Register adds a learned signal to the table. Names must not collide with
// any existing tier.
func (e *Extractor) Register(s Signal) error {
	if err := s.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registerLocked(s)
}

func (e *Extractor) registerLocked(s Signal) error {
	if _, exists := e.signals[s.Name]; exists {
		return fmt.Errorf("%w: %s", internalerr.ErrSignalExists, s.Name)
	}
	e.signals[s.Name] = s
	return nil
}

// Signals returns a snapshot of the current signal table.
func (e *Extractor) Signals() []Signal {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Signal, 0, len(e.signals))
	for _, s := range e.signals {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Has reports whether a signal with the given name exists in any tier.
func (e *Extractor) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.signals[name]
	return ok
}

// Extract returns the ranked signal hits for text.
//
// Texts of 10 characters or fewer yield no hits. Hits below confidence 0.3
// are dropped. The result is sorted by descending confidence with a stable
// tie-break on signal name, so identical inputs always rank identically.
//
// As a side effect, per-signal keyword match counters are incremented; the
// counters feed discovery and stats, never ranking.
func (e *Extractor) Extract(text string) []Hit {
	if len(strings.TrimSpace(text)) <= 10 {
		return nil
	}

	lower := strings.ToLower(text)
	// Padded word stream makes whole-word and whole-phrase matching a single
	// substring check.
	stream := " " + strings.Join(e.tok.Words(lower), " ") + " "

	e.mu.Lock()
	defer e.mu.Unlock()

	var hits []Hit
	for _, s := range e.signals {
		var kws, mets []string
		for _, kw := range s.Keywords {
			if matchWhole(stream, kw) {
				kws = append(kws, kw)
			}
		}
		for _, m := range s.Metaphors {
			if matchWhole(stream, m) {
				mets = append(mets, m)
			}
		}
		if len(kws)+len(mets) == 0 {
			continue
		}

		conf := confidence(s.BaseIntensity, len(kws), len(mets))
		if conf < 0.3 {
			continue
		}

		sort.Strings(kws)
		sort.Strings(mets)
		hits = append(hits, Hit{
			Signal:           s.Name,
			Confidence:       conf,
			MatchedKeywords:  kws,
			MatchedMetaphors: mets,
		})

		freq := e.keywordFreq[s.Name]
		if freq == nil {
			freq = make(map[string]int64)
			e.keywordFreq[s.Name] = freq
		}
		for _, kw := range kws {
			freq[kw]++
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Confidence != hits[j].Confidence {
			return hits[i].Confidence > hits[j].Confidence
		}
		return hits[i].Signal < hits[j].Signal
	})
	return hits
}

// KeywordFrequency returns a copy of the match counters for one signal.
func (e *Extractor) KeywordFrequency(name string) map[string]int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]int64, len(e.keywordFreq[name]))
	for kw, n := range e.keywordFreq[name] {
		out[kw] = n
	}
	return out
}

// matchWhole reports whether entry occurs in the padded word stream as a
// whole word (or whole phrase, for multi-word vocabulary entries).
func matchWhole(stream, entry string) bool {
	return strings.Contains(stream, " "+entry+" ")
}
