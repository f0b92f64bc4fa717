// Package attune is the adaptive emotional-signal learning core. It ingests
// free-form exchanges (user utterance plus assistant reply), detects the
// emotional signals they carry, and incrementally learns a per-user
// personalization layer and a shared community lexicon under strict privacy
// constraints: raw text never reaches disk, only derived fields do.
//
// Engine is the public façade. ProcessExchange runs the full per-exchange
// flow (extract, audit, learn, detect pairs, dedup, emit composites) and
// always returns a result; internal failures are folded into it rather than
// raised.
package attune

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/cognicore/attune/pkg/attune/anonymize"
	"github.com/cognicore/attune/pkg/attune/config"
	"github.com/cognicore/attune/pkg/attune/dedup"
	"github.com/cognicore/attune/pkg/attune/gate"
	"github.com/cognicore/attune/pkg/attune/ingest"
	"github.com/cognicore/attune/pkg/attune/learn"
	"github.com/cognicore/attune/pkg/attune/lexicon"
	"github.com/cognicore/attune/pkg/attune/pattern"
	"github.com/cognicore/attune/pkg/attune/signal"
	"github.com/cognicore/attune/pkg/attune/store"
	"github.com/cognicore/attune/pkg/attune/store/filestore"
	"github.com/cognicore/attune/pkg/attune/store/pairstore"
)

// Options configures an Engine with explicit dependencies.
type Options struct {
	Store      store.Store
	Extractor  *signal.Extractor
	Gate       *gate.Gate
	Anonymizer *anonymize.Anonymizer // nil disables anonymization
	Promoter   learn.Promoter        // nil selects the full shared promoter
	Counter    pattern.PairCounter   // nil selects an in-memory counter

	MinPatternFrequency      int64
	AcceptThreshold          float64
	MaxUserContextsPerSignal int
	MaxRecentMemory          int

	// Now overrides the engine clock (log entries, composite timestamps).
	Now func() time.Time

	// Debugf receives diagnostic lines. Defaults to log.Printf.
	Debugf func(format string, args ...any)
}

// EvolutionResult is the outcome of one processed exchange.
type EvolutionResult struct {
	Learning        learn.Result        `json:"learning_result"`
	NewComposites   []pattern.Composite `json:"new_composites"`
	Patterns        []pattern.Pattern   `json:"patterns"`
	LexiconSnapshot lexicon.Shared      `json:"lexicon_snapshot"`
}

// UserStats summarizes one user's learning state.
type UserStats struct {
	SignalsLearned int     `json:"signals_learned"`
	Contributions  int64   `json:"contributions"`
	TrustScore     float64 `json:"trust_score"`
}

// SharedStats summarizes the community tier.
type SharedStats struct {
	SignalsCount    int   `json:"signals_count"`
	LogEntriesCount int64 `json:"log_entries_count"`
}

// Engine combines extractor, learner, pattern detector, and dedup behind the
// single ProcessExchange contract.
type Engine struct {
	st        store.Store
	extractor *signal.Extractor
	learner   *learn.Learner
	detector  *pattern.Detector
	emitter   *pattern.Emitter
	deduper   *dedup.Deduper
	debugf    func(format string, args ...any)

	// ownedCloser closes resources the engine created itself (Open's
	// pairstore); nil when the caller owns everything.
	ownedCloser func() error
}

// New creates an Engine from explicit components.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("attune: Options.Store is required")
	}

	debugf := opts.Debugf
	if debugf == nil {
		debugf = log.Printf
	}

	extractor := opts.Extractor
	if extractor == nil {
		extractor = signal.NewExtractor(signal.Config{Debugf: debugf})
	}
	g := opts.Gate
	if g == nil {
		g = gate.New()
	}
	counter := opts.Counter
	if counter == nil {
		counter = pattern.NewMemoryCounter()
	}

	catalog, err := opts.Store.Catalog()
	if err != nil {
		debugf("attune: catalog load: %v", err)
	}
	deduper, err := dedup.New(dedup.Config{
		Catalog:         catalog,
		Staging:         opts.Store,
		RecentSize:      opts.MaxRecentMemory,
		AcceptThreshold: opts.AcceptThreshold,
		Debugf:          debugf,
	})
	if err != nil {
		return nil, err
	}

	learner := learn.New(learn.Config{
		Store:                opts.Store,
		Extractor:            extractor,
		Gate:                 g,
		Promoter:             opts.Promoter,
		Anonymizer:           opts.Anonymizer,
		MaxContextsPerSignal: opts.MaxUserContextsPerSignal,
		Now:                  opts.Now,
		Debugf:               debugf,
	})

	return &Engine{
		st:        opts.Store,
		extractor: extractor,
		learner:   learner,
		detector: pattern.NewDetector(pattern.DetectorConfig{
			Counter:      counter,
			MinFrequency: opts.MinPatternFrequency,
			Debugf:       debugf,
		}),
		emitter: pattern.NewEmitter(opts.Now),
		deduper: deduper,
		debugf:  debugf,
	}, nil
}

// Open builds a filesystem-backed Engine from a Config.
func Open(ctx context.Context, cfg config.Config) (*Engine, error) {
	st, err := filestore.New(cfg.Root, nil)
	if err != nil {
		return nil, err
	}

	opts := Options{
		Store:                    st,
		Extractor:                signal.NewExtractor(signal.Config{Adaptive: cfg.AdaptiveSignals}),
		MinPatternFrequency:      cfg.MinPatternFrequency,
		AcceptThreshold:          cfg.AcceptThreshold,
		MaxUserContextsPerSignal: cfg.MaxUserContextsPerSignal,
		MaxRecentMemory:          cfg.MaxRecentMemory,
	}

	if cfg.EnableAnonymization {
		opts.Anonymizer = anonymize.New(anonymize.Options{
			AllowNames:   cfg.AllowNames,
			AllowMedical: cfg.AllowMedicalDetails,
		})
	}

	var closer func() error
	if cfg.PairDBPath != "" {
		ps, err := pairstore.Open(ctx, cfg.PairDBPath)
		if err != nil {
			st.Close()
			return nil, err
		}
		opts.Counter = ps
		closer = ps.Close
	}

	eng, err := New(opts)
	if err != nil {
		if closer != nil {
			_ = closer()
		}
		st.Close()
		return nil, err
	}
	eng.ownedCloser = closer
	return eng, nil
}

// Close releases the store and any engine-owned resources.
func (e *Engine) Close() error {
	var first error
	if e.ownedCloser != nil {
		first = e.ownedCloser()
	}
	if err := e.st.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// HashUserID derives the stable pseudonymous hash used everywhere a user is
// referenced on disk.
func HashUserID(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])[:16]
}

// ProcessExchange runs one exchange through the full pipeline and always
// returns a result; no failure inside the core escapes as a panic or error.
// Identical inputs against identical lexicon and catalog state produce
// identical results.
func (e *Engine) ProcessExchange(ctx context.Context, userID, conversationID, userText, reply string, hits []signal.Hit, glyphNames []string) (res EvolutionResult) {
	defer func() {
		if r := recover(); r != nil {
			e.debugf("attune: recovered from internal panic: %v", r)
			res.Learning.Success = false
			res.Learning.Reason = fmt.Sprintf("internal: %v", r)
		}
	}()

	userHash := HashUserID(userID)
	text := ingest.StripMarkup(userText)
	reply = ingest.StripMarkup(reply)

	learning, hits := e.learner.LearnFromExchange(userHash, text, reply, hits, glyphNames)
	res.Learning = learning

	res.Patterns = e.detector.Detect(ctx, text, hits)

	confBySignal := make(map[string]float64, len(hits))
	for _, h := range hits {
		confBySignal[h.Signal] = h.Confidence
	}
	for _, p := range res.Patterns {
		conf := (confBySignal[p.SignalPair[0]] + confBySignal[p.SignalPair[1]]) / 2
		candidate := e.emitter.Emit(p, userHash, conversationID, conf)
		if ok, _ := e.deduper.Filter(candidate); ok {
			res.NewComposites = append(res.NewComposites, candidate)
		}
	}

	snapshot, err := e.st.SharedLexicon()
	if err != nil {
		e.debugf("attune: lexicon snapshot: %v", err)
		snapshot = make(lexicon.Shared)
	}
	res.LexiconSnapshot = snapshot

	return res
}

// DiscoverDimensions runs adaptive dimension discovery over a user's corpus
// and persists any new dimensions under the user's hash. Persistence failure
// is non-fatal: discovered dimensions stay live in the signal table.
func (e *Engine) DiscoverDimensions(userID string, texts []string) map[string]signal.Signal {
	discovered := e.extractor.DiscoverDimensions(texts)
	if len(discovered) == 0 {
		return discovered
	}
	if err := e.st.PutDiscoveredSignals(HashUserID(userID), discovered); err != nil {
		e.debugf("attune: persisting discovered dimensions: %v", err)
	}
	return discovered
}

// GetUserStats reports a user's learning state.
func (e *Engine) GetUserStats(userHash string) (UserStats, error) {
	u, err := e.st.UserOverrides(userHash)
	if err != nil {
		return UserStats{}, err
	}
	return UserStats{
		SignalsLearned: len(u.Signals),
		Contributions:  u.Contributions,
		TrustScore:     u.TrustScore,
	}, nil
}

// GetSharedStats reports the community tier's size and log depth.
func (e *Engine) GetSharedStats() (SharedStats, error) {
	shared, err := e.st.SharedLexicon()
	if err != nil {
		return SharedStats{}, err
	}
	count, err := e.st.AuditCount()
	if err != nil {
		return SharedStats{}, err
	}
	return SharedStats{
		SignalsCount:    len(shared),
		LogEntriesCount: count,
	}, nil
}
