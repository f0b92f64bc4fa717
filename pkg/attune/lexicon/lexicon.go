// Package lexicon holds the two learning tiers: the shared community lexicon
// (surface form → tagged entry) and per-user overrides (signal → learned
// keywords, bounded example contexts, trust score).
//
// Design principles:
//   - Shared growth is monotonic: entries are added, never replaced in part
//     or removed.
//   - User overrides carry no raw text, only keywords and derived context
//     records.
//   - Family-related tokens are never promoted to the shared tier.
package lexicon

import (
	"strings"

	"github.com/cognicore/attune/pkg/attune/ingest"
	"github.com/cognicore/attune/pkg/attune/signal"
)

// Voltage grades how strongly a surface form carries its signal.
type Voltage string

// Voltage grades.
const (
	VoltageLow    Voltage = "low"
	VoltageMedium Voltage = "medium"
	VoltageHigh   Voltage = "high"
)

// Source records how an entry entered the shared lexicon.
type Source string

// Entry sources.
const (
	SourceSeed          Source = "seed"
	SourceLearned       Source = "learned"
	SourceLearnedPhrase Source = "learned_phrase"
)

// SharedEntry is one shared-lexicon record, keyed externally by its
// normalized surface form (a single word or a 2–3-word phrase).
type SharedEntry struct {
	Signal       string  `json:"signal"` // symbolic tag
	Voltage      Voltage `json:"voltage"`
	Tone         string  `json:"tone"` // signal name
	Source       Source  `json:"source"`
	Confidence   float64 `json:"confidence"`
	PhraseLength int     `json:"phrase_length,omitempty"`
}

// Shared is the community lexicon.
type Shared map[string]SharedEntry

// ContextRecord is a privacy-safe trace of where a keyword was learned. It
// never holds raw text.
type ContextRecord struct {
	Keyword           string   `json:"keyword"`
	AssociatedSignals []string `json:"associated_signals"`
	Gates             []string `json:"gates"`
}

// SignalOverride is the per-user learning state for one signal.
type SignalOverride struct {
	Keywords        []string        `json:"keywords"`
	ExampleContexts []ContextRecord `json:"example_contexts"`
	Frequency       int64           `json:"frequency"`
}

// Trust score bounds. Every user starts at the midpoint and moves by small
// steps: +0.10 on a quality exchange, −0.02 otherwise.
const (
	TrustFloor   = 0.3
	TrustCeiling = 1.0
	TrustInitial = 0.5
	trustReward  = 0.10
	trustPenalty = 0.02
)

// UserOverrides is the per-user personalization record.
type UserOverrides struct {
	UserID        string                     `json:"user_id"` // hashed, never raw
	Signals       map[string]*SignalOverride `json:"signals"`
	TrustScore    float64                    `json:"trust_score"`
	Contributions int64                      `json:"contributions"`
}

// NewUserOverrides creates the initial record for a user hash.
func NewUserOverrides(userHash string) *UserOverrides {
	return &UserOverrides{
		UserID:     userHash,
		Signals:    make(map[string]*SignalOverride),
		TrustScore: TrustInitial,
	}
}

// Observe folds one exchange's hits into the per-user record. maxContexts
// bounds the retained example contexts per signal (oldest dropped first).
func (u *UserOverrides) Observe(hits []signal.Hit, gateReason string, maxContexts int) {
	if u.Signals == nil {
		u.Signals = make(map[string]*SignalOverride)
	}

	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.Signal
	}

	for _, h := range hits {
		ov := u.Signals[h.Signal]
		if ov == nil {
			ov = &SignalOverride{}
			u.Signals[h.Signal] = ov
		}
		ov.Frequency++

		for _, kw := range h.MatchedKeywords {
			if !containsString(ov.Keywords, kw) {
				ov.Keywords = append(ov.Keywords, kw)
			}
		}

		ov.ExampleContexts = append(ov.ExampleContexts, ContextRecord{
			Keyword:           primaryKeyword(h),
			AssociatedSignals: names,
			Gates:             []string{gateReason},
		})
		if maxContexts > 0 && len(ov.ExampleContexts) > maxContexts {
			ov.ExampleContexts = ov.ExampleContexts[len(ov.ExampleContexts)-maxContexts:]
		}
	}
}

// ApplyGateOutcome moves the trust score for one exchange and bumps the
// contribution count.
func (u *UserOverrides) ApplyGateOutcome(pass bool) {
	if pass {
		u.TrustScore += trustReward
		if u.TrustScore > TrustCeiling {
			u.TrustScore = TrustCeiling
		}
	} else {
		u.TrustScore -= trustPenalty
		if u.TrustScore < TrustFloor {
			u.TrustScore = TrustFloor
		}
	}
	u.Contributions++
}

func primaryKeyword(h signal.Hit) string {
	if len(h.MatchedKeywords) > 0 {
		return h.MatchedKeywords[0]
	}
	if len(h.MatchedMetaphors) > 0 {
		return h.MatchedMetaphors[0]
	}
	return h.Signal
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// familyWords is the hard override set: these tokens must never be promoted
// into the shared lexicon, alone or inside a phrase, regardless of the signal
// they arrived under.
var familyWords = map[string]struct{}{
	"kids": {}, "kid": {}, "mom": {}, "mum": {}, "dad": {}, "mother": {},
	"father": {}, "sister": {}, "brother": {}, "son": {}, "daughter": {},
	"grandma": {}, "grandpa": {}, "grandmother": {}, "grandfather": {},
	"family": {}, "child": {}, "children": {}, "baby": {},
}

// IsFamilyWord reports whether token is in the family override set.
func IsFamilyWord(token string) bool {
	_, ok := familyWords[strings.ToLower(token)]
	return ok
}

// familyToken returns the first family-override token inside phrase, if any.
func familyToken(phrase string) (string, bool) {
	for _, w := range strings.Fields(phrase) {
		if IsFamilyWord(w) {
			return strings.ToLower(w), true
		}
	}
	return "", false
}

// Candidate is one prospective shared-lexicon entry produced by the
// enrichment rules, before insertion.
type Candidate struct {
	Surface string
	Entry   SharedEntry
}

// CollectCandidates applies the two shared-tier enrichment rules to one
// exchange and returns the surviving candidates in rule order.
//
// Rule 1 (single keywords): every matched keyword of a hit above confidence
// 0.5 becomes a candidate, voltage high above 0.65 and medium otherwise.
//
// Rule 2 (phrases): every 2-gram and 3-gram of the user text containing one
// of a hit's matched terms becomes a learned-phrase candidate.
//
// Family-override tokens are skipped in both rules; skips are reported
// through debugf.
func CollectCandidates(userText string, hits []signal.Hit, tok *ingest.Tokenizer, debugf func(format string, args ...any)) []Candidate {
	var cands []Candidate
	seen := make(map[string]struct{})

	for _, h := range hits {
		if h.Confidence <= 0.5 {
			continue
		}
		for _, kw := range h.MatchedKeywords {
			if IsFamilyWord(kw) {
				debugf("lexicon: Skipped learning family keyword %q under %s", kw, h.Signal)
				continue
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			cands = append(cands, Candidate{
				Surface: kw,
				Entry: SharedEntry{
					Signal:     signalTag(h.Signal),
					Voltage:    voltageFor(h.Confidence),
					Tone:       h.Signal,
					Source:     SourceLearned,
					Confidence: h.Confidence,
				},
			})
		}
	}

	grams := tok.NGrams(strings.ToLower(userText), 2, 3)
	for _, h := range hits {
		if h.Confidence <= 0.5 {
			continue
		}
		terms := append(append([]string{}, h.MatchedKeywords...), h.MatchedMetaphors...)
		for _, phrase := range grams {
			if !phraseContainsAny(phrase, terms) {
				continue
			}
			if w, found := familyToken(phrase); found {
				debugf("lexicon: Skipped learning family phrase %q under %s (contains %q)", phrase, h.Signal, w)
				continue
			}
			if _, dup := seen[phrase]; dup {
				continue
			}
			seen[phrase] = struct{}{}
			cands = append(cands, Candidate{
				Surface: phrase,
				Entry: SharedEntry{
					Signal:       signalTag(h.Signal),
					Voltage:      voltageFor(h.Confidence),
					Tone:         h.Signal,
					Source:       SourceLearnedPhrase,
					Confidence:   h.Confidence,
					PhraseLength: len(strings.Fields(phrase)),
				},
			})
		}
	}

	return cands
}

// Insert adds candidates whose surface form is not yet present and returns
// the forms added. Existing entries are never replaced: shared growth is
// monotonic.
func (s Shared) Insert(cands []Candidate) []string {
	var added []string
	for _, c := range cands {
		if _, exists := s[c.Surface]; exists {
			continue
		}
		s[c.Surface] = c.Entry
		added = append(added, c.Surface)
	}
	return added
}

// Enrich is CollectCandidates followed by Insert on s.
func (s Shared) Enrich(userText string, hits []signal.Hit, tok *ingest.Tokenizer, debugf func(format string, args ...any)) []string {
	return s.Insert(CollectCandidates(userText, hits, tok, debugf))
}

func voltageFor(confidence float64) Voltage {
	if confidence > 0.65 {
		return VoltageHigh
	}
	return VoltageMedium
}

func phraseContainsAny(phrase string, terms []string) bool {
	padded := " " + phrase + " "
	for _, t := range terms {
		if strings.Contains(padded, " "+t+" ") {
			return true
		}
	}
	return false
}

// signalTags maps signal names to their symbolic lexicon tags. Unknown
// signals (learned dimensions) fall back to their own name.
var signalTags = map[string]string{
	"love":           "💗",
	"intimacy":       "🕯️",
	"vulnerability":  "🌱",
	"transformation": "🦋",
	"admiration":     "⭐",
	"joy":            "☀️",
	"sensuality":     "🌹",
	"nature":         "🌿",
	"nostalgia":      "📜",
	"melancholy":     "🌧️",
	"transcendence":  "🌌",
	"longing":        "🌙",
	"despair":        "🕳️",
	"serenity":       "🕊️",
	"rebellion":      "🔥",
	"wonder":         "✨",
	"resilience":     "🪨",
	"solitude":       "🏔️",
}

func signalTag(name string) string {
	if tag, ok := signalTags[name]; ok {
		return tag
	}
	return name
}
