package pattern

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Composite is an emitted artifact for a recurring signal pair. Name and
// symbol are deterministic for the unordered pair via the rule table, with a
// title-cased fallback for pairs the table does not know.
type Composite struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Symbol         string    `json:"symbol"`
	CoreSignals    [2]string `json:"core_signals"`
	Keywords       []string  `json:"keywords"`
	ResponseCue    string    `json:"response_cue"`
	NarrativeHook  string    `json:"narrative_hook"`
	UserID         string    `json:"user_id"`
	ConversationID string    `json:"conversation_id"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`
}

// Emitter builds composites with monotonic ULID identifiers.
type Emitter struct {
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewEmitter creates an emitter.
func NewEmitter(now func() time.Time) *Emitter {
	if now == nil {
		now = time.Now
	}
	return &Emitter{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     now,
	}
}

// Emit builds the composite for one pattern.
func (e *Emitter) Emit(p Pattern, userID, conversationID string, confidence float64) Composite {
	name, symbol, cue, hook := pairIdentity(p.SignalPair[0], p.SignalPair[1])
	return Composite{
		ID:             ulid.MustNew(ulid.Timestamp(e.now()), e.entropy).String(),
		Name:           name,
		Symbol:         symbol,
		CoreSignals:    p.SignalPair,
		Keywords:       p.Keywords,
		ResponseCue:    cue,
		NarrativeHook:  hook,
		UserID:         userID,
		ConversationID: conversationID,
		Confidence:     confidence,
		CreatedAt:      e.now().UTC(),
	}
}

// pairIdentity resolves the deterministic identity for an unordered pair.
func pairIdentity(a, b string) (name, symbol, cue, hook string) {
	if r, ok := pairRules[pairKey(a, b)]; ok {
		return r.Name, r.Symbol, r.ResponseCue, r.NarrativeHook
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	name = titleCase(lo) + " & " + titleCase(hi)
	symbol = "💫💫"
	cue = "honor both currents at once"
	hook = "two currents met: " + lo + " and " + hi
	return name, symbol, cue, hook
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

type pairRule struct {
	Name          string
	Symbol        string
	ResponseCue   string
	NarrativeHook string
}

// pairRules is the curated identity table for known signal pairs. Keys are
// lexicographic "a+b".
var pairRules = map[string]pairRule{
	pairKey("love", "vulnerability"): {
		Name:          "Felt Seen",
		Symbol:        "💗🌱",
		ResponseCue:   "acknowledge the courage it took to open up",
		NarrativeHook: "tenderness met an unguarded moment",
	},
	pairKey("joy", "nature"): {
		Name:          "Wild Delight",
		Symbol:        "☀️🌿",
		ResponseCue:   "stay with the sensory detail that sparked it",
		NarrativeHook: "the outer world lit an inner brightness",
	},
	pairKey("joy", "transcendence"): {
		Name:          "Radiant Beyond",
		Symbol:        "☀️🌌",
		ResponseCue:   "let the moment stay large; do not shrink it",
		NarrativeHook: "delight widened into something vast",
	},
	pairKey("longing", "love"): {
		Name:          "Distant Flame",
		Symbol:        "💗🌙",
		ResponseCue:   "name the distance without rushing to close it",
		NarrativeHook: "warmth reaching across an open span",
	},
	pairKey("melancholy", "nostalgia"): {
		Name:          "Sepia Ache",
		Symbol:        "📜🌧️",
		ResponseCue:   "let the memory keep its weight",
		NarrativeHook: "the past arrived carrying rain",
	},
	pairKey("intimacy", "vulnerability"): {
		Name:          "Bare Threshold",
		Symbol:        "🕯️🌱",
		ResponseCue:   "match the quiet; move slowly",
		NarrativeHook: "a door opened from the inside",
	},
	pairKey("nature", "transcendence"): {
		Name:          "Sacred Wild",
		Symbol:        "🌿🌌",
		ResponseCue:   "mirror the scale of what was witnessed",
		NarrativeHook: "the landscape became a cathedral",
	},
	pairKey("serenity", "solitude"): {
		Name:          "Still Hours",
		Symbol:        "🕊️🏔️",
		ResponseCue:   "protect the quiet rather than filling it",
		NarrativeHook: "alone, and at rest with it",
	},
	pairKey("despair", "resilience"): {
		Name:          "Bent Not Broken",
		Symbol:        "🕳️🪨",
		ResponseCue:   "honor the struggle before the strength",
		NarrativeHook: "still standing in deep water",
	},
	pairKey("joy", "wonder"): {
		Name:          "Bright Astonishment",
		Symbol:        "✨☀️",
		ResponseCue:   "wonder aloud with them",
		NarrativeHook: "surprise broke into laughter",
	},
}

// pairVocabulary is the curated keyword table intersected with exchange
// words when a known pair fires.
var pairVocabulary = map[string][]string{
	pairKey("love", "vulnerability"):     {"seen", "open", "trust", "held", "honest"},
	pairKey("joy", "nature"):             {"alive", "bloom", "light", "fresh", "sunlit"},
	pairKey("joy", "transcendence"):      {"radiant", "lifted", "boundless", "glow"},
	pairKey("longing", "love"):           {"distance", "ache", "return", "waiting"},
	pairKey("melancholy", "nostalgia"):   {"faded", "remember", "gone", "old"},
	pairKey("intimacy", "vulnerability"): {"quiet", "close", "soft", "tremble"},
	pairKey("nature", "transcendence"):   {"vast", "sacred", "horizon", "infinite"},
	pairKey("serenity", "solitude"):      {"still", "quiet", "alone", "peace"},
	pairKey("despair", "resilience"):     {"survive", "anyway", "endure", "rebuild"},
	pairKey("joy", "wonder"):             {"marvel", "bright", "magic", "delight"},
}
