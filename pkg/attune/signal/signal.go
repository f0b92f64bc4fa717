package signal

import (
	"fmt"
	"strings"
)

// Origin identifies which tier a signal belongs to.
type Origin string

// Signal tiers. Base and pre-discovered signals ship with the engine;
// learned signals come out of corpus discovery at runtime.
const (
	OriginBase          Origin = "base"
	OriginPreDiscovered Origin = "pre_discovered"
	OriginLearned       Origin = "learned"
)

// Signal is a named emotional dimension with its matching vocabulary.
//
// Invariants:
//   - Name is unique across all tiers (lowercase, underscored)
//   - BaseIntensity is immutable once set, in [0,1]
//   - Keywords ∪ Metaphors is non-empty
type Signal struct {
	Name          string   `json:"name"`
	Keywords      []string `json:"keywords"`
	Metaphors     []string `json:"metaphors"`
	BaseIntensity float64  `json:"base_intensity"`
	Origin        Origin   `json:"origin"`
}

// Validate checks the Signal invariants. Loose map-shaped records from disk
// are normalized through this before entering the signal table.
func (s Signal) Validate() error {
	if s.Name == "" || s.Name != strings.ToLower(s.Name) || strings.ContainsRune(s.Name, ' ') {
		return fmt.Errorf("invalid signal name %q", s.Name)
	}
	if s.BaseIntensity < 0 || s.BaseIntensity > 1 {
		return fmt.Errorf("signal %q: base intensity %v out of range", s.Name, s.BaseIntensity)
	}
	if len(s.Keywords)+len(s.Metaphors) == 0 {
		return fmt.Errorf("signal %q: empty vocabulary", s.Name)
	}
	switch s.Origin {
	case OriginBase, OriginPreDiscovered, OriginLearned:
	default:
		return fmt.Errorf("signal %q: unknown origin %q", s.Name, s.Origin)
	}
	return nil
}

// Hit is one detected signal in a piece of text.
type Hit struct {
	Signal           string   `json:"signal"`
	Confidence       float64  `json:"confidence"`
	MatchedKeywords  []string `json:"matched_keywords,omitempty"`
	MatchedMetaphors []string `json:"matched_metaphors,omitempty"`
}

// confidence applies the scoring formula: base intensity plus 0.05 per
// matched keyword and 0.035 per matched metaphor, capped at 0.95.
func confidence(base float64, kwCount, metCount int) float64 {
	c := base + 0.05*(float64(kwCount)+0.7*float64(metCount))
	if c > 0.95 {
		c = 0.95
	}
	return c
}
