// Package gate decides whether an exchange is good enough to feed the shared
// lexicon. The gate is a pure predicate: it never errors and never blocks
// per-user learning, it only withholds shared promotion.
package gate

import (
	"strings"

	"github.com/cognicore/attune/pkg/attune/signal"
)

// Reason codes returned by Evaluate. Checks run in a fixed order; the first
// failing check wins.
const (
	ReasonQuality       = "quality_exchange"
	ReasonInputTooLong  = "input_too_long"
	ReasonReplyTooLong  = "response_too_long"
	ReasonInputTooShort = "input_too_short"
	ReasonRepetitive    = "repetitive_template"
	ReasonNoEngagement  = "no_emotional_engagement"

	toxicReasonPrefix = "toxic_keyword_"
)

// Limits for the length checks. Boundary values are accepted; one character
// more trips the gate.
const (
	MaxInputLen = 5000
	MaxReplyLen = 10000
	MinWords    = 3
)

// Decision is the outcome of a gate evaluation.
type Decision struct {
	OK     bool
	Reason string
}

// Gate evaluates exchange quality.
type Gate struct {
	toxic     []string
	templates []string
	engage    map[string]struct{}
}

// New creates a gate with the default vocabularies.
func New() *Gate {
	engage := make(map[string]struct{}, len(engagementWords))
	for _, w := range engagementWords {
		engage[w] = struct{}{}
	}
	return &Gate{
		toxic:     toxicWords,
		templates: templatePhrases,
		engage:    engage,
	}
}

// Evaluate runs the quality checks on one exchange. signals are the hits
// already extracted from userText; they may be empty.
func (g *Gate) Evaluate(userText, reply string, signals []signal.Hit) Decision {
	if len(userText) > MaxInputLen {
		return Decision{Reason: ReasonInputTooLong}
	}
	if len(reply) > MaxReplyLen {
		return Decision{Reason: ReasonReplyTooLong}
	}

	userLower := " " + foldWords(userText) + " "
	replyLower := " " + foldWords(reply) + " "
	for _, w := range g.toxic {
		if strings.Contains(userLower, " "+w+" ") || strings.Contains(replyLower, " "+w+" ") {
			return Decision{Reason: toxicReasonPrefix + w}
		}
	}

	if len(strings.Fields(userText)) < MinWords {
		return Decision{Reason: ReasonInputTooShort}
	}

	for _, phrase := range g.templates {
		if strings.Count(strings.ToLower(reply), phrase) > 1 {
			return Decision{Reason: ReasonRepetitive}
		}
	}

	if len(signals) == 0 && !g.hasEngagement(replyLower) {
		return Decision{Reason: ReasonNoEngagement}
	}

	return Decision{OK: true, Reason: ReasonQuality}
}

func (g *Gate) hasEngagement(paddedLower string) bool {
	for w := range g.engage {
		if strings.Contains(paddedLower, " "+w+" ") {
			return true
		}
	}
	return false
}

// foldWords lowercases text and normalizes it to space-separated word runs so
// punctuation never hides a whole-word match.
func foldWords(text string) string {
	lower := strings.ToLower(text)
	var sb strings.Builder
	sb.Grow(len(lower))
	for _, r := range lower {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// toxicWords is a hard veto list. Matches are whole-word and case-insensitive
// in either side of the exchange.
var toxicWords = []string{
	"hate", "kill", "stupid", "worthless", "disgusting", "idiot", "pathetic",
}

// templatePhrases are canned-reply fragments; a reply repeating one more than
// once reads as template output, not engagement.
var templatePhrases = []string{
	"i understand how you feel",
	"thank you for sharing",
	"i'm here for you",
	"that must be difficult",
}

// engagementWords is the minimal vocabulary an emotionally engaged reply is
// expected to touch when no signals were detected in the user text.
var engagementWords = []string{
	"feel", "feeling", "heart", "sense", "beautiful", "gentle", "warm",
	"understand", "hear", "care", "moved", "touched",
}
