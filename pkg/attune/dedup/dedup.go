// Package dedup filters candidate composites against the prior-composite
// catalog and a bounded recent-memory window. Duplicates are staged, never
// emitted; the staging stream keeps enough context to audit every rejection.
package dedup

import (
	"fmt"
	"log"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/attune/pkg/attune/pattern"
	"github.com/cognicore/attune/pkg/attune/store"
)

// Defaults. Jaccard 0.9 is inclusive: a candidate exactly at the threshold
// counts as a duplicate.
const (
	DefaultJaccard      = 0.9
	DefaultRecentSize   = 500
	DefaultAcceptThresh = 0.8
)

// StagingAppender receives rejected candidates.
type StagingAppender interface {
	AppendStaging(r store.StagingRecord) error
}

// Config configures a Deduper.
type Config struct {
	// Catalog is the pre-loaded set of prior composites.
	Catalog []store.CatalogEntry

	// Staging receives duplicate records. Required.
	Staging StagingAppender

	// RecentSize bounds the recent-memory window (default 500).
	RecentSize int

	// AcceptThreshold is the minimum confidence for emission (default 0.8).
	AcceptThreshold float64

	// Debugf receives diagnostic lines. Defaults to log.Printf.
	Debugf func(format string, args ...any)
}

// Deduper decides whether a candidate composite is new.
type Deduper struct {
	catalogSet  map[string]struct{}
	catalogList []string
	recent      *lru.Cache[string, struct{}]
	staging     StagingAppender
	accept      float64
	debugf      func(format string, args ...any)
}

// New creates a deduper over the given catalog.
func New(cfg Config) (*Deduper, error) {
	size := cfg.RecentSize
	if size <= 0 {
		size = DefaultRecentSize
	}
	recent, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("dedup: recent memory: %w", err)
	}

	d := &Deduper{
		catalogSet: make(map[string]struct{}, len(cfg.Catalog)),
		recent:     recent,
		staging:    cfg.Staging,
		accept:     cfg.AcceptThreshold,
		debugf:     cfg.Debugf,
	}
	if d.accept <= 0 {
		d.accept = DefaultAcceptThresh
	}
	if d.debugf == nil {
		d.debugf = log.Printf
	}

	for _, e := range cfg.Catalog {
		form := Normalize(e.Name)
		if form == "" {
			continue
		}
		if _, ok := d.catalogSet[form]; !ok {
			d.catalogSet[form] = struct{}{}
			d.catalogList = append(d.catalogList, form)
		}
	}
	return d, nil
}

// Filter checks one candidate. Accepted candidates are remembered so an
// identical later candidate dedups against this one; rejected candidates are
// appended to the staging stream with the match reason.
func (d *Deduper) Filter(c pattern.Composite) (accepted bool, reason string) {
	form := Normalize(c.Name)

	if match, why := d.duplicateOf(form); why != "" {
		d.stage(c, why, match)
		return false, why
	}

	if c.Confidence < d.accept {
		d.debugf("dedup: candidate %q below accept threshold (%.2f < %.2f), dropped",
			c.Name, c.Confidence, d.accept)
		return false, "below_confidence"
	}

	d.recent.Add(form, struct{}{})
	return true, ""
}

// duplicateOf returns the matched existing form and a reason when form is a
// duplicate: exact catalog membership, or Jaccard >= 0.9 against any catalog
// entry or recent-memory entry.
func (d *Deduper) duplicateOf(form string) (match, reason string) {
	if _, ok := d.catalogSet[form]; ok {
		return form, "exact_catalog"
	}

	tokens := strings.Fields(form)
	for _, existing := range d.catalogList {
		if Jaccard(tokens, strings.Fields(existing)) >= DefaultJaccard {
			return existing, "jaccard_catalog"
		}
	}
	for _, existing := range d.recent.Keys() {
		if existing == form {
			return existing, "exact_recent"
		}
		if Jaccard(tokens, strings.Fields(existing)) >= DefaultJaccard {
			return existing, "jaccard_recent"
		}
	}
	return "", ""
}

func (d *Deduper) stage(c pattern.Composite, reason, match string) {
	rec := store.StagingRecord{
		Source:    "pattern_detector",
		EventType: "near_duplicate",
		Payload: map[string]any{
			"name":         c.Name,
			"symbol":       c.Symbol,
			"core_signals": []string{c.CoreSignals[0], c.CoreSignals[1]},
			"keywords":     c.Keywords,
		},
		Confidence:  c.Confidence,
		MatchReason: reason + ":" + match,
	}
	if err := d.staging.AppendStaging(rec); err != nil {
		d.debugf("dedup: staging append for %q: %v", c.Name, err)
	}
}

// Normalize lowercases, strips punctuation, and collapses whitespace.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '-' || r == '_':
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// Jaccard computes set similarity over whitespace tokens.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}
