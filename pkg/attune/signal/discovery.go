package signal

import (
	"sort"
	"strings"
)

// Discovery thresholds. A seed keyword becomes a candidate dimension when it
// appears in at least 30% of the corpus and its context windows yield at
// least three distinct related words.
const (
	discoveryDocShare   = 0.30
	discoveryMinRelated = 3
	discoveryWindow     = 40 // characters on each side of the keyword
	discoveryMaxRelated = 6  // related words kept as the new vocabulary
	learnedIntensity    = 0.5
)

// seedVocabulary is the fixed thematic vocabulary scanned during discovery,
// grouped by theme for curation; discovery itself operates per keyword.
func seedVocabulary() map[string][]string {
	return map[string][]string{
		"time":       {"time", "memory", "moment", "years", "forever", "fleeting"},
		"absence":    {"missing", "gone", "absence", "without", "vanished"},
		"connection": {"together", "bond", "connection", "understood", "belong"},
		"struggle":   {"struggle", "battle", "burden", "overcome", "wrestle"},
		"depth":      {"deep", "profound", "soul", "beneath", "core"},
		"seasons":    {"winter", "spring", "summer", "autumn", "season"},
	}
}

// DiscoverDimensions scans a corpus for seed keywords that recur widely and
// proposes new learned dimensions from their surrounding context. Returns the
// dimensions that were registered, keyed by name.
//
// Only runs in adaptive mode. Persistence failures are swallowed and logged
// at debug; the discovered dimensions stay live in memory regardless.
func (e *Extractor) DiscoverDimensions(texts []string) map[string]Signal {
	if !e.adaptive || len(texts) == 0 {
		return nil
	}

	minDocs := int(discoveryDocShare*float64(len(texts)) + 0.9999)
	if minDocs < 1 {
		minDocs = 1
	}

	lowered := make([]string, len(texts))
	for i, t := range texts {
		lowered[i] = strings.ToLower(t)
	}

	discovered := make(map[string]Signal)

	e.mu.Lock()
	for _, seeds := range seedVocabulary() {
		for _, seed := range seeds {
			docs := 0
			for _, t := range lowered {
				if containsWord(t, seed) {
					docs++
				}
			}
			if docs < minDocs {
				continue
			}

			related := e.harvestRelated(lowered, seed)
			if len(related) < discoveryMinRelated {
				continue
			}
			if len(related) > discoveryMaxRelated {
				related = related[:discoveryMaxRelated]
			}

			name := seed + "_" + related[0]
			if _, exists := e.signals[name]; exists {
				continue
			}

			s := Signal{
				Name:          name,
				Keywords:      append([]string{seed}, related...),
				BaseIntensity: learnedIntensity,
				Origin:        OriginLearned,
			}
			e.signals[name] = s
			discovered[name] = s
		}
	}
	e.mu.Unlock()

	if len(discovered) > 0 && e.persist != nil {
		if err := e.persist(discovered); err != nil {
			e.debugf("signal: persisting %d discovered dimensions failed: %v", len(discovered), err)
		}
	}

	return discovered
}

// harvestRelated collects the words co-occurring with seed inside a bounded
// character window, minus stopwords and the seed itself, ordered by count
// (ties by word). Caller holds the lock only for table access; harvesting
// itself touches no shared state.
func (e *Extractor) harvestRelated(lowered []string, seed string) []string {
	counts := make(map[string]int)
	for _, t := range lowered {
		idx := 0
		for {
			pos := strings.Index(t[idx:], seed)
			if pos < 0 {
				break
			}
			pos += idx
			start := pos - discoveryWindow
			if start < 0 {
				start = 0
			}
			end := pos + len(seed) + discoveryWindow
			if end > len(t) {
				end = len(t)
			}
			for _, w := range e.tok.Tokenize(t[start:end]) {
				if w == seed {
					continue
				}
				counts[w]++
			}
			idx = pos + len(seed)
		}
	}

	related := make([]string, 0, len(counts))
	for w := range counts {
		related = append(related, w)
	}
	sort.Slice(related, func(i, j int) bool {
		if counts[related[i]] != counts[related[j]] {
			return counts[related[i]] > counts[related[j]]
		}
		return related[i] < related[j]
	})
	return related
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], word)
		if pos < 0 {
			return false
		}
		pos += idx
		beforeOK := pos == 0 || !isWordChar(text[pos-1])
		afterOK := pos+len(word) >= len(text) || !isWordChar(text[pos+len(word)])
		if beforeOK && afterOK {
			return true
		}
		idx = pos + len(word)
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '\''
}
