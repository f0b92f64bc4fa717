package ingest

import (
	"strings"
	"unicode"
)

// Tokenizer handles text tokenization and normalization for signal matching.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// NewTokenizer creates a new tokenizer with the given stopword list.
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops}
}

// Tokenize splits text into lowercase word tokens, removing stopwords.
// Apostrophes inside a word are kept ("i'm" stays one token) so contractions
// survive whole-word matching against signal vocabularies.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	for _, raw := range t.split(text) {
		word := t.processToken(raw)
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// Words splits text into lowercase word tokens without stopword filtering.
// Used where every surface word matters (phrase candidates, whole-word sets).
func (t *Tokenizer) Words(text string) []string {
	return t.split(text)
}

// WordSet returns the unique lowercase words of text.
func (t *Tokenizer) WordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range t.split(text) {
		set[w] = struct{}{}
	}
	return set
}

// NGrams returns all contiguous n-word phrases (joined by single spaces)
// for each n in sizes, preserving text order. Stopwords are not removed:
// learned phrases keep their natural surface form.
func (t *Tokenizer) NGrams(text string, sizes ...int) []string {
	words := t.split(text)
	var grams []string
	for _, n := range sizes {
		if n < 1 || n > len(words) {
			continue
		}
		for i := 0; i+n <= len(words); i++ {
			grams = append(grams, strings.Join(words[i:i+n], " "))
		}
	}
	return grams
}

func (t *Tokenizer) split(text string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := strings.Trim(current.String(), "'-")
		if word != "" {
			words = append(words, word)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return words
}

func (t *Tokenizer) processToken(word string) string {
	if word == "" || len(word) <= 1 {
		return ""
	}
	if isNumericOnly(word) {
		return ""
	}
	if _, ok := t.stopwords[word]; ok {
		return ""
	}
	return word
}

// isNumericOnly returns true if the token contains only digits and hyphens.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

// AddStopword adds a word to the stopword list.
func (t *Tokenizer) AddStopword(word string) {
	t.stopwords[strings.ToLower(word)] = struct{}{}
}

// DefaultStopwords is the filler vocabulary excluded from discovery harvesting
// and token statistics. Surface phrases for the shared lexicon are not
// filtered through it.
func DefaultStopwords() []string {
	return []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "can", "had",
		"her", "was", "one", "our", "out", "day", "get", "has", "him", "his",
		"how", "its", "may", "new", "now", "old", "see", "two", "way", "who",
		"did", "yes", "she", "been", "have", "that", "this", "with", "from",
		"they", "will", "would", "there", "their", "what", "about", "which",
		"when", "were", "your", "said", "each", "them", "then", "than", "some",
		"into", "very", "just", "like", "also", "more", "only", "over", "such",
		"being", "really", "things", "thing", "something", "because",
	}
}
