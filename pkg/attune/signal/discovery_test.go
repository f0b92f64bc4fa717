package signal

import (
	"errors"
	"strings"
	"testing"
)

var memoryCorpus = []string{
	"that memory of the lake house stays with me",
	"a childhood memory came back while cooking dinner",
	"the memory of her laughter fills the kitchen",
	"one memory keeps returning from that summer",
	"an old memory surfaced during the long drive",
	"the memory felt sharper than the photograph",
	"every memory from that trip glows a little",
	"a quiet memory of rain on the window",
	"the memory arrived uninvited this evening",
	"that memory still smells like pine trees",
}

func TestDiscoverDimensionsFromCorpus(t *testing.T) {
	e := newTestExtractor(true)

	discovered := e.DiscoverDimensions(memoryCorpus)

	var name string
	for n := range discovered {
		if strings.HasPrefix(n, "memory_") {
			name = n
		}
	}
	if name == "" {
		t.Fatalf("no memory_* dimension discovered, got %v", discovered)
	}

	s := discovered[name]
	if s.Origin != OriginLearned {
		t.Errorf("origin = %q, want %q", s.Origin, OriginLearned)
	}
	if len(s.Keywords) < 1+discoveryMinRelated {
		t.Errorf("keywords = %v, want seed plus at least %d related", s.Keywords, discoveryMinRelated)
	}
	if s.Keywords[0] != "memory" {
		t.Errorf("first keyword = %q, want the seed", s.Keywords[0])
	}

	// The new dimension participates in subsequent extraction.
	hits := e.Extract("a vivid memory washed over me today")
	found := false
	for _, h := range hits {
		if h.Signal == name {
			found = true
		}
	}
	if !found {
		t.Errorf("extract after discovery: no hit for %q in %v", name, hits)
	}
}

func TestDiscoverDimensionsDisabledWithoutAdaptiveMode(t *testing.T) {
	e := newTestExtractor(false)

	if got := e.DiscoverDimensions(memoryCorpus); got != nil {
		t.Errorf("non-adaptive discovery = %v, want nil", got)
	}
}

func TestDiscoverDimensionsBelowShareThreshold(t *testing.T) {
	e := newTestExtractor(true)

	// Only 2 of 10 documents mention the seed: under the 30% share.
	texts := append([]string{}, memoryCorpus[:2]...)
	for i := 0; i < 8; i++ {
		texts = append(texts, "nothing thematic in this line at all")
	}

	for name := range e.DiscoverDimensions(texts) {
		if strings.HasPrefix(name, "memory_") {
			t.Errorf("memory dimension discovered below share threshold: %s", name)
		}
	}
}

func TestDiscoverDimensionsPersistFailureIsNonFatal(t *testing.T) {
	persistErr := errors.New("disk gone")
	e := NewExtractor(Config{
		Adaptive: true,
		Persist:  func(map[string]Signal) error { return persistErr },
		Debugf:   discard,
	})

	discovered := e.DiscoverDimensions(memoryCorpus)
	if len(discovered) == 0 {
		t.Fatal("expected discoveries despite persist failure")
	}
	for name := range discovered {
		if !e.Has(name) {
			t.Errorf("discovered %q not live in the table", name)
		}
	}
}
