// Package anonymize replaces identifying content in text with stable symbolic
// tokens before anything derived from the text is persisted.
//
// Replacement runs in fixed stages: personal names, family role terms,
// locations, absolute dates, medical terms. Every stage records its mapping
// in the returned Map so that consent-checked reversal stays possible for the
// retention window. The core itself never de-anonymizes.
package anonymize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Level classifies how much identifying content is masked.
type Level string

// Consent levels. Full masks names and medical terms, Medical masks medical
// terms only, Minimal masks neither. Family roles, locations, and dates are
// generalized at every level.
const (
	LevelFull    Level = "full"
	LevelMedical Level = "medical"
	LevelMinimal Level = "minimal"
)

// Map records the replacements applied to one text. Persisted separately from
// the audit log, keyed by the user's hash.
type Map struct {
	ID                      string            `json:"id"`
	Timestamp               time.Time         `json:"timestamp"`
	IdentifierGlyphs        map[string]string `json:"identifier_glyphs"`
	TemporalShifts          map[string]string `json:"temporal_shifts"`
	LocationGeneralizations map[string]string `json:"location_generalizations"`
	AllowMedical            bool              `json:"allow_medical"`
	AllowNames              bool              `json:"allow_names"`
}

// Options configures an Anonymizer.
type Options struct {
	AllowNames   bool
	AllowMedical bool

	// Now overrides the clock used for relative date bands. Defaults to
	// time.Now.
	Now func() time.Time
}

// Anonymizer holds the compiled replacement tables. Safe for concurrent use;
// all state is read-only after construction.
type Anonymizer struct {
	allowNames   bool
	allowMedical bool
	now          func() time.Time

	namePatterns    []namedPattern
	familyPatterns  []replacement
	medicalPatterns []replacement
	locations       []regionPattern
	datePatterns    []*regexp.Regexp
}

type namedPattern struct {
	re   *regexp.Regexp
	name string
}

type replacement struct {
	re    *regexp.Regexp
	token string
}

type regionPattern struct {
	re     *regexp.Regexp
	region string
}

// New creates an Anonymizer with the curated replacement tables.
func New(opts Options) *Anonymizer {
	a := &Anonymizer{
		allowNames:   opts.AllowNames,
		allowMedical: opts.AllowMedical,
		now:          opts.Now,
	}
	if a.now == nil {
		a.now = time.Now
	}

	for _, n := range knownNames {
		a.namePatterns = append(a.namePatterns, namedPattern{re: wordRe(n), name: n})
	}
	for term, token := range familyRoles {
		a.familyPatterns = append(a.familyPatterns, replacement{re: wordRe(term), token: token})
	}
	for term, token := range medicalTerms {
		a.medicalPatterns = append(a.medicalPatterns, replacement{re: wordRe(term), token: token})
	}
	for expr, region := range locationTable {
		a.locations = append(a.locations, regionPattern{
			re:     regexp.MustCompile(`(?i)\b(?:` + expr + `)\b`),
			region: region,
		})
	}
	a.datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{4})\b`),
		regexp.MustCompile(`\b(\d{4})-(\d{1,2})(?:-(\d{1,2}))?\b`),
		regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`),
	}
	return a
}

// Level reports the consent level implied by the configured toggles.
func (a *Anonymizer) Level() Level {
	switch {
	case !a.allowMedical && !a.allowNames:
		return LevelFull
	case !a.allowMedical:
		return LevelMedical
	case !a.allowNames:
		// Names masked with medical allowed is still the strongest naming
		// consent; reported as full.
		return LevelFull
	default:
		return LevelMinimal
	}
}

// Anonymize returns the masked text and the map needed to reverse it.
func (a *Anonymizer) Anonymize(text string) (string, Map) {
	m := Map{
		ID:                      uuid.NewString(),
		Timestamp:               a.now().UTC(),
		IdentifierGlyphs:        make(map[string]string),
		TemporalShifts:          make(map[string]string),
		LocationGeneralizations: make(map[string]string),
		AllowMedical:            a.allowMedical,
		AllowNames:              a.allowNames,
	}

	out := text

	if !a.allowNames {
		roleIdx := 0
		for _, np := range a.namePatterns {
			if !np.re.MatchString(out) {
				continue
			}
			token := roleTokens[roleIdx%len(roleTokens)]
			roleIdx++
			m.IdentifierGlyphs[np.name] = token
			out = np.re.ReplaceAllString(out, token)
		}
	}

	// Family roles are generalized at every consent level to preserve
	// relational tone without the literal term.
	for _, fp := range a.familyPatterns {
		out = fp.re.ReplaceAllStringFunc(out, func(match string) string {
			m.IdentifierGlyphs[strings.ToLower(match)] = fp.token
			return fp.token
		})
	}

	for _, lp := range a.locations {
		out = lp.re.ReplaceAllStringFunc(out, func(match string) string {
			m.LocationGeneralizations[strings.ToLower(match)] = lp.region
			return lp.region
		})
	}

	out = a.maskDates(out, &m)

	if !a.allowMedical {
		for _, mp := range a.medicalPatterns {
			out = mp.re.ReplaceAllStringFunc(out, func(match string) string {
				m.IdentifierGlyphs[strings.ToLower(match)] = mp.token
				return mp.token
			})
		}
	}

	return out, m
}

// maskDates converts absolute dates to relative bands against the current
// clock: lately (<7d), recently (<30d), last season (<180d), last year
// (<730d), otherwise "N years ago".
func (a *Anonymizer) maskDates(text string, m *Map) string {
	now := a.now()
	for _, re := range a.datePatterns {
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			ts, ok := parseDate(match)
			if !ok {
				return match
			}
			band := relativeBand(now.Sub(ts))
			m.TemporalShifts[match] = band
			return band
		})
	}
	return text
}

func relativeBand(age time.Duration) string {
	days := int(age.Hours() / 24)
	switch {
	case days < 7:
		return "lately"
	case days < 30:
		return "recently"
	case days < 180:
		return "last season"
	case days < 730:
		return "last year"
	default:
		years := days / 365
		if years < 2 {
			years = 2
		}
		return fmt.Sprintf("%d years ago", years)
	}
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{
		"January 2006", "2006-01-02", "2006-01", "01/02/2006", "1/2/2006",
	} {
		if ts, err := time.Parse(layout, normalizeMonthCase(s)); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// normalizeMonthCase title-cases the month word so case-insensitive matches
// still parse with time.Parse layouts.
func normalizeMonthCase(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 2 && fields[0] != "" {
		month := strings.ToLower(fields[0])
		fields[0] = strings.ToUpper(month[:1]) + month[1:]
		return strings.Join(fields, " ")
	}
	return s
}

func wordRe(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}
