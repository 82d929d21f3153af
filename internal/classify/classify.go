// Package classify implements the three behavioral signal heuristics applied
// to a canonical profile: large-employer affiliation, leadership role, and
// entrepreneurial activity. All matchers examine only the most recent
// employment entry and are pure functions of the profile.
package classify

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sells-group/profile-cli/internal/model"
)

// leadershipKeywords match a title token exactly.
var leadershipKeywords = map[string]struct{}{
	"executive": {}, "exec": {}, "director": {}, "manager": {}, "lead": {},
	"head": {}, "chief": {}, "ceo": {}, "cfo": {}, "cto": {}, "coo": {},
	"vp": {}, "president": {}, "chair": {}, "supervisor": {}, "founder": {},
}

// leadershipPhrases are multi-word titles matched by phrase similarity.
var leadershipPhrases = []string{
	"department head",
	"executive director",
	"managing director",
	"senior manager",
	"vice president",
	"general manager",
	"regional manager",
}

// entrepreneurKeywords are matched as substrings of the lowercased title.
var entrepreneurKeywords = []string{
	"founder", "co-founder", "cofounder", "owner",
	"entrepreneur", "startup", "start-up", "serial entrepreneur",
	"business owner",
}

const (
	defaultEmployerThreshold   = 85
	defaultLeadershipThreshold = 65
)

// Flags holds the three derived signal booleans.
type Flags struct {
	Fortune500     bool
	LeadershipRole bool
	Entrepreneur   bool
}

// Classifier evaluates the three signals against an injected employer
// reference set. It holds no mutable state and is safe for reuse across a
// batch.
type Classifier struct {
	employers           *EmployerSet
	employerScorer      Scorer
	phraseScorer        Scorer
	employerThreshold   int
	leadershipThreshold int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithEmployerScorer overrides the employer-name similarity algorithm.
func WithEmployerScorer(s Scorer) Option {
	return func(c *Classifier) { c.employerScorer = s }
}

// WithPhraseScorer overrides the leadership-phrase similarity algorithm.
func WithPhraseScorer(s Scorer) Option {
	return func(c *Classifier) { c.phraseScorer = s }
}

// WithEmployerThreshold sets the fuzzy-match cutoff for employer names.
func WithEmployerThreshold(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.employerThreshold = n
		}
	}
}

// WithLeadershipThreshold sets the phrase-match cutoff for leadership titles.
func WithLeadershipThreshold(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.leadershipThreshold = n
		}
	}
}

// New creates a Classifier over the given employer reference set.
func New(employers *EmployerSet, opts ...Option) *Classifier {
	c := &Classifier{
		employers:           employers,
		employerScorer:      LevenshteinScorer{},
		phraseScorer:        TokenSetScorer{},
		employerThreshold:   defaultEmployerThreshold,
		leadershipThreshold: defaultLeadershipThreshold,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Apply evaluates all three signals for a bundle. An empty employment list
// yields all-false flags without error.
func (c *Classifier) Apply(b *model.Bundle) Flags {
	if len(b.Experiences) == 0 {
		return Flags{}
	}
	current := b.Experiences[0]
	return Flags{
		Fortune500:     c.FortuneMatch(current.Company),
		LeadershipRole: c.LeadershipMatch(current.Title),
		Entrepreneur:   c.EntrepreneurMatch(current.Title, current.Company, b.Profile.FullName),
	}
}

// FortuneMatch reports whether the employer name matches the reference set:
// exact membership after normalization, containment in either direction, or
// similarity above the threshold. The first successful match short-circuits.
func (c *Classifier) FortuneMatch(company string) bool {
	name := NormalizeEmployer(company)
	if name == "" {
		return false
	}

	if c.employers.Contains(name) {
		return true
	}

	for _, ref := range c.employers.Names() {
		if strings.Contains(ref, name) || strings.Contains(name, ref) {
			return true
		}
		if c.employerScorer.Score(name, ref) > c.employerThreshold {
			return true
		}
	}
	return false
}

// LeadershipMatch reports whether the title signals a leadership role, by
// exact token match first, then by best-of-3 phrase similarity against the
// leadership phrase list.
func (c *Classifier) LeadershipMatch(title string) bool {
	title = strings.ToLower(splitCamelCase(strings.TrimSpace(title)))
	if title == "" {
		return false
	}

	for _, tok := range titleTokens(title) {
		if _, ok := leadershipKeywords[tok]; ok {
			return true
		}
	}

	scores := make([]int, 0, len(leadershipPhrases))
	for _, phrase := range leadershipPhrases {
		scores = append(scores, c.phraseScorer.Score(title, phrase))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))
	for i := 0; i < 3 && i < len(scores); i++ {
		if scores[i] >= c.leadershipThreshold {
			return true
		}
	}
	return false
}

// EntrepreneurMatch reports whether the title contains an entrepreneurial
// keyword, or the profile owner's name appears in the employer name,
// signaling an eponymous venture.
func (c *Classifier) EntrepreneurMatch(title, company, fullName string) bool {
	titleLower := strings.ToLower(title)
	for _, kw := range entrepreneurKeywords {
		if strings.Contains(titleLower, kw) {
			return true
		}
	}

	name := strings.ToLower(strings.TrimSpace(fullName))
	if name != "" && strings.Contains(strings.ToLower(company), name) {
		return true
	}
	return false
}

// splitCamelCase inserts spaces at lower-to-upper boundaries. Provider titles
// sometimes concatenate words without spaces ("SeniorManager").
func splitCamelCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	prev := rune(0)
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev) {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
		prev = r
	}
	return sb.String()
}

// titleTokens splits a lowercased title into words, stripping surrounding
// punctuation.
func titleTokens(title string) []string {
	fields := strings.FieldsFunc(title, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '/' || r == '&' || r == '(' || r == ')'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".;:!?-'\"")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
