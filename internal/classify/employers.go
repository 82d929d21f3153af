package classify

import (
	_ "embed"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed employers.yaml
var employersYAML []byte

// employerVariations maps well-known subsidiary and legal-entity names to the
// parent name as it appears in the reference set.
var employerVariations = map[string]string{
	// Alphabet family
	"google":     "alphabet",
	"google inc": "alphabet",
	"google llc": "alphabet",
	"youtube":    "alphabet",
	"waymo":      "alphabet",
	"deepmind":   "alphabet",
	"calico":     "alphabet",
	"verily":     "alphabet",

	// Meta family
	"meta":      "meta platforms",
	"facebook":  "meta platforms",
	"instagram": "meta platforms",
	"whatsapp":  "meta platforms",
	"oculus":    "meta platforms",

	// Legal-name variants
	"microsoft corporation": "microsoft",
	"apple inc":             "apple",
	"amazon.com":            "amazon",
}

// employerSuffixes are corporate suffixes stripped during normalization,
// applied repeatedly so "acme holdings llc" reduces to "acme".
var employerSuffixes = []string{
	"inc", "corp", "corporation", "ltd", "llc",
	"company", "co", ".com", "group", "plc",
	"holdings", "holding", "technologies", "technology",
}

// foldAccents strips combining diacritical marks so "Nestlé" and "Nestle"
// normalize to the same key.
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// EmployerSet is an immutable reference set of large-employer names, built
// once at pipeline startup and injected into the classifier.
type EmployerSet struct {
	names []string
	index map[string]struct{}
}

// LoadEmployers builds the reference set from the embedded data file.
func LoadEmployers() (*EmployerSet, error) {
	var data struct {
		Companies []string `yaml:"companies"`
	}
	if err := yaml.Unmarshal(employersYAML, &data); err != nil {
		return nil, eris.Wrap(err, "classify: parse employers data")
	}
	if len(data.Companies) == 0 {
		return nil, eris.New("classify: empty employers data")
	}
	return NewEmployerSet(data.Companies), nil
}

// NewEmployerSet builds a reference set from explicit names. Intended for
// tests and alternate reference data.
func NewEmployerSet(names []string) *EmployerSet {
	s := &EmployerSet{
		names: make([]string, 0, len(names)),
		index: make(map[string]struct{}, len(names)),
	}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, dup := s.index[n]; dup {
			continue
		}
		s.names = append(s.names, n)
		s.index[n] = struct{}{}
	}
	return s
}

// Contains reports exact membership of an already-normalized name.
func (s *EmployerSet) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns the reference names. Callers must not modify the slice.
func (s *EmployerSet) Names() []string {
	return s.names
}

// Len returns the number of reference names.
func (s *EmployerSet) Len() int {
	return len(s.names)
}

// NormalizeEmployer canonicalizes an employer name for matching: accents are
// folded, the name is lowercased and trimmed, known variations map to their
// parent name, and corporate suffixes are stripped.
func NormalizeEmployer(name string) string {
	if name == "" {
		return ""
	}
	if folded, _, err := transform.String(foldAccents, name); err == nil {
		name = folded
	}
	name = strings.ToLower(strings.TrimSpace(name))

	// Variation lookup: exact first, then first word.
	if parent, ok := employerVariations[name]; ok {
		return parent
	}
	if first, _, found := strings.Cut(name, " "); found {
		if parent, ok := employerVariations[first]; ok {
			return parent
		}
	}

	// Strip suffixes from the end, repeatedly, so stacked suffixes collapse.
	for {
		stripped := false
		for _, suffix := range employerSuffixes {
			if trimmed := strings.TrimSuffix(name, " "+suffix); trimmed != name {
				name = strings.TrimSpace(trimmed)
				stripped = true
			} else if trimmed := strings.TrimSuffix(name, suffix); suffix == ".com" && trimmed != name {
				name = strings.TrimSpace(trimmed)
				stripped = true
			}
		}
		if !stripped {
			break
		}
	}
	return strings.TrimSpace(name)
}
