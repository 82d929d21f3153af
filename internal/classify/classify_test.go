package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/profile-cli/internal/model"
)

func testEmployers() *EmployerSet {
	return NewEmployerSet([]string{
		"alphabet", "meta platforms", "microsoft", "apple", "amazon",
		"walmart", "berkshire hathaway", "exxon mobil",
	})
}

func TestNormalizeEmployer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Google Inc", "alphabet"},
		{"google llc", "alphabet"},
		{"YouTube", "alphabet"},
		{"Facebook", "meta platforms"},
		{"Meta", "meta platforms"},
		{"Microsoft Corporation", "microsoft"},
		{"Amazon.com", "amazon"},
		{"Acme Inc", "acme"},
		{"Acme Holdings LLC", "acme"},
		{"Initech Technologies", "initech"},
		{"  Walmart  ", "walmart"},
		{"Café Corp", "cafe"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmployer(tt.in), "input %q", tt.in)
	}
}

func TestFortuneMatch(t *testing.T) {
	c := New(testEmployers())

	tests := []struct {
		company string
		want    bool
	}{
		{"Google Inc", true},        // variation map -> alphabet, exact member
		{"Microsoft", true},         // exact member
		{"microsoft corporation", true},
		{"Microsft", true},            // similarity > 85
		{"Berkshire", true},           // substring of reference entry
		{"Walmart Global Tech", true}, // reference contained in name
		{"Corner Bakery", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.FortuneMatch(tt.company), "company %q", tt.company)
	}
}

func TestFortuneMatch_SubstringBothDirections(t *testing.T) {
	c := New(NewEmployerSet([]string{"exxon mobil"}))
	assert.True(t, c.FortuneMatch("Exxon"))            // name inside reference
	assert.True(t, c.FortuneMatch("Exxon Mobil Asia")) // reference inside name
}

func TestLeadershipMatch(t *testing.T) {
	c := New(testEmployers())

	tests := []struct {
		title string
		want  bool
	}{
		{"Senior Manager, Growth", true}, // exact token "manager"
		{"CEO", true},
		{"Head of Product", true},
		{"VP Sales", true},
		{"SeniorManager", true},         // camel-case split before tokenizing
		{"Vice Presidant of Ops", true}, // phrase similarity over threshold
		{"Software Engineer", false},
		{"Data Analyst", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.LeadershipMatch(tt.title), "title %q", tt.title)
	}
}

func TestLeadershipMatch_ThresholdConfigurable(t *testing.T) {
	strict := New(testEmployers(), WithLeadershipThreshold(99))
	assert.False(t, strict.LeadershipMatch("Vice Presidant of Ops"))
	// Exact token matches are not subject to the threshold.
	assert.True(t, strict.LeadershipMatch("Senior Manager"))
}

func TestEntrepreneurMatch(t *testing.T) {
	c := New(testEmployers())

	tests := []struct {
		name    string
		title   string
		company string
		owner   string
		want    bool
	}{
		{name: "founder_keyword", title: "Founder & CEO", company: "Acme", owner: "Jane Doe", want: true},
		{name: "cofounder", title: "Co-Founder", company: "Acme", owner: "", want: true},
		{name: "business_owner", title: "Business Owner", company: "Corner Bakery", owner: "", want: true},
		{name: "eponymous", title: "Principal", company: "Jane Doe Consulting", owner: "Jane Doe", want: true},
		{name: "eponymous_case_insensitive", title: "Principal", company: "JANE DOE LLC", owner: "jane doe", want: true},
		{name: "plain_employee", title: "Engineer", company: "Initech", owner: "Jane Doe", want: false},
		{name: "empty", title: "", company: "", owner: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.EntrepreneurMatch(tt.title, tt.company, tt.owner))
		})
	}
}

func TestApply(t *testing.T) {
	c := New(testEmployers())

	b := &model.Bundle{
		Profile: model.Profile{FullName: "Jane Doe"},
		Experiences: []model.Experience{
			{Title: "Founder & CEO", Company: "Jane Doe Labs"},
			{Title: "Engineer", Company: "Google Inc"},
		},
	}

	flags := c.Apply(b)
	// Only the most recent entry is examined: the old Google role does not
	// produce a fortune flag.
	assert.False(t, flags.Fortune500)
	assert.True(t, flags.LeadershipRole)
	assert.True(t, flags.Entrepreneur)
}

func TestApply_EmptyExperiences(t *testing.T) {
	c := New(testEmployers())
	flags := c.Apply(&model.Bundle{Profile: model.Profile{FullName: "Jane Doe"}})
	assert.Equal(t, Flags{}, flags)
}

func TestApply_DoesNotMutate(t *testing.T) {
	c := New(testEmployers())
	b := &model.Bundle{
		Profile:     model.Profile{FullName: "Jane Doe"},
		Experiences: []model.Experience{{Title: "Founder", Company: "Jane Doe Labs"}},
	}
	before := *b
	_ = c.Apply(b)
	assert.Equal(t, before, *b)
}

func TestLoadEmployers(t *testing.T) {
	set, err := LoadEmployers()
	require.NoError(t, err)
	assert.Greater(t, set.Len(), 100)
	assert.True(t, set.Contains("alphabet"))
	assert.True(t, set.Contains("meta platforms"))
	assert.True(t, set.Contains("walmart"))
}

func TestLevenshteinScorer(t *testing.T) {
	s := LevenshteinScorer{}
	assert.Equal(t, 100, s.Score("microsoft", "microsoft"))
	assert.Equal(t, 0, s.Score("", "microsoft"))
	assert.Greater(t, s.Score("microsft", "microsoft"), 85)
	assert.Less(t, s.Score("walmart", "microsoft"), 40)
}

func TestTokenSetScorer(t *testing.T) {
	s := TokenSetScorer{}
	// Word order and extra tokens in the candidate do not matter.
	assert.Equal(t, 100, s.Score("senior vice president of sales", "vice president"))
	assert.GreaterOrEqual(t, s.Score("vice presidant of ops", "vice president"), 65)
	assert.Less(t, s.Score("software engineer", "department head"), 65)
	assert.Equal(t, 0, s.Score("", "vice president"))
}

func TestSplitCamelCase(t *testing.T) {
	assert.Equal(t, "Senior Manager", splitCamelCase("SeniorManager"))
	assert.Equal(t, "Vice President", splitCamelCase("VicePresident"))
	assert.Equal(t, "already spaced", splitCamelCase("already spaced"))
	assert.Equal(t, "", splitCamelCase(""))
}
