package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_NewURLsGetMonotonicIDs(t *testing.T) {
	r := NewResolver(41, nil)

	first := r.Resolve("https://www.linkedin.com/in/jane-doe/")
	assert.Equal(t, int64(42), first.ProfileID)
	assert.False(t, first.Duplicate)

	second := r.Resolve("https://www.linkedin.com/in/john-smith/")
	assert.Equal(t, int64(43), second.ProfileID)
	assert.False(t, second.Duplicate)
}

func TestResolve_KnownURLIsDuplicate(t *testing.T) {
	r := NewResolver(100, map[string]int64{
		"https://www.linkedin.com/in/jane-doe": 7,
	})

	res := r.Resolve("https://www.linkedin.com/in/jane-doe/")
	assert.True(t, res.Duplicate)
	assert.Equal(t, int64(7), res.ProfileID)

	// A fresh URL still allocates above the high-water mark, not above the
	// duplicate's ID.
	fresh := r.Resolve("https://www.linkedin.com/in/john-smith")
	assert.False(t, fresh.Duplicate)
	assert.Equal(t, int64(101), fresh.ProfileID)
}

func TestResolve_SameURLTwiceInBatch(t *testing.T) {
	r := NewResolver(0, nil)

	first := r.Resolve("https://www.linkedin.com/in/jane-doe")
	repeat := r.Resolve("https://www.linkedin.com/in/jane-doe")

	assert.False(t, first.Duplicate)
	assert.True(t, repeat.Duplicate)
	assert.Equal(t, first.ProfileID, repeat.ProfileID)

	next := r.Resolve("https://www.linkedin.com/in/john-smith")
	assert.Equal(t, first.ProfileID+1, next.ProfileID)
}

func TestResolve_CanonicalizesBeforeComparing(t *testing.T) {
	r := NewResolver(0, map[string]int64{
		"https://www.linkedin.com/in/Jane-Doe/": 3,
	})

	res := r.Resolve("  https://www.linkedin.com/in/jane-doe ")
	assert.True(t, res.Duplicate)
	assert.Equal(t, int64(3), res.ProfileID)
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.linkedin.com/in/jane-doe/", "https://www.linkedin.com/in/jane-doe"},
		{"  https://www.linkedin.com/in/Jane-Doe  ", "https://www.linkedin.com/in/jane-doe"},
		{"https://www.linkedin.com/in/jane-doe//", "https://www.linkedin.com/in/jane-doe"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalURL(tt.in))
	}
}
