// Package identity assigns stable numeric profile IDs and deduplicates
// profiles by their source URL.
package identity

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrHighWaterMark indicates the persisted ID high-water mark could not be
// read. Without it new IDs cannot be allocated safely, so the batch aborts
// instead of risking collisions.
var ErrHighWaterMark = eris.New("identity: high-water mark unavailable")

// Resolution is the outcome of resolving one source URL.
type Resolution struct {
	ProfileID int64
	Duplicate bool
}

// Resolver allocates IDs above a high-water mark read once at batch start.
// Duplicates resolve to the ID already recorded for their URL, whether that
// assignment happened in a previous run or earlier in the same batch.
type Resolver struct {
	next  int64
	known map[string]int64
}

// NewResolver seeds a resolver with the current maximum assigned ID and the
// URL-to-ID assignments already persisted. The known map is copied.
func NewResolver(currentMax int64, known map[string]int64) *Resolver {
	r := &Resolver{
		next:  currentMax + 1,
		known: make(map[string]int64, len(known)),
	}
	for url, id := range known {
		r.known[CanonicalURL(url)] = id
	}
	return r
}

// Resolve returns the ID for a source URL, allocating the next free ID for
// URLs not seen before. Allocation is monotonic and never reuses an ID.
func (r *Resolver) Resolve(url string) Resolution {
	key := CanonicalURL(url)
	if id, ok := r.known[key]; ok {
		return Resolution{ProfileID: id, Duplicate: true}
	}
	id := r.next
	r.next++
	r.known[key] = id
	return Resolution{ProfileID: id}
}

// CanonicalURL normalizes a profile URL for dedup comparison: surrounding
// whitespace and the trailing slash are dropped and the URL is lowercased.
func CanonicalURL(raw string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(raw), "/"))
}
