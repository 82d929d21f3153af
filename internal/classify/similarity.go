package classify

import "strings"

// Scorer computes a similarity score between two strings on a 0-100 scale.
// The concrete algorithm is pluggable so matchers can swap edit-distance for
// token-based scoring without touching classification logic.
type Scorer interface {
	Score(a, b string) int
}

// LevenshteinScorer scores by edit-distance ratio.
type LevenshteinScorer struct{}

func (LevenshteinScorer) Score(a, b string) int {
	if a == b {
		return 100
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	dist := levenshteinDistance(a, b)
	return (la + lb - 2*dist) * 100 / (la + lb)
}

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// TokenSetScorer scores how well the tokens of b are covered by the tokens of
// a: each token of b is matched against its closest token of a by edit
// distance and the per-token scores are averaged. Word order does not matter,
// and extra tokens in a carry no penalty, which suits matching short phrases
// against longer free-form titles.
type TokenSetScorer struct{}

func (s TokenSetScorer) Score(a, b string) int {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	lev := LevenshteinScorer{}
	total := 0
	for _, tb := range tokensB {
		best := 0
		for _, ta := range tokensA {
			if sc := lev.Score(ta, tb); sc > best {
				best = sc
			}
		}
		total += best
	}
	return total / len(tokensB)
}
