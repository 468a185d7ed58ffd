package artist

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultFuzzyCutoff is the minimum Ratio for a fuzzy match.
const DefaultFuzzyCutoff = 0.6

// Tier records which resolution strategy produced a match.
type Tier string

// Resolution tiers, strongest first.
const (
	TierExact     Tier = "exact"
	TierFuzzy     Tier = "fuzzy"
	TierSubstring Tier = "substring"
)

// Resolved is a canonical artist name chosen for a free-text query.
type Resolved struct {
	Name  string
	Tier  Tier
	Score float64
}

// Resolver maps free-text queries onto a fixed vocabulary of artist names.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	names  []string
	known  map[string]struct{}
	folded []string
	runes  [][]rune
	counts []map[rune]int
	cutoff float64
}

// NewResolver builds a resolver over names, which are searched in the given
// order for substring matches. A cutoff outside (0, 1] uses DefaultFuzzyCutoff.
func NewResolver(names []string, cutoff float64) *Resolver {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultFuzzyCutoff
	}
	fold := cases.Fold()
	r := &Resolver{
		names:  make([]string, len(names)),
		known:  make(map[string]struct{}, len(names)),
		folded: make([]string, len(names)),
		runes:  make([][]rune, len(names)),
		counts: make([]map[rune]int, len(names)),
		cutoff: cutoff,
	}
	copy(r.names, names)
	for i, n := range names {
		r.known[n] = struct{}{}
		r.folded[i] = fold.String(n)
		r.runes[i] = []rune(n)
		r.counts[i] = runeCounts(r.runes[i])
	}
	return r
}

// Resolve returns the best canonical name for query. It tries an exact
// match, then the highest fuzzy Ratio at or above the cutoff, then a
// case-insensitive substring match. The query is used as given; callers
// trim it first.
func (r *Resolver) Resolve(query string) (Resolved, bool) {
	if _, ok := r.known[query]; ok {
		return Resolved{Name: query, Tier: TierExact, Score: 1}, true
	}
	if res, ok := r.fuzzy(query); ok {
		return res, true
	}
	if res, ok := r.substring(query); ok {
		return res, true
	}
	return Resolved{}, false
}

// fuzzy picks the highest-scoring name. Equal scores go to the lexically
// greatest name so the result does not depend on vocabulary order.
//
// Names whose length or character multiset already caps the ratio below
// the cutoff are skipped before the quadratic block matching runs, so a
// long query costs roughly one pass over it rather than one per name.
func (r *Resolver) fuzzy(query string) (Resolved, bool) {
	q := []rune(query)
	var qCounts map[rune]int
	var best Resolved
	found := false
	for i, n := range r.names {
		total := len(r.runes[i]) + len(q)
		if total > 0 && bound(min(len(r.runes[i]), len(q)), total) < r.cutoff {
			continue
		}
		if qCounts == nil {
			qCounts = runeCounts(q)
		}
		if total > 0 && bound(commonRunes(r.counts[i], qCounts), total) < r.cutoff {
			continue
		}
		score := ratio(r.runes[i], q)
		if score < r.cutoff {
			continue
		}
		if !found || score > best.Score || (score == best.Score && n > best.Name) {
			best = Resolved{Name: n, Tier: TierFuzzy, Score: score}
			found = true
		}
	}
	return best, found
}

// bound is the ratio that matched characters out of total would give. Any
// upper bound on matched yields an upper bound on Ratio.
func bound(matched, total int) float64 {
	return 2 * float64(matched) / float64(total)
}

func runeCounts(rs []rune) map[rune]int {
	m := make(map[rune]int, len(rs))
	for _, c := range rs {
		m[c]++
	}
	return m
}

// commonRunes is the size of the multiset intersection of a and b.
func commonRunes(a, b map[rune]int) int {
	n := 0
	for c, ca := range a {
		n += min(ca, b[c])
	}
	return n
}

func (r *Resolver) substring(query string) (Resolved, bool) {
	q := cases.Fold().String(query)
	for i, f := range r.folded {
		if strings.Contains(f, q) {
			return Resolved{Name: r.names[i], Tier: TierSubstring, Score: Ratio(r.names[i], query)}, true
		}
	}
	return Resolved{}, false
}
