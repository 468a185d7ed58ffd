// Package recommend ranks an artist's neighbours in the similarity graph.
package recommend

import (
	"sort"

	"github.com/sydlexius/songscape/internal/corpus"
)

// DefaultTopN is the number of recommendations returned when none is requested.
const DefaultTopN = 5

// Graph is the read side of the similarity graph the engine needs.
type Graph interface {
	Neighbors(name string) ([]corpus.Neighbor, bool)
}

// Engine produces local recommendations from a similarity graph.
type Engine struct {
	graph Graph
}

// NewEngine creates an Engine over g.
func NewEngine(g Graph) *Engine {
	return &Engine{graph: g}
}

// Recommend returns up to topN neighbours of name, heaviest edge first.
// Equal weights are ordered by name. The artist itself is never included,
// and an artist missing from the graph gets an empty, non-nil slice.
func (e *Engine) Recommend(name string, topN int) []string {
	if topN <= 0 {
		return []string{}
	}
	nbrs, ok := e.graph.Neighbors(name)
	if !ok {
		return []string{}
	}

	ranked := make([]corpus.Neighbor, 0, len(nbrs))
	for _, n := range nbrs {
		if n.Name != name {
			ranked = append(ranked, n)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Name < ranked[j].Name
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	out := make([]string, len(ranked))
	for i, n := range ranked {
		out[i] = n.Name
	}
	return out
}
