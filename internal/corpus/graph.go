package corpus

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Neighbor is one edge out of a graph node.
type Neighbor struct {
	Name   string
	Weight float64
}

// Graph is a read-only weighted artist-similarity graph.
type Graph struct {
	adj      map[string]map[string]float64
	edges    int
	directed bool
}

// Neighbors returns the direct neighbours of name in unspecified order.
// The second result is false when name is not a node.
func (g *Graph) Neighbors(name string) ([]Neighbor, bool) {
	nbrs, ok := g.adj[name]
	if !ok {
		return nil, false
	}
	out := make([]Neighbor, 0, len(nbrs))
	for n, w := range nbrs {
		out = append(out, Neighbor{Name: n, Weight: w})
	}
	return out, true
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.adj) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Directed reports whether the source declared directed edges.
func (g *Graph) Directed() bool { return g.directed }

// GraphML document layout. Only the parts needed for a weighted node/edge
// list are decoded; other keys and data elements are ignored.
type graphmlDoc struct {
	XMLName xml.Name       `xml:"graphml"`
	Keys    []graphmlKey   `xml:"key"`
	Graphs  []graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID      string `xml:"id,attr"`
	For     string `xml:"for,attr"`
	Name    string `xml:"attr.name,attr"`
	Default string `xml:"default"`
}

type graphmlGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID string `xml:"id,attr"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// ReadGraphML parses the first graph of a GraphML document. Edge weights
// come from the edge key whose attr.name is "weight"; a missing value falls
// back to the key default, then to 0.
func ReadGraphML(r io.Reader) (*Graph, error) {
	var doc graphmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding graphml: %w", err)
	}
	if len(doc.Graphs) == 0 {
		return nil, fmt.Errorf("graphml contains no graph element")
	}

	weightKey, defaultWeight, err := findWeightKey(doc.Keys)
	if err != nil {
		return nil, err
	}

	src := doc.Graphs[0]
	g := &Graph{
		adj:      make(map[string]map[string]float64, len(src.Nodes)),
		directed: src.EdgeDefault == "directed",
	}

	for _, n := range src.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("graphml node without id")
		}
		g.addNode(n.ID)
	}

	for i, e := range src.Edges {
		if e.Source == "" || e.Target == "" {
			return nil, fmt.Errorf("graphml edge %d: missing source or target", i)
		}
		w := defaultWeight
		for _, d := range e.Data {
			if weightKey == "" || d.Key != weightKey {
				continue
			}
			w, err = parseWeight(d.Value)
			if err != nil {
				return nil, fmt.Errorf("graphml edge %d (%s -> %s): %w", i, e.Source, e.Target, err)
			}
		}
		g.addEdge(e.Source, e.Target, w)
	}

	return g, nil
}

func findWeightKey(keys []graphmlKey) (id string, def float64, err error) {
	for _, k := range keys {
		if k.Name != "weight" || (k.For != "edge" && k.For != "all") {
			continue
		}
		if strings.TrimSpace(k.Default) != "" {
			def, err = parseWeight(k.Default)
			if err != nil {
				return "", 0, fmt.Errorf("graphml weight key default: %w", err)
			}
		}
		return k.ID, def, nil
	}
	return "", 0, nil
}

// parseWeight coerces a GraphML data value to float64. Weights may be
// written as numbers or as quoted numeric strings.
func parseWeight(s string) (float64, error) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" {
		return 0, nil
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid weight %q", s)
	}
	return w, nil
}

func (g *Graph) addNode(id string) {
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = make(map[string]float64)
	}
}

// addEdge links source and target. Repeated edges overwrite the weight.
func (g *Graph) addEdge(source, target string, w float64) {
	g.addNode(source)
	g.addNode(target)
	if _, exists := g.adj[source][target]; !exists {
		g.edges++
	}
	g.adj[source][target] = w
	if !g.directed {
		g.adj[target][source] = w
	}
}
