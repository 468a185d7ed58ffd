// Package corpus loads the read-only artist data set the explorer serves:
// artist metadata, lyric analysis and the artist-similarity graph. Everything
// is read once at startup and never mutated, so a *Corpus can be shared by
// concurrent requests without locking.
package corpus

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/sydlexius/songscape/internal/document"
)

// Paths locates the three corpus artifacts on disk.
type Paths struct {
	Metadata string
	Lyrics   string
	Graph    string
}

// Stats summarises what was loaded.
type Stats struct {
	Artists    int `json:"artists"`
	Lyrics     int `json:"lyrics"`
	GraphNodes int `json:"graph_nodes"`
	GraphEdges int `json:"graph_edges"`
}

// Corpus is the in-memory artist data set.
type Corpus struct {
	names  []string
	meta   map[string]document.Document
	lyrics map[string]document.Document
	graph  *Graph
}

// Load reads all three artifacts. Any missing or malformed file is an error.
func Load(p Paths) (*Corpus, error) {
	meta, err := os.Open(p.Metadata)
	if err != nil {
		return nil, fmt.Errorf("opening artist metadata: %w", err)
	}
	defer meta.Close() //nolint:errcheck

	lyrics, err := os.Open(p.Lyrics)
	if err != nil {
		return nil, fmt.Errorf("opening lyrics analysis: %w", err)
	}
	defer lyrics.Close() //nolint:errcheck

	graph, err := os.Open(p.Graph)
	if err != nil {
		return nil, fmt.Errorf("opening similarity graph: %w", err)
	}
	defer graph.Close() //nolint:errcheck

	return Read(meta, lyrics, graph)
}

// Read builds a Corpus from already-open artifact streams.
func Read(metadata, lyrics, graph io.Reader) (*Corpus, error) {
	c := &Corpus{}
	var err error

	c.names, c.meta, err = readMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("reading artist metadata: %w", err)
	}
	c.lyrics, err = readLyrics(lyrics)
	if err != nil {
		return nil, fmt.Errorf("reading lyrics analysis: %w", err)
	}
	c.graph, err = ReadGraphML(graph)
	if err != nil {
		return nil, fmt.Errorf("reading similarity graph: %w", err)
	}
	return c, nil
}

// Names returns every known artist name in metadata file order.
func (c *Corpus) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Metadata returns the raw metadata object for name.
func (c *Corpus) Metadata(name string) (document.Document, bool) {
	d, ok := c.meta[name]
	return d, ok
}

// Lyrics returns the lyric analysis for name, or an empty object.
func (c *Corpus) Lyrics(name string) document.Document {
	if d, ok := c.lyrics[name]; ok {
		return d
	}
	return document.Empty()
}

// Graph returns the similarity graph.
func (c *Corpus) Graph() *Graph { return c.graph }

// Stats returns artifact sizes.
func (c *Corpus) Stats() Stats {
	return Stats{
		Artists:    len(c.names),
		Lyrics:     len(c.lyrics),
		GraphNodes: c.graph.NodeCount(),
		GraphEdges: c.graph.EdgeCount(),
	}
}

// readMetadata decodes a JSON array of artist objects keyed by "name".
// A repeated name replaces the earlier object but keeps its list position.
func readMetadata(r io.Reader) ([]string, map[string]document.Document, error) {
	var items []document.Document
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(items))
	meta := make(map[string]document.Document, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, nil, fmt.Errorf("entry %d is not an object", i)
		}
		var head struct {
			Name *string `json:"name"`
		}
		if err := json.Unmarshal(item, &head); err != nil {
			return nil, nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if head.Name == nil {
			return nil, nil, fmt.Errorf("entry %d has no name", i)
		}
		if _, seen := meta[*head.Name]; !seen {
			names = append(names, *head.Name)
		}
		meta[*head.Name] = item
	}
	return names, meta, nil
}

// readLyrics decodes a JSON object mapping artist name to analysis.
func readLyrics(r io.Reader) (map[string]document.Document, error) {
	var out map[string]document.Document
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("expected a JSON object")
	}
	return out, nil
}
