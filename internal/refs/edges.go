package refs

import (
	"sort"

	"github.com/chiselkit/chisel/pkg/core"
)

// Index holds every segment's declarations plus the derived cross-segment
// edges for one document.
type Index struct {
	// Decls maps segment name to its top-level declarations.
	Decls map[string][]Decl
	// Edges are the derived cross-segment references, ordered by
	// consumer, provider, symbol.
	Edges []core.ReferenceEdge
	// Graph is the segment dependency graph built from Edges.
	Graph *Graph
}

// Build scans every segment for declarations and derives a ReferenceEdge
// for each symbol one segment consumes from another.
func Build(doc *core.Document, segments []core.Segment) (*Index, error) {
	idx := &Index{
		Decls: make(map[string][]Decl, len(segments)),
		Graph: NewGraph(),
	}

	for i := range segments {
		seg := &segments[i]
		idx.Decls[seg.Name] = ScanDecls(doc, seg)
		idx.Graph.AddNode(seg.Name)
	}

	for i := range segments {
		consumer := &segments[i]
		body := consumer.RawText(doc)

		for j := range segments {
			provider := &segments[j]
			if provider.Name == consumer.Name {
				continue
			}
			for _, d := range idx.Decls[provider.Name] {
				if !Uses(body, d.Name) {
					continue
				}
				idx.Edges = append(idx.Edges, core.ReferenceEdge{
					From:   consumer.Name,
					To:     provider.Name,
					Symbol: d.Name,
				})
				if err := idx.Graph.AddEdge(provider.Name, consumer.Name); err != nil {
					return nil, err
				}
			}
		}
	}

	sort.Slice(idx.Edges, func(a, b int) bool {
		x, y := idx.Edges[a], idx.Edges[b]
		if x.From != y.From {
			return x.From < y.From
		}
		if x.To != y.To {
			return x.To < y.To
		}
		return x.Symbol < y.Symbol
	})
	return idx, nil
}

// DeclFor finds the declaration of symbol in the named segment.
func (idx *Index) DeclFor(segment, symbol string) (Decl, bool) {
	for _, d := range idx.Decls[segment] {
		if d.Name == symbol {
			return d, true
		}
	}
	return Decl{}, false
}
