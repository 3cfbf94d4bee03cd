// Package locator resolves boundary markers to stable line offsets.
// It is a pure read over the document: scanning never mutates anything,
// and a marker that cannot be resolved unambiguously is a hard failure.
package locator

import (
	"fmt"

	"github.com/chiselkit/chisel/pkg/core"
)

// Options controls how markers are scanned.
type Options struct {
	// Chained scans each marker from the previous marker's offset instead
	// of the top of the document. Markers must then be declared in
	// document order.
	Chained bool
}

// Locate resolves every marker to exactly one line offset, scanning from
// the top of the document. See LocateWith for ordered marker chains.
func Locate(doc *core.Document, markers []core.Marker) (map[string]int, error) {
	return LocateWith(doc, markers, Options{})
}

// LocateWith resolves markers with explicit scan options.
//
// A marker matching no line fails with BoundaryNotFoundError. A marker
// declared unique that matches more than one line fails with
// AmbiguousBoundaryError listing every candidate offset; the caller must
// narrow the predicate, no automatic choice is made.
func LocateWith(doc *core.Document, markers []core.Marker, opts Options) (map[string]int, error) {
	offsets := make(map[string]int, len(markers))
	from := 0

	for i := range markers {
		m := markers[i]
		if m.ID == "" {
			return nil, fmt.Errorf("marker %d has no id", i)
		}
		if _, dup := offsets[m.ID]; dup {
			return nil, fmt.Errorf("duplicate marker id %q", m.ID)
		}
		if err := m.Compile(); err != nil {
			return nil, err
		}

		start := 0
		if opts.Chained {
			start = from
		}

		candidates := scan(doc, &m, start)
		switch {
		case len(candidates) == 0:
			return nil, &core.BoundaryNotFoundError{Marker: m, Doc: doc.Path()}
		case len(candidates) > 1 && m.Unique:
			return nil, &core.AmbiguousBoundaryError{Marker: m, Doc: doc.Path(), Candidates: candidates}
		}

		offsets[m.ID] = candidates[0]
		from = candidates[0] + 1
	}

	return offsets, nil
}

// scan returns every line offset >= start whose content satisfies the
// marker's predicate, in document order.
func scan(doc *core.Document, m *core.Marker, start int) []int {
	var hits []int
	for i := start; i < doc.LineCount(); i++ {
		if m.Matches(doc.Line(i)) {
			hits = append(hits, i)
		}
	}
	return hits
}
