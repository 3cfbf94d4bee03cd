package rewrite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chiselkit/chisel/internal/refs"
	"github.com/chiselkit/chisel/pkg/core"
)

// buildShim reduces the original document to a re-export shim so that
// every name previously importable from the original path keeps working.
// Renamed symbols that were part of the original public surface are
// re-exported under their old name as an alias.
func buildShim(doc *core.Document, segs []core.Segment, idx *refs.Index, renames []core.Rename, renameMap map[string]string, spec core.ShimSpec) (core.RewrittenFile, error) {
	// Old-name aliases for originally exported symbols that were renamed.
	alias := make(map[string]string)
	for _, r := range renames {
		for _, decls := range idx.Decls {
			for _, d := range decls {
				if d.Name == r.From && d.Exported {
					alias[r.To] = r.From
				}
			}
		}
	}

	var b strings.Builder
	if spec.Header != "" {
		b.WriteString(spec.Header)
		if !strings.HasSuffix(spec.Header, "\n") {
			b.WriteString("\n")
		}
	}

	// Segments sharing a destination contribute to one export line.
	var destOrder []string
	byDest := make(map[string]map[string]bool)
	for i := range segs {
		seg := &segs[i]
		if seg.Dest == doc.Path() {
			return core.RewrittenFile{}, fmt.Errorf(
				"segment %q still targets %s; a shim requires every segment to move elsewhere", seg.Name, doc.Path())
		}

		names := exposedNames(seg, idx, renameMap)
		if len(names) == 0 {
			continue
		}
		if byDest[seg.Dest] == nil {
			destOrder = append(destOrder, seg.Dest)
			byDest[seg.Dest] = make(map[string]bool)
		}
		for _, n := range names {
			byDest[seg.Dest][n] = true
			if old, ok := alias[n]; ok {
				byDest[seg.Dest][fmt.Sprintf("%s as %s", n, old)] = true
			}
		}
	}

	for _, dest := range destOrder {
		entries := make([]string, 0, len(byDest[dest]))
		for e := range byDest[dest] {
			entries = append(entries, e)
		}
		sort.Strings(entries)
		fmt.Fprintf(&b, "export { %s } from %q\n",
			strings.Join(entries, ", "), importPath(doc.Path(), dest))
	}

	if len(destOrder) == 0 {
		return core.RewrittenFile{}, fmt.Errorf("shim for %s would re-export nothing; check segment visibility policies", doc.Path())
	}

	return core.RewrittenFile{
		Path:     doc.Path(),
		Body:     b.String(),
		Segments: []string{"shim"},
		Shim:     true,
	}, nil
}

// followUps lists rename consequences chisel will not apply: call sites
// in files outside this plan. With a shim in place the old exported name
// keeps resolving, so only shimless runs leave work behind.
func followUps(doc *core.Document, idx *refs.Index, renames []core.Rename, shim core.ShimSpec) []string {
	var out []string
	for _, r := range renames {
		exported := false
		for _, decls := range idx.Decls {
			for _, d := range decls {
				if d.Name == r.From && d.Exported {
					exported = true
				}
			}
		}
		if !exported {
			continue
		}
		if shim.Enabled {
			// The shim aliases the old name; external imports keep working.
			continue
		}
		out = append(out, fmt.Sprintf(
			"%s: exported symbol %s was renamed to %s; imports in files outside this plan must be updated by hand",
			doc.Path(), r.From, r.To))
	}
	return out
}
