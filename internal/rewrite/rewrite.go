// Package rewrite turns partitioned segments into self-sufficient output
// files: it synthesizes import headers for cross-segment references,
// promotes private symbols consumed by sibling segments, applies
// identifier renames, and optionally reduces the original document to a
// compatibility shim.
package rewrite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chiselkit/chisel/internal/refs"
	"github.com/chiselkit/chisel/pkg/core"
)

// Result is the output of rewriting one document's plan.
type Result struct {
	// Files are the assembled output files, in document order of their
	// first segment; the shim, when requested, comes last.
	Files []core.RewrittenFile
	// Promotions lists every visibility upgrade that was applied. Nothing
	// is promoted silently.
	Promotions []core.Promotion
	// ManualFollowUps lists rename consequences outside this plan's
	// segments that chisel detected but deliberately did not touch.
	ManualFollowUps []string
}

// Rewrite produces the output files for one document.
//
// Visibility upgrades run first: each cross-segment edge forces its
// provider to expose the consumed symbol, recorded as a Promotion. After
// the upgrade pass every edge is re-checked; a symbol left unexposed is a
// VisibilityConflictError, never a silent narrowing.
func Rewrite(doc *core.Document, segments []core.Segment, idx *refs.Index, renames []core.Rename, shim core.ShimSpec) (*Result, error) {
	segs := make([]core.Segment, len(segments))
	copy(segs, segments)
	byName := make(map[string]*core.Segment, len(segs))
	for i := range segs {
		byName[segs[i].Name] = &segs[i]
	}

	res := &Result{}
	if err := promote(byName, idx, res); err != nil {
		return nil, err
	}

	renameMap, err := buildRenameMap(renames)
	if err != nil {
		return nil, err
	}
	applyRenameToExports(segs, renames, idx, renameMap)

	files, err := assembleFiles(doc, segs, idx, renameMap)
	if err != nil {
		return nil, err
	}
	res.Files = files

	if shim.Enabled {
		shimFile, err := buildShim(doc, segs, idx, renames, renameMap, shim)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, shimFile)
	}

	res.ManualFollowUps = followUps(doc, idx, renames, shim)
	return res, nil
}

// promote upgrades provider visibility for every cross-segment edge and
// records each upgrade.
func promote(byName map[string]*core.Segment, idx *refs.Index, res *Result) error {
	promoted := make(map[string]bool)

	for _, edge := range idx.Edges {
		provider, ok := byName[edge.To]
		if !ok {
			return fmt.Errorf("edge references unknown segment %q", edge.To)
		}
		if exposes(provider, idx, edge.Symbol) {
			continue
		}

		key := edge.To + "\x00" + edge.Symbol
		if !promoted[key] {
			promoted[key] = true
			res.Promotions = append(res.Promotions, core.Promotion{
				Segment:   edge.To,
				Symbol:    edge.Symbol,
				WasPolicy: provider.Policy,
			})
		}

		switch provider.Policy {
		case core.ExportNone:
			provider.Policy = core.ExportListed
			provider.Exports = append(provider.Exports, edge.Symbol)
		case core.ExportListed:
			provider.Exports = append(provider.Exports, edge.Symbol)
		}
	}

	// Post-condition: no cross-referenced symbol may remain hidden.
	for _, edge := range idx.Edges {
		if !exposes(byName[edge.To], idx, edge.Symbol) {
			return &core.VisibilityConflictError{
				Symbol:   edge.Symbol,
				Provider: edge.To,
				Consumer: edge.From,
			}
		}
	}
	return nil
}

// exposes extends the segment's policy with the source's own surface: a
// declaration already exported in the original text stays exported no
// matter what the plan's policy says.
func exposes(seg *core.Segment, idx *refs.Index, symbol string) bool {
	if seg.Exposes(symbol) {
		return true
	}
	d, ok := idx.DeclFor(seg.Name, symbol)
	return ok && d.Exported
}

func buildRenameMap(renames []core.Rename) (map[string]string, error) {
	m := make(map[string]string, len(renames))
	for _, r := range renames {
		if r.From == "" || r.To == "" {
			return nil, fmt.Errorf("rename needs both from and to (got %q -> %q)", r.From, r.To)
		}
		if prev, dup := m[r.From]; dup && prev != r.To {
			return nil, fmt.Errorf("conflicting renames for %q: %q and %q", r.From, prev, r.To)
		}
		m[r.From] = r.To
	}
	return m, nil
}

// applyRenameToExports rewrites export lists to the post-rename names and
// marks rename targets with Export set for exposure.
func applyRenameToExports(segs []core.Segment, renames []core.Rename, idx *refs.Index, renameMap map[string]string) {
	for i := range segs {
		seg := &segs[i]
		for j, name := range seg.Exports {
			if to, ok := renameMap[name]; ok {
				seg.Exports[j] = to
			}
		}
		for _, r := range renames {
			if !r.Export {
				continue
			}
			if _, defined := idx.DeclFor(seg.Name, r.From); !defined {
				continue
			}
			if seg.Policy == core.ExportAll || seg.Exposes(r.To) {
				continue
			}
			if seg.Policy == core.ExportNone {
				seg.Policy = core.ExportListed
			}
			seg.Exports = append(seg.Exports, r.To)
		}
	}
}

// exposedNames returns the segment's final exported symbol set after
// renames, sorted. Declarations already exported in the source count
// regardless of the plan's policy.
func exposedNames(seg *core.Segment, idx *refs.Index, renameMap map[string]string) []string {
	var names []string
	switch seg.Policy {
	case core.ExportAll:
		for _, d := range idx.Decls[seg.Name] {
			names = append(names, renamed(d.Name, renameMap))
		}
	case core.ExportListed:
		names = append([]string(nil), seg.Exports...)
	}
	for _, d := range idx.Decls[seg.Name] {
		if d.Exported {
			names = append(names, renamed(d.Name, renameMap))
		}
	}
	sort.Strings(names)
	return dedup(names)
}

func renamed(name string, renameMap map[string]string) string {
	if to, ok := renameMap[name]; ok {
		return to
	}
	return name
}

func dedup(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || sorted[i-1] != s {
			out = append(out, s)
		}
	}
	return out
}

// segmentBody renders one segment's rewritten text: renames applied
// everywhere, export prefixes added to newly exposed declarations.
func segmentBody(doc *core.Document, seg *core.Segment, idx *refs.Index, renameMap map[string]string) string {
	text := seg.Text(doc)

	for from, to := range renameMap {
		text = replaceIdent(text, from, to)
	}

	exported := make(map[string]bool)
	for _, name := range exposedNames(seg, idx, renameMap) {
		exported[name] = true
	}
	if len(exported) == 0 {
		return text
	}
	return exportDecls(text, exported)
}

// replaceIdent replaces whole-identifier occurrences of from with to.
// The boundary groups consume a neighbouring character, so back-to-back
// occurrences like "f(f(x))" need a second pass to catch matches whose
// leading boundary was eaten by the previous replacement.
func replaceIdent(text, from, to string) string {
	re := refs.IdentPattern(from)
	text = re.ReplaceAllString(text, "${1}"+to+"${2}")
	return re.ReplaceAllString(text, "${1}"+to+"${2}")
}

// exportDecls prepends "export " to column-zero declarations of the given
// names that are not already exported.
func exportDecls(text string, names map[string]bool) string {
	lines := strings.SplitAfter(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "export ") {
			continue
		}
		d, ok := refs.MatchDecl(strings.TrimRight(line, "\r\n"))
		if !ok || !names[d.Name] {
			continue
		}
		lines[i] = "export " + line
	}
	return strings.Join(lines, "")
}
