package rewrite

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chiselkit/chisel/internal/refs"
	"github.com/chiselkit/chisel/pkg/core"
)

// assembleFiles groups rewritten segments by destination, in document
// order, and prepends each file's synthesized import header.
func assembleFiles(doc *core.Document, segs []core.Segment, idx *refs.Index, renameMap map[string]string) ([]core.RewrittenFile, error) {
	destOf := make(map[string]string, len(segs))
	for i := range segs {
		destOf[segs[i].Name] = segs[i].Dest
	}

	var order []string
	grouped := make(map[string][]*core.Segment)
	for i := range segs {
		seg := &segs[i]
		if seg.Dest == "" {
			return nil, fmt.Errorf("segment %q has no destination", seg.Name)
		}
		if _, seen := grouped[seg.Dest]; !seen {
			order = append(order, seg.Dest)
		}
		grouped[seg.Dest] = append(grouped[seg.Dest], seg)
	}

	var files []core.RewrittenFile
	for _, dest := range order {
		members := grouped[dest]

		imports := fileImports(dest, members, idx, destOf, renameMap)
		header := renderImports(dest, imports)

		var names []string
		var body strings.Builder
		for _, seg := range members {
			names = append(names, seg.Name)
			body.WriteString(segmentBody(doc, seg, idx, renameMap))
		}

		content := body.String()
		if header != "" {
			if dest == doc.Path() {
				// The original file keeps its own import block; new
				// imports slot in after it rather than above it.
				content = insertAfterImports(content, header)
			} else {
				content = header + "\n" + content
			}
		}

		files = append(files, core.RewrittenFile{
			Path:     dest,
			Body:     content,
			Segments: names,
		})
	}
	return files, nil
}

// fileImports computes, for one destination file, the symbols it consumes
// from every other destination.
func fileImports(dest string, members []*core.Segment, idx *refs.Index, destOf map[string]string, renameMap map[string]string) map[string][]string {
	inFile := make(map[string]bool, len(members))
	for _, seg := range members {
		inFile[seg.Name] = true
	}

	bySource := make(map[string]map[string]bool)
	for _, edge := range idx.Edges {
		if !inFile[edge.From] || inFile[edge.To] {
			continue
		}
		src := destOf[edge.To]
		if src == dest {
			continue
		}
		if bySource[src] == nil {
			bySource[src] = make(map[string]bool)
		}
		bySource[src][renamed(edge.Symbol, renameMap)] = true
	}

	out := make(map[string][]string, len(bySource))
	for src, set := range bySource {
		names := make([]string, 0, len(set))
		for n := range set {
			names = append(names, n)
		}
		sort.Strings(names)
		out[src] = names
	}
	return out
}

// renderImports renders an ES-module import block, one line per source,
// sources sorted by their import path.
func renderImports(dest string, imports map[string][]string) string {
	if len(imports) == 0 {
		return ""
	}

	type line struct{ path, stmt string }
	lines := make([]line, 0, len(imports))
	for src, names := range imports {
		p := importPath(dest, src)
		lines = append(lines, line{
			path: p,
			stmt: fmt.Sprintf("import { %s } from %q\n", strings.Join(names, ", "), p),
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].path < lines[j].path })

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.stmt)
	}
	return b.String()
}

// importPath computes the module specifier from one file to another:
// relative, extension stripped, always dot-prefixed.
func importPath(from, to string) string {
	rel, err := filepath.Rel(filepath.Dir(from), to)
	if err != nil {
		rel = to
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

// insertAfterImports places header lines after the last top-level import
// statement, or at the top when the file has none.
func insertAfterImports(content, header string) string {
	lines := strings.SplitAfter(content, "\n")
	last := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "import{") {
			last = i
		}
	}
	if last < 0 {
		return header + "\n" + content
	}

	var b strings.Builder
	for i, line := range lines {
		b.WriteString(line)
		if i == last {
			b.WriteString(header)
		}
	}
	return b.String()
}
