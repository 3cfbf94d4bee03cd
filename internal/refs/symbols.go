// Package refs derives cross-segment symbol dependencies. It finds
// top-level declarations with line-shape heuristics (no AST is built) and
// records a ReferenceEdge wherever one segment uses a symbol another
// segment defines.
package refs

import (
	"regexp"
	"sync"

	"github.com/chiselkit/chisel/pkg/core"
)

// Decl is a top-level declaration found in a segment.
type Decl struct {
	// Name is the declared identifier.
	Name string
	// Line is the document line offset of the declaration.
	Line int
	// Exported is true when the declaration already carries an export.
	Exported bool
	// Kind is the declaration form (function, const, class, ...).
	Kind string
}

// Top-level declaration shapes. Column-zero only: indentation means the
// declaration is nested and not part of a segment's public surface.
var declPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(export\s+)?(?:default\s+)?(?:async\s+)?(function)\s+([A-Za-z_$][\w$]*)`),
	regexp.MustCompile(`^(export\s+)?(?:abstract\s+)?(class)\s+([A-Za-z_$][\w$]*)`),
	regexp.MustCompile(`^(export\s+)?(interface|enum)\s+([A-Za-z_$][\w$]*)`),
	regexp.MustCompile(`^(export\s+)?(const|let|var)\s+([A-Za-z_$][\w$]*)\s*=`),
	regexp.MustCompile(`^(export\s+)?(type)\s+([A-Za-z_$][\w$]*)\s*=`),
}

// MatchDecl checks a single line (terminator stripped) against the
// top-level declaration shapes.
func MatchDecl(line string) (Decl, bool) {
	for _, re := range declPatterns {
		if m := re.FindStringSubmatch(line); m != nil {
			return Decl{Name: m[3], Exported: m[1] != "", Kind: m[2]}, true
		}
	}
	return Decl{}, false
}

// ScanDecls finds the top-level declarations inside a segment's range.
func ScanDecls(doc *core.Document, seg *core.Segment) []Decl {
	var decls []Decl
	for i := seg.Start; i < seg.End; i++ {
		if d, ok := MatchDecl(doc.Line(i)); ok {
			d.Line = i
			decls = append(decls, d)
		}
	}
	return decls
}

// Uses reports whether text references the identifier outside of string
// noise. Matching is word-boundary based; chisel deliberately does not
// distinguish shadowed locals, which only over-reports an edge and can
// never drop one.
func Uses(text, name string) bool {
	return IdentPattern(name).MatchString(text)
}

// IdentPattern returns a compiled whole-identifier pattern for name. The
// pattern has two capture groups around the identifier so callers can
// rewrite occurrences in place.
func IdentPattern(name string) *regexp.Regexp {
	return usePattern(name)
}

// Compiled use patterns are cached; batch runs share this across
// goroutines, hence the lock.
var (
	useMu       sync.Mutex
	usePatterns = map[string]*regexp.Regexp{}
)

func usePattern(name string) *regexp.Regexp {
	useMu.Lock()
	defer useMu.Unlock()
	if re, ok := usePatterns[name]; ok {
		return re
	}
	re := regexp.MustCompile(`(^|[^\w$])` + regexp.QuoteMeta(name) + `($|[^\w$])`)
	usePatterns[name] = re
	return re
}

