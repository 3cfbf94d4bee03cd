package core

import (
	"fmt"
	"regexp"
	"strings"
)

// MarkerKind selects how a marker's pattern is interpreted.
type MarkerKind string

const (
	// MarkerLiteral matches any line containing the pattern as a substring.
	MarkerLiteral MarkerKind = "literal"
	// MarkerRegex matches any line the compiled pattern matches.
	MarkerRegex MarkerKind = "regex"
	// MarkerDecl matches a line that opens a top-level declaration of the
	// named symbol (function/const/class/interface/type forms).
	MarkerDecl MarkerKind = "decl"
)

// MarkerRole describes what a marker's resolved line means for the
// partition.
type MarkerRole string

const (
	// RoleSegmentStart opens a segment; the matched line belongs to it.
	RoleSegmentStart MarkerRole = "segment-start"
	// RoleSegmentEnd closes a segment; the matched line belongs to the
	// segment it closes.
	RoleSegmentEnd MarkerRole = "segment-end"
	// RoleExclude marks a line used only for narrowing, never a boundary.
	RoleExclude MarkerRole = "exclude"
)

// Marker is a rule identifying one boundary line in a document. Markers
// are declared before a run; a marker that resolves to zero lines is
// always an error, and one that resolves to more than one line is an
// error when Unique is set.
type Marker struct {
	// ID identifies the marker in boundary maps and error messages.
	ID string
	// Kind selects the matching strategy.
	Kind MarkerKind
	// Pattern is the literal substring, regex source, or declared name.
	Pattern string
	// Role describes boundary ownership for the resolved line.
	Role MarkerRole
	// Unique requires exactly one match in the scanned range.
	Unique bool

	re *regexp.Regexp
}

// declForms are the top-level declaration shapes recognised by decl
// markers. Deliberately heuristic: chisel matches text, it does not parse.
var declForms = []string{
	"function %s",
	"async function %s",
	"const %s =",
	"let %s =",
	"var %s =",
	"class %s",
	"interface %s",
	"enum %s",
	"type %s =",
}

// NewLiteralMarker creates a substring marker.
func NewLiteralMarker(id, substr string, role MarkerRole) Marker {
	return Marker{ID: id, Kind: MarkerLiteral, Pattern: substr, Role: role, Unique: true}
}

// NewRegexMarker creates a regex marker. The pattern is compiled eagerly
// so an invalid pattern fails at declaration time, not mid-scan.
func NewRegexMarker(id, pattern string, role MarkerRole) (Marker, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Marker{}, fmt.Errorf("invalid marker pattern %q: %w", pattern, err)
	}
	return Marker{ID: id, Kind: MarkerRegex, Pattern: pattern, Role: role, Unique: true, re: re}, nil
}

// NewDeclMarker creates a marker matching the top-level declaration of
// the named symbol.
func NewDeclMarker(id, name string, role MarkerRole) Marker {
	return Marker{ID: id, Kind: MarkerDecl, Pattern: name, Role: role, Unique: true}
}

// Compile prepares a marker loaded from external configuration. It must
// be called before Matches for regex markers built without NewRegexMarker.
func (m *Marker) Compile() error {
	if m.Kind == MarkerRegex && m.re == nil {
		re, err := regexp.Compile(m.Pattern)
		if err != nil {
			return fmt.Errorf("invalid marker pattern %q: %w", m.Pattern, err)
		}
		m.re = re
	}
	return nil
}

// Matches reports whether the marker's predicate holds for one line.
// The line is expected without its terminator.
func (m *Marker) Matches(line string) bool {
	switch m.Kind {
	case MarkerLiteral:
		return strings.Contains(line, m.Pattern)
	case MarkerRegex:
		return m.re != nil && m.re.MatchString(line)
	case MarkerDecl:
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "export default ")
		trimmed = strings.TrimPrefix(trimmed, "export ")
		for _, form := range declForms {
			prefix := fmt.Sprintf(form, m.Pattern)
			if !strings.HasPrefix(trimmed, prefix) {
				continue
			}
			rest := trimmed[len(prefix):]
			// A form ending in the bare name needs a word boundary so that
			// "ToolBar" does not match "ToolBarItem".
			if strings.HasSuffix(prefix, m.Pattern) && rest != "" && isIdentChar(rest[0]) {
				continue
			}
			return true
		}
		return false
	default:
		return false
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Describe renders the marker for error messages.
func (m *Marker) Describe() string {
	return fmt.Sprintf("%s (%s %q)", m.ID, m.Kind, m.Pattern)
}
