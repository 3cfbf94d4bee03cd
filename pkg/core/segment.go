package core

import "fmt"

// Visibility is a segment's symbol visibility policy.
type Visibility string

const (
	// ExportAll exposes every symbol the segment defines.
	ExportAll Visibility = "export-all"
	// ExportListed exposes only the symbols named on the segment.
	ExportListed Visibility = "export-listed"
	// ExportNone exposes nothing.
	ExportNone Visibility = "export-none"
)

// Segment is a contiguous half-open line range [Start, End) of a document,
// assigned to one output destination.
type Segment struct {
	// Name identifies the segment in plans and error messages.
	Name string
	// Start is the first line index of the segment (inclusive).
	Start int
	// End is one past the last line index (exclusive).
	End int
	// Dest is the destination path or module name.
	Dest string
	// Policy is the visibility policy for symbols the segment defines.
	Policy Visibility
	// Exports lists exposed symbols when Policy is ExportListed.
	Exports []string
	// TrimmedLeading and TrimmedTrailing record blank-line bytes removed
	// from the segment's own boundary so the partition integrity check can
	// account for every byte.
	TrimmedLeading  string
	TrimmedTrailing string
}

// LineCount returns the number of lines spanned by the segment.
func (s *Segment) LineCount() int { return s.End - s.Start }

// Text returns the segment's raw text from the document, trimming applied.
func (s *Segment) Text(doc *Document) string {
	text := doc.Slice(s.Start, s.End)
	text = text[len(s.TrimmedLeading) : len(text)-len(s.TrimmedTrailing)]
	return text
}

// RawText returns the segment's untrimmed text from the document.
func (s *Segment) RawText(doc *Document) string {
	return doc.Slice(s.Start, s.End)
}

// Exposes reports whether the segment's policy makes symbol visible to
// other segments.
func (s *Segment) Exposes(symbol string) bool {
	switch s.Policy {
	case ExportAll:
		return true
	case ExportListed:
		for _, name := range s.Exports {
			if name == symbol {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Range renders the segment's line range for reports.
func (s *Segment) Range() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// ParseVisibility validates a visibility policy string from external
// configuration.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case ExportAll, ExportListed, ExportNone:
		return Visibility(s), nil
	case "":
		return ExportNone, nil
	}
	return "", fmt.Errorf("unknown visibility policy %q (want export-all, export-listed or export-none)", s)
}
