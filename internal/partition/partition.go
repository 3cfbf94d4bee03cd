// Package partition cuts a document into an ordered sequence of named
// segments and proves no byte was lost or duplicated in the process.
//
// Boundary ownership follows the half-open interval model: a
// segment-start line belongs to the segment it opens, a segment-end
// offset is exclusive and its line belongs to the next range. Untagged
// line ranges between declared segments become passthrough segments
// destined for the original document path.
package partition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chiselkit/chisel/pkg/core"
)

// Spec describes one declared segment before partitioning.
type Spec struct {
	// Name identifies the segment.
	Name string
	// Start is the resolved line offset opening the segment.
	Start int
	// End is the exclusive closing offset, or -1 to run until the next
	// declared segment (or the document end).
	End int
	// Dest is the destination path for the segment's content.
	Dest string
	// Policy is the segment's visibility policy.
	Policy core.Visibility
	// Exports lists exposed symbols for an export-listed policy.
	Exports []string
	// TrimBlank trims leading/trailing blank lines off the segment's own
	// boundary. Trimmed bytes are recorded on the segment, never dropped
	// from the integrity accounting.
	TrimBlank bool
}

// Partition cuts the document at the declared segment boundaries.
//
// The post-condition is checked before returning: concatenating the raw
// text of every returned segment (passthrough ranges included, trimmed
// bytes re-attached) must reproduce the document byte-for-byte, else
// Partition fails with PartitionIntegrityError instead of handing back a
// corrupted result.
func Partition(doc *core.Document, specs []Spec) ([]core.Segment, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no segments declared for %s", doc.Path())
	}

	ordered := make([]Spec, len(specs))
	copy(ordered, specs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	total := doc.LineCount()
	if err := validateSpecs(doc, ordered, total); err != nil {
		return nil, err
	}

	var segments []core.Segment
	cursor := 0
	passthrough := 0

	for i, spec := range ordered {
		if spec.Start > cursor {
			segments = append(segments, passthroughSegment(doc, &passthrough, cursor, spec.Start))
		}

		end := spec.End
		if end < 0 {
			if i+1 < len(ordered) {
				end = ordered[i+1].Start
			} else {
				end = total
			}
		}

		seg := core.Segment{
			Name:    spec.Name,
			Start:   spec.Start,
			End:     end,
			Dest:    spec.Dest,
			Policy:  spec.Policy,
			Exports: append([]string(nil), spec.Exports...),
		}
		if spec.TrimBlank {
			trimBlankEdges(doc, &seg)
		}
		segments = append(segments, seg)
		cursor = end
	}

	if cursor < total {
		segments = append(segments, passthroughSegment(doc, &passthrough, cursor, total))
	}

	if err := checkIntegrity(doc, segments); err != nil {
		return nil, err
	}
	return segments, nil
}

func validateSpecs(doc *core.Document, ordered []Spec, total int) error {
	seen := make(map[string]bool, len(ordered))
	for i, spec := range ordered {
		if spec.Name == "" {
			return fmt.Errorf("segment %d has no name", i)
		}
		if seen[spec.Name] {
			return fmt.Errorf("duplicate segment name %q", spec.Name)
		}
		seen[spec.Name] = true

		if spec.Start < 0 || spec.Start >= total {
			return fmt.Errorf("segment %q starts at line %d, document has %d lines", spec.Name, spec.Start, total)
		}
		if spec.End >= 0 {
			if spec.End <= spec.Start {
				return fmt.Errorf("segment %q has empty or inverted range [%d,%d)", spec.Name, spec.Start, spec.End)
			}
			if spec.End > total {
				return fmt.Errorf("segment %q ends at line %d, document has %d lines", spec.Name, spec.End, total)
			}
		}
		if i > 0 && spec.Start == ordered[i-1].Start {
			return fmt.Errorf("segments %q and %q start at the same line %d", ordered[i-1].Name, spec.Name, spec.Start)
		}
		if i > 0 && ordered[i-1].End > spec.Start {
			return fmt.Errorf("segments %q and %q overlap at line %d", ordered[i-1].Name, spec.Name, spec.Start)
		}
	}
	return nil
}

func passthroughSegment(doc *core.Document, counter *int, start, end int) core.Segment {
	*counter++
	return core.Segment{
		Name:   fmt.Sprintf("passthrough-%d", *counter),
		Start:  start,
		End:    end,
		Dest:   doc.Path(),
		Policy: core.ExportNone,
	}
}

// trimBlankEdges records blank boundary lines as trimmed bytes on the
// segment. Only whole blank lines are trimmed, and at least one line must
// survive.
func trimBlankEdges(doc *core.Document, seg *core.Segment) {
	lead := seg.Start
	trail := seg.End
	var leading, trailing strings.Builder

	for lead < trail-1 && strings.TrimSpace(doc.Line(lead)) == "" {
		leading.WriteString(doc.RawLine(lead))
		lead++
	}
	for trail-1 > lead && strings.TrimSpace(doc.Line(trail-1)) == "" {
		trail--
	}
	for i := trail; i < seg.End; i++ {
		trailing.WriteString(doc.RawLine(i))
	}

	seg.TrimmedLeading = leading.String()
	seg.TrimmedTrailing = trailing.String()
}

// checkIntegrity verifies the segments tile the document exactly.
func checkIntegrity(doc *core.Document, segments []core.Segment) error {
	var rebuilt strings.Builder
	for i := range segments {
		rebuilt.WriteString(segments[i].RawText(doc))
	}
	want := doc.Text()
	if rebuilt.String() != want {
		return &core.PartitionIntegrityError{
			Doc:       doc.Path(),
			WantBytes: len(want),
			GotBytes:  rebuilt.Len(),
		}
	}
	return nil
}
