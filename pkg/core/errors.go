package core

import (
	"fmt"
	"strings"
)

// BoundaryNotFoundError reports a required marker that matched no line.
// It aborts the document's plan.
type BoundaryNotFoundError struct {
	Marker Marker
	Doc    string
}

func (e *BoundaryNotFoundError) Error() string {
	return fmt.Sprintf("boundary not found: marker %s matched no line in %s", e.Marker.Describe(), e.Doc)
}

// AmbiguousBoundaryError reports a unique marker that matched more than
// one candidate line. All candidate offsets are listed so the marker
// predicate can be narrowed; no automatic choice is ever made.
type AmbiguousBoundaryError struct {
	Marker     Marker
	Doc        string
	Candidates []int
}

func (e *AmbiguousBoundaryError) Error() string {
	offs := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		offs[i] = fmt.Sprintf("%d", c)
	}
	return fmt.Sprintf("ambiguous boundary: marker %s matched %d lines in %s (offsets %s)",
		e.Marker.Describe(), len(e.Candidates), e.Doc, strings.Join(offs, ", "))
}

// PartitionIntegrityError reports that the reconstructed segments do not
// equal the original document. It is treated as a correctness bug in the
// marker set and aborts before any write.
type PartitionIntegrityError struct {
	Doc       string
	WantBytes int
	GotBytes  int
}

func (e *PartitionIntegrityError) Error() string {
	return fmt.Sprintf("partition integrity violated for %s: reconstructed %d bytes, document has %d",
		e.Doc, e.GotBytes, e.WantBytes)
}

// VisibilityConflictError reports a cross-segment reference to a symbol
// whose visibility was never upgraded.
type VisibilityConflictError struct {
	Symbol   string
	Provider string
	Consumer string
}

func (e *VisibilityConflictError) Error() string {
	return fmt.Sprintf("visibility conflict: %q is consumed by segment %s but not exported from segment %s",
		e.Symbol, e.Consumer, e.Provider)
}

// DestinationCollisionError reports two plans in a batch targeting the
// same output path. It fails the batch pre-flight before any write.
type DestinationCollisionError struct {
	Path    string
	Sources []string
}

func (e *DestinationCollisionError) Error() string {
	return fmt.Sprintf("destination collision: %s is targeted by %s", e.Path, strings.Join(e.Sources, " and "))
}
