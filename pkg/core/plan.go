package core

// ReferenceEdge records a dependency from one segment to a symbol defined
// in another segment of the same document.
type ReferenceEdge struct {
	// From is the name of the consuming segment.
	From string
	// To is the name of the providing segment.
	To string
	// Symbol is the referenced identifier.
	Symbol string
}

// Rename is an identifier rename applied at the definition site and every
// call site captured in the same plan.
type Rename struct {
	From string
	To   string
	// Export marks the renamed symbol for visibility promotion.
	Export bool
}

// Promotion records a symbol whose visibility was upgraded because another
// segment consumes it. Promotions are reported, never silent.
type Promotion struct {
	Segment string
	Symbol  string
	// WasPolicy is the policy before the upgrade.
	WasPolicy Visibility
}

// ShimSpec describes the compatibility shim written over the original
// document path. Writing the shim is always an explicit caller decision.
type ShimSpec struct {
	// Enabled turns the original file into a re-export shim.
	Enabled bool
	// Header is prepended verbatim, typically a provenance comment.
	Header string
}

// RewritePlan is the validated, not-yet-written result of locating,
// partitioning and rewriting one document. It is built, validated and
// discarded within a single run; nothing is persisted until validation
// passes.
type RewritePlan struct {
	Doc      *Document
	Segments []Segment
	Edges    []ReferenceEdge
	Renames  []Rename
	Shim     ShimSpec
}

// RewrittenFile is one output file assembled from rewritten segments,
// ready for emission. Segments sharing a destination (for example the
// head and tail ranges staying in the original file) merge into a single
// RewrittenFile in document order.
type RewrittenFile struct {
	// Path is the destination path.
	Path string
	// Body is the full file content: synthesized import header plus the
	// rewritten segment texts.
	Body string
	// Segments names the segments the file was assembled from, in
	// document order.
	Segments []string
	// Shim is true when this file is the compatibility shim written over
	// the original document path.
	Shim bool
}

// WrittenFile reports one destination touched by the emitter.
type WrittenFile struct {
	Path string
	// Created is true when the path did not exist before this run.
	Created bool
	// Unchanged is true when the existing content was already identical.
	Unchanged bool
	// LinesBefore is the line count of the previous content (0 if new).
	LinesBefore int
	// LinesAfter is the line count of the written content.
	LinesAfter int
}

// Report summarises one document's run for observability.
type Report struct {
	// RunID identifies the run in logs and summaries.
	RunID string
	// Source is the original document path.
	Source string
	// SourceHash is the document content hash.
	SourceHash string
	// Files lists every destination touched, shim included.
	Files []WrittenFile
	// Promotions lists visibility upgrades applied by the rewriter.
	Promotions []Promotion
	// ManualFollowUps lists rename sites outside the plan's segments that
	// were detected but deliberately not touched.
	ManualFollowUps []string
	// DryRun is true when validation ran but nothing was written.
	DryRun bool
}
