// Package core defines the shared language of the chisel system.
//
// This package contains:
//   - Domain entities (Document, Marker, Segment, ReferenceEdge, RewritePlan)
//   - Result types (RewrittenSegment, WrittenFile, Report)
//   - The error taxonomy for the split pipeline
//
// The Golden Rule: pkg/core imports ONLY the stdlib and the xxh3 hash.
// All other packages depend on core, not the reverse.
package core
