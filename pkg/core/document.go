package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Document is an immutable ordered sequence of lines read from one input
// path. Lines keep their terminators so that concatenating them reproduces
// the original text byte-for-byte.
type Document struct {
	path  string
	lines []string
	hash  string
}

// NewDocument creates a document from in-memory text.
func NewDocument(path, text string) *Document {
	return &Document{
		path:  path,
		lines: splitKeepEnds(text),
		hash:  hashText(text),
	}
}

// ReadDocument reads a document from the filesystem. UTF-8 is assumed.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return NewDocument(path, string(data)), nil
}

// Path returns the source path the document was read from.
func (d *Document) Path() string { return d.path }

// Hash returns the content hash used for idempotency checks.
func (d *Document) Hash() string { return d.hash }

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int { return len(d.lines) }

// Lines returns a copy of the document's lines, terminators included.
func (d *Document) Lines() []string {
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

// Line returns line i with its terminator stripped, for matching and
// display. It panics on an out-of-range index, same as slice access.
func (d *Document) Line(i int) string {
	return strings.TrimRight(d.lines[i], "\r\n")
}

// RawLine returns line i exactly as read, terminator included.
func (d *Document) RawLine(i int) string { return d.lines[i] }

// Text reassembles the full document text.
func (d *Document) Text() string {
	return strings.Join(d.lines, "")
}

// Slice returns the raw text of the half-open line range [start, end).
func (d *Document) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.lines) {
		end = len(d.lines)
	}
	if start >= end {
		return ""
	}
	return strings.Join(d.lines[start:end], "")
}

// splitKeepEnds splits text into lines, each keeping its trailing
// newline. A final line without a terminator is kept as-is.
func splitKeepEnds(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func hashText(text string) string {
	return strconv.FormatUint(xxh3.HashString(text), 16)
}

// HashText exposes the document content hash for callers that need to
// compare not-yet-wrapped text (e.g. idempotent emission checks).
func HashText(text string) string { return hashText(text) }
