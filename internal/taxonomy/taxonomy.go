// Package taxonomy rebuilds a classification hierarchy from an
// ISCED-F style CSV export: broad fields (2-digit codes), narrow
// fields (3-digit) and detailed fields (4-digit), nested by code
// prefix and emitted as JSON for the classification UI.
package taxonomy

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// Node is one entry in the hierarchy. Value is the code joined with a
// slug of the label, which is what the UI stores.
type Node struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	Code      string `json:"code"`
	Subjects  []Node `json:"subjects,omitempty"`
	Topics    []Node `json:"topics,omitempty"`
	Subtopics []Node `json:"subtopics,omitempty"`
}

// Hierarchy is the emitted document.
type Hierarchy struct {
	Domains []Node `json:"domains"`
}

// notationPattern keeps only canonical 2/3/4 digit codes like F01,
// F011, F0111; extended variants in the source are dropped.
var notationPattern = regexp.MustCompile(`^F(\d{2}|\d{3}|\d{4})$`)

// Parse reads the CSV export and assembles the hierarchy. The reader
// must produce a header row with Notation and Label columns.
func Parse(r io.Reader) (*Hierarchy, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	notationCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.TrimPrefix(strings.TrimSpace(name), "\uFEFF") {
		case "Notation":
			notationCol = i
		case "Label":
			labelCol = i
		}
	}
	if notationCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("CSV is missing Notation or Label column (header: %v)", header)
	}

	// First-seen label wins; the source can carry near-duplicates.
	labels := make(map[string]string)
	var codes []string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		if len(record) <= notationCol || len(record) <= labelCol {
			continue
		}
		m := notationPattern.FindStringSubmatch(strings.TrimSpace(record[notationCol]))
		if m == nil {
			continue
		}
		code := m[1]
		if _, seen := labels[code]; !seen {
			labels[code] = strings.TrimSpace(record[labelCol])
			codes = append(codes, code)
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("CSV contains no ISCED-F codes")
	}

	return build(labels), nil
}

func build(labels map[string]string) *Hierarchy {
	byLen := func(n int) []string {
		var out []string
		for c := range labels {
			if len(c) == n {
				out = append(out, c)
			}
		}
		sort.Strings(out)
		return out
	}

	broad := byLen(2)
	narrow := byLen(3)
	detailed := byLen(4)

	h := &Hierarchy{}
	for _, bc := range broad {
		b := node(bc, labels[bc])
		for _, nc := range narrow {
			if !strings.HasPrefix(nc, bc) {
				continue
			}
			n := node(nc, labels[nc])
			for _, dc := range detailed {
				if !strings.HasPrefix(dc, nc) {
					continue
				}
				d := node(dc, labels[dc])
				// Every detailed field carries a free-form bucket.
				d.Subtopics = []Node{{
					Value: dc + "-other",
					Label: "Other",
					Code:  dc + "-other",
				}}
				n.Topics = append(n.Topics, d)
			}
			b.Subjects = append(b.Subjects, n)
		}
		h.Domains = append(h.Domains, b)
	}
	return h
}

func node(code, label string) Node {
	return Node{
		Value: code + "-" + Slugify(label),
		Label: label,
		Code:  code,
	}
}

// Encode writes the hierarchy as indented JSON.
func (h *Hierarchy) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(h)
}

// Counts reports the number of fields per level, for run summaries.
func (h *Hierarchy) Counts() (broad, narrow, detailed int) {
	broad = len(h.Domains)
	for _, b := range h.Domains {
		narrow += len(b.Subjects)
		for _, n := range b.Subjects {
			detailed += len(n.Topics)
		}
	}
	return broad, narrow, detailed
}

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9]+`)
	dashRun   = regexp.MustCompile(`-+`)
	diacritic = strings.NewReplacer(
		"á", "a", "à", "a", "â", "a", "ä", "a", "å", "a",
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"í", "i", "ì", "i", "î", "i", "ï", "i",
		"ó", "o", "ò", "o", "ô", "o", "ö", "o",
		"ú", "u", "ù", "u", "û", "u", "ü", "u",
		"ç", "c", "ñ", "n", "ß", "ss",
	)
)

// Slugify lowercases a label and reduces it to ascii letters, digits
// and single dashes.
func Slugify(text string) string {
	text = diacritic.Replace(strings.ToLower(text))
	text = nonSlug.ReplaceAllString(text, "-")
	text = dashRun.ReplaceAllString(text, "-")
	text = strings.Trim(text, "-")
	if text == "" {
		return "item"
	}
	return text
}
