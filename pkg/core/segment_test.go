package core

import "testing"

func TestSegment_Text(t *testing.T) {
	doc := NewDocument("x.ts", "a\nb\nc\nd\n")
	seg := Segment{Name: "mid", Start: 1, End: 3}

	if got := seg.Text(doc); got != "b\nc\n" {
		t.Errorf("Text = %q", got)
	}
	if seg.LineCount() != 2 {
		t.Errorf("LineCount = %d", seg.LineCount())
	}
}

func TestSegment_TextWithTrimming(t *testing.T) {
	doc := NewDocument("x.ts", "\n\nbody\n\n")
	seg := Segment{
		Name:            "all",
		Start:           0,
		End:             doc.LineCount(),
		TrimmedLeading:  "\n\n",
		TrimmedTrailing: "\n",
	}

	if got := seg.Text(doc); got != "body\n" {
		t.Errorf("trimmed Text = %q", got)
	}
	// Trimmed bytes stay recorded so the integrity check can account for
	// every byte of the original.
	if seg.TrimmedLeading+seg.Text(doc)+seg.TrimmedTrailing != doc.Text() {
		t.Error("trimmed bytes plus text must reconstruct the raw range")
	}
}

func TestSegment_Exposes(t *testing.T) {
	cases := []struct {
		name   string
		seg    Segment
		symbol string
		want   bool
	}{
		{"export-all", Segment{Policy: ExportAll}, "anything", true},
		{"export-none", Segment{Policy: ExportNone}, "helperA", false},
		{"listed hit", Segment{Policy: ExportListed, Exports: []string{"helperA"}}, "helperA", true},
		{"listed miss", Segment{Policy: ExportListed, Exports: []string{"helperA"}}, "helperB", false},
		{"zero value", Segment{}, "x", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.seg.Exposes(tc.symbol); got != tc.want {
				t.Errorf("Exposes(%q) = %v, want %v", tc.symbol, got, tc.want)
			}
		})
	}
}

func TestParseVisibility(t *testing.T) {
	if v, err := ParseVisibility("export-listed"); err != nil || v != ExportListed {
		t.Errorf("ParseVisibility(export-listed) = %v, %v", v, err)
	}
	if v, err := ParseVisibility(""); err != nil || v != ExportNone {
		t.Errorf("empty visibility should default to export-none, got %v, %v", v, err)
	}
	if _, err := ParseVisibility("public"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
