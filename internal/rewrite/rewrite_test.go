package rewrite

import (
	"strings"
	"testing"

	"github.com/chiselkit/chisel/internal/partition"
	"github.com/chiselkit/chisel/internal/refs"
	"github.com/chiselkit/chisel/pkg/core"
)

// scenario mirrors the canonical split: helperA is private in segment A,
// consumed by segment B.
const scenarioSrc = `function helperA(rows) {
  return rows.length
}

export function funcA(rows) {
  return helperA(rows)
}

function funcB(rows) {
  return helperA(rows) * 2
}
`

func scenarioSegments(t *testing.T, doc *core.Document) ([]core.Segment, *refs.Index) {
	t.Helper()
	segments, err := partition.Partition(doc, []partition.Spec{
		{Name: "a", Start: 0, End: 8, Dest: "src/lib/a.ts", Policy: core.ExportNone},
		{Name: "b", Start: 8, End: -1, Dest: "src/lib/b.ts", Policy: core.ExportListed, Exports: []string{"funcB"}},
	})
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	idx, err := refs.Build(doc, segments)
	if err != nil {
		t.Fatalf("refs.Build failed: %v", err)
	}
	return segments, idx
}

func TestRewrite_PromotesConsumedSymbol(t *testing.T) {
	doc := core.NewDocument("src/lib/orig.ts", scenarioSrc)
	segments, idx := scenarioSegments(t, doc)

	res, err := Rewrite(doc, segments, idx, nil, core.ShimSpec{})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}

	if len(res.Promotions) != 1 {
		t.Fatalf("promotions = %+v", res.Promotions)
	}
	p := res.Promotions[0]
	if p.Segment != "a" || p.Symbol != "helperA" || p.WasPolicy != core.ExportNone {
		t.Errorf("promotion = %+v", p)
	}

	fileA := findFile(t, res, "src/lib/a.ts")
	if !strings.Contains(fileA.Body, "export function helperA(rows)") {
		t.Errorf("helperA must gain an export in a.ts:\n%s", fileA.Body)
	}
	// funcA was already exported; no double prefix.
	if strings.Contains(fileA.Body, "export export") {
		t.Errorf("double export prefix:\n%s", fileA.Body)
	}

	fileB := findFile(t, res, "src/lib/b.ts")
	if !strings.Contains(fileB.Body, `import { helperA } from "./a"`) {
		t.Errorf("b.ts must import helperA from a:\n%s", fileB.Body)
	}
}

func TestRewrite_Shim(t *testing.T) {
	doc := core.NewDocument("src/lib/orig.ts", scenarioSrc)
	segments, idx := scenarioSegments(t, doc)

	res, err := Rewrite(doc, segments, idx, nil, core.ShimSpec{
		Enabled: true,
		Header:  "// moved: see a.ts and b.ts",
	})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}

	shim := findFile(t, res, "src/lib/orig.ts")
	if !shim.Shim {
		t.Error("shim file should be flagged")
	}
	if !strings.HasPrefix(shim.Body, "// moved: see a.ts and b.ts\n") {
		t.Errorf("shim header missing:\n%s", shim.Body)
	}
	// funcA stays importable from the original path; promoted helperA is
	// re-exported too, and funcB comes from b.
	if !strings.Contains(shim.Body, `export { funcA, helperA } from "./a"`) {
		t.Errorf("shim should re-export a's names:\n%s", shim.Body)
	}
	if !strings.Contains(shim.Body, `export { funcB } from "./b"`) {
		t.Errorf("shim should re-export b's names:\n%s", shim.Body)
	}
}

func TestRewrite_ShimRejectsUnmovedSegment(t *testing.T) {
	doc := core.NewDocument("src/lib/orig.ts", scenarioSrc)
	segments, err := partition.Partition(doc, []partition.Spec{
		{Name: "b", Start: 8, End: -1, Dest: "src/lib/b.ts", Policy: core.ExportAll},
	})
	if err != nil {
		t.Fatal(err)
	}
	idx, err := refs.Build(doc, segments)
	if err != nil {
		t.Fatal(err)
	}

	// The passthrough head still targets the original path.
	if _, err := Rewrite(doc, segments, idx, nil, core.ShimSpec{Enabled: true}); err == nil {
		t.Error("expected error: shim requires every segment to move")
	}
}

func TestRewrite_Renames(t *testing.T) {
	doc := core.NewDocument("src/lib/orig.ts", scenarioSrc)
	segments, idx := scenarioSegments(t, doc)

	res, err := Rewrite(doc, segments, idx, []core.Rename{
		{From: "helperA", To: "countRows", Export: true},
	}, core.ShimSpec{})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}

	fileA := findFile(t, res, "src/lib/a.ts")
	if !strings.Contains(fileA.Body, "export function countRows(rows)") {
		t.Errorf("definition site not renamed:\n%s", fileA.Body)
	}
	if strings.Contains(fileA.Body, "helperA") {
		t.Errorf("stale identifier after rename:\n%s", fileA.Body)
	}

	fileB := findFile(t, res, "src/lib/b.ts")
	if !strings.Contains(fileB.Body, "countRows(rows) * 2") {
		t.Errorf("call site not renamed:\n%s", fileB.Body)
	}
	if !strings.Contains(fileB.Body, `import { countRows } from "./a"`) {
		t.Errorf("import uses the new name:\n%s", fileB.Body)
	}
}

func TestRewrite_RenameFollowUps(t *testing.T) {
	doc := core.NewDocument("src/lib/orig.ts", scenarioSrc)
	segments, idx := scenarioSegments(t, doc)

	renames := []core.Rename{{From: "funcA", To: "planLayout"}}

	// Without a shim, external imports of funcA break: flagged, not fixed.
	res, err := Rewrite(doc, segments, idx, renames, core.ShimSpec{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.ManualFollowUps) != 1 || !strings.Contains(res.ManualFollowUps[0], "funcA") {
		t.Errorf("follow-ups = %v", res.ManualFollowUps)
	}

	// With a shim the old name is aliased, so nothing is left to hand-fix.
	res, err = Rewrite(doc, segments, idx, renames, core.ShimSpec{Enabled: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.ManualFollowUps) != 0 {
		t.Errorf("follow-ups with shim = %v", res.ManualFollowUps)
	}
	shim := findFile(t, res, "src/lib/orig.ts")
	if !strings.Contains(shim.Body, "planLayout as funcA") {
		t.Errorf("shim should alias the old exported name:\n%s", shim.Body)
	}
}

func TestRewrite_MergesSegmentsSharingDest(t *testing.T) {
	// Toolbar-style: head and tail stay in the original file, the middle
	// moves out; the original gains an import after its own imports.
	src := `import { useState } from "react"

function ToolOptionsStrip() {
  return useState
}

export function ToolBar() {
  return ToolOptionsStrip()
}
`
	doc := core.NewDocument("ToolBar.tsx", src)
	segments, err := partition.Partition(doc, []partition.Spec{
		{Name: "options", Start: 2, End: 6, Dest: "toolbar-options.tsx", Policy: core.ExportNone},
	})
	if err != nil {
		t.Fatal(err)
	}
	idx, err := refs.Build(doc, segments)
	if err != nil {
		t.Fatal(err)
	}

	res, err := Rewrite(doc, segments, idx, nil, core.ShimSpec{})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}

	if len(res.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(res.Files))
	}

	orig := findFile(t, res, "ToolBar.tsx")
	if len(orig.Segments) != 2 {
		t.Errorf("head and tail merge into the original file: %v", orig.Segments)
	}
	lines := strings.Split(orig.Body, "\n")
	if lines[0] != `import { useState } from "react"` {
		t.Errorf("original import must stay first:\n%s", orig.Body)
	}
	if lines[1] != `import { ToolOptionsStrip } from "./toolbar-options"` {
		t.Errorf("new import slots in after existing imports:\n%s", orig.Body)
	}

	moved := findFile(t, res, "toolbar-options.tsx")
	if !strings.Contains(moved.Body, "export function ToolOptionsStrip()") {
		t.Errorf("moved symbol must be exported:\n%s", moved.Body)
	}
	// The moved segment keeps using useState without importing it from the
	// original: react imports are outside the plan's scope.
	if strings.Contains(moved.Body, `from "./ToolBar"`) {
		t.Errorf("no import back from the original expected:\n%s", moved.Body)
	}
}

func TestRewrite_VisibilityConflictGuard(t *testing.T) {
	doc := core.NewDocument("src/lib/orig.ts", scenarioSrc)
	segments, idx := scenarioSegments(t, doc)

	// A policy the promoter does not know how to upgrade must surface as
	// a conflict, never pass silently.
	for i := range segments {
		if segments[i].Name == "a" {
			segments[i].Policy = core.Visibility("frozen")
		}
	}

	_, err := Rewrite(doc, segments, idx, nil, core.ShimSpec{})
	if err == nil {
		t.Fatal("expected VisibilityConflictError")
	}
	if !strings.Contains(err.Error(), "visibility conflict") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestImportPath(t *testing.T) {
	cases := []struct {
		from, to, want string
	}{
		{"src/lib/b.ts", "src/lib/a.ts", "./a"},
		{"src/lib/b.ts", "src/util/x.ts", "../util/x"},
		{"b.tsx", "a.tsx", "./a"},
	}
	for _, tc := range cases {
		if got := importPath(tc.from, tc.to); got != tc.want {
			t.Errorf("importPath(%s, %s) = %s, want %s", tc.from, tc.to, got, tc.want)
		}
	}
}

func findFile(t *testing.T, res *Result, path string) core.RewrittenFile {
	t.Helper()
	for _, f := range res.Files {
		if f.Path == path {
			return f
		}
	}
	t.Fatalf("no file %s in result (%d files)", path, len(res.Files))
	return core.RewrittenFile{}
}
