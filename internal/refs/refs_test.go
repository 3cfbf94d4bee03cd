package refs

import (
	"testing"

	"github.com/chiselkit/chisel/pkg/core"
)

const projectionSrc = `import { x } from "./dep"

function helperA(rows) {
  return rows.length
}

export function planLessonBodyLayout(rows) {
  return helperA(rows)
}

function estimateSessionPages(rows) {
  return planLessonBodyLayout(rows) + helperA(rows)
}

const PAGE_LIMIT = 40
`

func splitAt(doc *core.Document, line int) []core.Segment {
	return []core.Segment{
		{Name: "a", Start: 0, End: line, Dest: "a.ts"},
		{Name: "b", Start: line, End: doc.LineCount(), Dest: "b.ts"},
	}
}

func TestScanDecls(t *testing.T) {
	doc := core.NewDocument("p.ts", projectionSrc)
	seg := core.Segment{Name: "all", Start: 0, End: doc.LineCount()}

	decls := ScanDecls(doc, &seg)

	want := map[string]struct {
		exported bool
		kind     string
	}{
		"helperA":              {false, "function"},
		"planLessonBodyLayout": {true, "function"},
		"estimateSessionPages": {false, "function"},
		"PAGE_LIMIT":           {false, "const"},
	}

	if len(decls) != len(want) {
		t.Fatalf("expected %d decls, got %d: %+v", len(want), len(decls), decls)
	}
	for _, d := range decls {
		w, ok := want[d.Name]
		if !ok {
			t.Errorf("unexpected decl %q", d.Name)
			continue
		}
		if d.Exported != w.exported || d.Kind != w.kind {
			t.Errorf("decl %q = {exported:%v kind:%s}, want {%v %s}", d.Name, d.Exported, d.Kind, w.exported, w.kind)
		}
	}
}

func TestScanDecls_SkipsNested(t *testing.T) {
	doc := core.NewDocument("x.ts", "function outer() {\n  function inner() {}\n}\n")
	seg := core.Segment{Name: "s", Start: 0, End: doc.LineCount()}

	decls := ScanDecls(doc, &seg)
	if len(decls) != 1 || decls[0].Name != "outer" {
		t.Errorf("only column-zero declarations count, got %+v", decls)
	}
}

func TestUses(t *testing.T) {
	cases := []struct {
		text string
		name string
		want bool
	}{
		{"return helperA(rows)", "helperA", true},
		{"helperA(x)", "helperA", true},
		{"const y = helperAll(x)", "helperA", false},
		{"myhelperA()", "helperA", false},
		{"a.helperA()", "helperA", true},
	}
	for _, tc := range cases {
		if got := Uses(tc.text, tc.name); got != tc.want {
			t.Errorf("Uses(%q, %q) = %v, want %v", tc.text, tc.name, got, tc.want)
		}
	}
}

func TestBuild_DerivesCrossSegmentEdges(t *testing.T) {
	doc := core.NewDocument("p.ts", projectionSrc)
	// Split right before estimateSessionPages (line 10).
	idx, err := Build(doc, splitAt(doc, 10))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	wantEdges := []core.ReferenceEdge{
		{From: "b", To: "a", Symbol: "helperA"},
		{From: "b", To: "a", Symbol: "planLessonBodyLayout"},
	}
	if len(idx.Edges) != len(wantEdges) {
		t.Fatalf("edges = %+v", idx.Edges)
	}
	for i, want := range wantEdges {
		if idx.Edges[i] != want {
			t.Errorf("edge %d = %+v, want %+v", i, idx.Edges[i], want)
		}
	}

	if got := idx.Graph.Providers("b"); len(got) != 1 || got[0] != "a" {
		t.Errorf("Providers(b) = %v", got)
	}
	if idx.Graph.EdgeCount() != 1 {
		t.Errorf("one graph edge per segment pair, got %d", idx.Graph.EdgeCount())
	}
}

func TestBuild_UseOnDeclarationLine(t *testing.T) {
	// A use sitting on the consumer's own declaration line still counts:
	// arrow-function one-liners are common in the kind of files chisel
	// splits.
	doc := core.NewDocument("p.ts", "function a() {}\nconst b = () => a()\n")
	idx, err := Build(doc, splitAt(doc, 1))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	found := false
	for _, e := range idx.Edges {
		if e.From == "a" {
			t.Errorf("segment a consumes nothing, got edge %+v", e)
		}
		if e == (core.ReferenceEdge{From: "b", To: "a", Symbol: "a"}) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected edge b->a for symbol a, got %+v", idx.Edges)
	}
}

func TestGraph_CycleDetection(t *testing.T) {
	g := NewGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")
	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("b", "c"); err != nil {
		t.Fatal(err)
	}

	if cyclic, _ := g.HasCycle(); cyclic {
		t.Error("acyclic graph reported a cycle")
	}

	if err := g.AddEdge("c", "a"); err != nil {
		t.Fatal(err)
	}
	cyclic, path := g.HasCycle()
	if !cyclic {
		t.Fatal("expected cycle")
	}
	if len(path) < 4 || path[0] != path[len(path)-1] {
		t.Errorf("cycle path should close on itself, got %v", path)
	}

	if _, err := g.TopologicalOrder(); err == nil {
		t.Error("topological order must fail on a cycle")
	}
}

func TestGraph_TopologicalOrder(t *testing.T) {
	g := NewGraph()
	for _, n := range []string{"types", "media", "live", "main"} {
		g.AddNode(n)
	}
	_ = g.AddEdge("types", "media")
	_ = g.AddEdge("types", "live")
	_ = g.AddEdge("media", "main")
	_ = g.AddEdge("live", "main")

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder failed: %v", err)
	}

	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	if pos["types"] > pos["media"] || pos["types"] > pos["live"] || pos["media"] > pos["main"] {
		t.Errorf("providers must precede consumers: %v", order)
	}

	if err := g.AddEdge("types", "missing"); err == nil {
		t.Error("expected error for unknown node")
	}
	if err := g.AddEdge("types", "types"); err == nil {
		t.Error("expected error for self-dependency")
	}
}
