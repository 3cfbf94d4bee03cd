package emit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chiselkit/chisel/pkg/core"
)

func TestEmit_CreatesAndReports(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "a.ts")

	files := []core.RewrittenFile{{Path: path, Body: "line1\nline2\n"}}
	written, err := Emit(files, Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("got %d written files, want 1", len(written))
	}
	w := written[0]
	if !w.Created || w.Unchanged {
		t.Errorf("Created=%v Unchanged=%v, want true/false", w.Created, w.Unchanged)
	}
	if w.LinesBefore != 0 || w.LinesAfter != 2 {
		t.Errorf("lines before/after = %d/%d, want 0/2", w.LinesBefore, w.LinesAfter)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "line1\nline2\n" {
		t.Errorf("file content = %q", got)
	}
}

func TestEmit_SecondRunUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	files := []core.RewrittenFile{{Path: path, Body: "same\n"}}

	if _, err := Emit(files, Options{}); err != nil {
		t.Fatalf("first Emit: %v", err)
	}
	written, err := Emit(files, Options{})
	if err != nil {
		t.Fatalf("second Emit: %v", err)
	}
	if !written[0].Unchanged {
		t.Error("second run not reported unchanged")
	}
	if written[0].Created {
		t.Error("existing file reported as created")
	}
}

func TestEmit_Overwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	if err := os.WriteFile(path, []byte("old\ncontent\nhere\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	written, err := Emit([]core.RewrittenFile{{Path: path, Body: "new\n"}}, Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	w := written[0]
	if w.Created || w.Unchanged {
		t.Errorf("Created=%v Unchanged=%v, want false/false", w.Created, w.Unchanged)
	}
	if w.LinesBefore != 3 || w.LinesAfter != 1 {
		t.Errorf("lines before/after = %d/%d, want 3/1", w.LinesBefore, w.LinesAfter)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "new\n" {
		t.Errorf("file content = %q", got)
	}
}

func TestEmit_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")

	written, err := Emit([]core.RewrittenFile{{Path: path, Body: "x\n"}}, Options{DryRun: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !written[0].Created {
		t.Error("dry run should still report the file as would-be-created")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("dry run wrote %s", path)
	}
}

func TestEmit_StagingFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.ts")
	// A regular file where the second destination needs a directory
	// makes its staging fail deterministically.
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(blocker, "b.ts")

	files := []core.RewrittenFile{
		{Path: good, Body: "a\n"},
		{Path: bad, Body: "b\n"},
	}
	if _, err := Emit(files, Options{}); err == nil {
		t.Fatal("expected staging error")
	}

	if _, err := os.Stat(good); !os.IsNotExist(err) {
		t.Errorf("failed emission still wrote %s", good)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "blocked" {
			t.Errorf("leftover file %s after failed emission", e.Name())
		}
	}
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
	}
	for _, c := range cases {
		if got := countLines(c.in); got != c.want {
			t.Errorf("countLines(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
