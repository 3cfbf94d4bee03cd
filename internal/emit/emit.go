// Package emit writes rewritten files to disk.
//
// Emission is all-or-nothing per document: every destination is staged
// as a temp file in its target directory first, and only once all of
// them staged cleanly are they renamed into place. A failure during
// staging removes the temp files and leaves every destination
// untouched. Re-running the same plan is byte-stable; files whose
// content already matches are skipped and reported as unchanged.
package emit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chiselkit/chisel/pkg/core"
)

// Options control how the emitter behaves.
type Options struct {
	// DryRun computes the report without touching the filesystem.
	DryRun bool

	// Logger receives per-file debug output. Nil means discard.
	Logger *slog.Logger
}

// Emit writes each rewritten file and returns what happened, in the
// same order as the input. All destinations are staged before the first
// rename, so a staging failure leaves the filesystem untouched; the
// rename sequence itself is the only window where a crash can leave a
// partial set.
func Emit(files []core.RewrittenFile, opts Options) ([]core.WrittenFile, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	type pending struct {
		tmp  string
		path string
	}
	var staged []pending
	discard := func() {
		for _, p := range staged {
			os.Remove(p.tmp)
		}
	}

	written := make([]core.WrittenFile, 0, len(files))
	for _, f := range files {
		w, tmp, err := stageOne(f, opts.DryRun, logger)
		if err != nil {
			discard()
			return nil, err
		}
		if tmp != "" {
			staged = append(staged, pending{tmp: tmp, path: f.Path})
		}
		written = append(written, w)
	}

	for _, p := range staged {
		if err := os.Rename(p.tmp, p.path); err != nil {
			discard()
			return nil, fmt.Errorf("emit %s: %w", p.path, err)
		}
		logger.Debug("emit: wrote", "path", p.path)
	}
	return written, nil
}

// stageOne computes the file's report and, when a write is needed,
// leaves the new content in a temp file next to the destination. The
// returned temp path is empty for unchanged files and dry runs.
func stageOne(f core.RewrittenFile, dryRun bool, logger *slog.Logger) (core.WrittenFile, string, error) {
	w := core.WrittenFile{
		Path:       f.Path,
		LinesAfter: countLines(f.Body),
	}

	prev, err := os.ReadFile(f.Path)
	switch {
	case err == nil:
		w.LinesBefore = countLines(string(prev))
		if core.HashText(string(prev)) == core.HashText(f.Body) {
			w.Unchanged = true
			logger.Debug("emit: unchanged", "path", f.Path)
			return w, "", nil
		}
	case os.IsNotExist(err):
		w.Created = true
	default:
		return w, "", fmt.Errorf("emit %s: %w", f.Path, err)
	}

	if dryRun {
		logger.Debug("emit: dry run", "path", f.Path, "created", w.Created)
		return w, "", nil
	}

	tmp, err := stage(f.Path, f.Body)
	if err != nil {
		return w, "", fmt.Errorf("emit %s: %w", f.Path, err)
	}
	logger.Debug("emit: staged", "path", f.Path, "created", w.Created, "lines", w.LinesAfter)
	return w, tmp, nil
}

// stage writes body to a temp file in the destination directory so the
// final rename is atomic and readers never observe a torn file.
func stage(path, body string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	return tmpName, nil
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
