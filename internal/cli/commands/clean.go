package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/chiselkit/chisel/internal/cli/output"
	"github.com/chiselkit/chisel/internal/markup"
)

// NewCleanCommand creates the clean command.
func NewCleanCommand() *cobra.Command {
	var (
		write       bool
		watch       bool
		renameFlags []string
	)

	cmd := &cobra.Command{
		Use:   "clean [paths...]",
		Short: "Clean up markup files",
		Long: `Remove empty wrapper elements, unwrap comment-only divs, collapse
blank runs and re-flow indentation in HTML files. Cleaning is
idempotent and never touches visible text.

Class-rename sweeps run before the structural cleanup, in rule order,
so later rules can match text produced by earlier ones.`,
		Example: `  # Report what would change
  chisel clean src/pages/index.html

  # Apply in place
  chisel clean src/pages/*.html --write

  # Migrate class names while cleaning
  chisel clean src/pages/*.html --write --rename-class 'nav__item=ul__item'

  # Keep re-cleaning on change
  chisel clean src/pages/*.html --write --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			rules := make([]markup.RenameRule, 0, len(renameFlags))
			for _, f := range renameFlags {
				rule, err := markup.ParseRenameRule(f)
				if err != nil {
					return err
				}
				rules = append(rules, rule)
			}

			if watch && !write {
				return fmt.Errorf("--watch requires --write")
			}

			cleaner := markup.NewHTMLCleaner(cmdCtx.Cfg.IndentWidth)
			out, err := cleanFiles(args, cleaner, rules, write)
			if err != nil {
				return err
			}
			if err := renderClean(cmdCtx.Renderer, out, write); err != nil {
				return err
			}

			if watch {
				return watchFiles(cmd.Context(), args, cleaner, rules, cmdCtx.Logger)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Rewrite files in place")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-clean files when they change (requires --write)")
	cmd.Flags().StringArrayVar(&renameFlags, "rename-class", nil, "Class rename rule old=new (repeatable, applied in order)")

	return cmd
}

func cleanFiles(paths []string, cleaner markup.Cleaner, rules []markup.RenameRule, write bool) (*output.CleanOutput, error) {
	out := &output.CleanOutput{}
	hits := make([]int, len(rules))

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		res := markup.RenameClasses(string(data), rules)
		for i, h := range res.Hits {
			hits[i] += h
		}
		cleaned, err := cleaner.Clean(res.Text)
		if err != nil {
			return nil, fmt.Errorf("clean %s: %w", path, err)
		}

		changed := cleaned != string(data)
		written := false
		if changed && write {
			if err := os.WriteFile(path, []byte(cleaned), 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", path, err)
			}
			written = true
		}
		out.Files = append(out.Files, output.CleanFile{
			Path:    path,
			Changed: changed,
			Written: written,
		})
	}

	for i, rule := range rules {
		out.Rules = append(out.Rules, output.CleanRule{
			From: rule.From,
			To:   rule.To,
			Hits: hits[i],
		})
	}
	return out, nil
}

func renderClean(r *output.Renderer, out *output.CleanOutput, write bool) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	for _, f := range out.Files {
		switch {
		case f.Written:
			r.Printf("cleaned %s\n", f.Path)
		case f.Changed:
			r.Printf("would clean %s (run with --write)\n", f.Path)
		default:
			r.Printf("unchanged %s\n", f.Path)
		}
	}
	for _, rule := range out.Rules {
		r.Printf("rule %s=%s applied %d times\n", rule.From, rule.To, rule.Hits)
	}
	return nil
}

// watchFiles re-cleans each path when its file changes, until the
// context is cancelled. Directories are watched rather than the files
// themselves so editors that replace-on-save keep being tracked.
func watchFiles(ctx context.Context, paths []string, cleaner markup.Cleaner, rules []markup.RenameRule, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	logger.Info("watching for changes", "files", len(watched))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			if _, err := cleanFiles([]string{abs}, cleaner, rules, true); err != nil {
				logger.Error("re-clean failed", "path", abs, "error", err)
				continue
			}
			logger.Info("re-cleaned", "path", abs)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		}
	}
}
