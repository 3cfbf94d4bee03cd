package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chiselkit/chisel/internal/cli/output"
	"github.com/chiselkit/chisel/internal/engine"
	"github.com/chiselkit/chisel/pkg/core"
)

// NewSplitCommand creates the split command.
func NewSplitCommand() *cobra.Command {
	var (
		dryRun   bool
		parallel int
		shim     bool
	)

	cmd := &cobra.Command{
		Use:   "split <plan.yaml>...",
		Short: "Split documents according to their plans",
		Long: `Run the full split pipeline for one or more plan files.

Each plan names a source document, its boundary markers and the
segments to cut. Destinations are checked for collisions across the
whole batch before anything is written; each document then succeeds
or fails as a unit.`,
		Example: `  # Split one document
  chisel split plans/toolbar.yaml

  # Validate without writing
  chisel split plans/toolbar.yaml --dry-run

  # Split a batch, four documents at a time
  chisel split plans/*.yaml --parallel 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			plans, err := loadPlans(cmdCtx.Cfg, args)
			if err != nil {
				return err
			}

			workers := cmdCtx.Cfg.Parallel
			if cmd.Flags().Changed("parallel") {
				workers = parallel
			}
			var shimOverride *bool
			if cmd.Flags().Changed("shim") {
				shimOverride = &shim
			} else if cmdCtx.Cfg.Shim {
				t := true
				shimOverride = &t
			}

			eng := engine.New(engine.Config{
				DryRun:   dryRun,
				Parallel: workers,
				Shim:     shimOverride,
				Logger:   cmdCtx.Logger,
			})

			results, runErr := eng.SplitBatch(cmd.Context(), plans)
			if results != nil {
				if err := renderSplit(cmdCtx.Renderer, results); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and report without writing files")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "Documents to process concurrently")
	cmd.Flags().BoolVar(&shim, "shim", false, "Rewrite each source into a re-export shim")

	return cmd
}

func renderSplit(r *output.Renderer, results []engine.BatchResult) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return splitJSON(r, results)
	case output.ModeMarkdown:
		splitMarkdown(r, results)
	default:
		splitText(r, results)
	}
	return nil
}

func splitText(r *output.Renderer, results []engine.BatchResult) {
	for _, res := range results {
		if res.Err != nil {
			r.Printf("✗ %s: %v\n", res.Plan.Source, res.Err)
			continue
		}
		rep := res.Report
		verb := "split"
		if rep.DryRun {
			verb = "would split"
		}
		r.Printf("✓ %s %s into %d files\n", verb, rep.Source, len(rep.Files))
		for _, f := range rep.Files {
			r.Printf("  %-9s %s (%d → %d lines)\n", fileStatus(f), f.Path, f.LinesBefore, f.LinesAfter)
		}
		for _, p := range rep.Promotions {
			r.Printf("  promoted %s in segment %s (was %s)\n", p.Symbol, p.Segment, p.WasPolicy)
		}
		for _, f := range rep.ManualFollowUps {
			r.Printf("  follow-up: %s\n", f)
		}
	}
}

func splitMarkdown(r *output.Renderer, results []engine.BatchResult) {
	r.Println(output.FormatHeader(1, "Split Results"))
	for _, res := range results {
		r.Println("")
		r.Println(output.FormatHeader(2, res.Plan.Source))
		if res.Err != nil {
			r.Println(output.FormatKeyValue("Error", res.Err.Error()))
			continue
		}
		rep := res.Report
		r.Println(output.FormatKeyValue("Run", rep.RunID))
		r.Println(output.FormatKeyValue("Dry run", fmt.Sprintf("%v", rep.DryRun)))
		for _, f := range rep.Files {
			r.Printf("- `%s`: %s (%d → %d lines)\n", f.Path, fileStatus(f), f.LinesBefore, f.LinesAfter)
		}
		for _, p := range rep.Promotions {
			r.Printf("- promoted `%s` in segment `%s` (was %s)\n", p.Symbol, p.Segment, p.WasPolicy)
		}
		for _, f := range rep.ManualFollowUps {
			r.Printf("- follow-up: %s\n", f)
		}
	}
}

func splitJSON(r *output.Renderer, results []engine.BatchResult) error {
	out := output.SplitOutput{Reports: make([]output.SplitReport, 0, len(results))}
	for _, res := range results {
		rep := output.SplitReport{Source: res.Plan.Source}
		if res.Err != nil {
			rep.Error = res.Err.Error()
			out.Reports = append(out.Reports, rep)
			continue
		}
		rep.RunID = res.Report.RunID
		rep.Source = res.Report.Source
		rep.SourceHash = res.Report.SourceHash
		rep.DryRun = res.Report.DryRun
		for _, f := range res.Report.Files {
			rep.Files = append(rep.Files, output.SplitFile{
				Path:        f.Path,
				Created:     f.Created,
				Unchanged:   f.Unchanged,
				LinesBefore: f.LinesBefore,
				LinesAfter:  f.LinesAfter,
			})
		}
		for _, p := range res.Report.Promotions {
			rep.Promotions = append(rep.Promotions, output.SplitPromotion{
				Segment:   p.Segment,
				Symbol:    p.Symbol,
				WasPolicy: string(p.WasPolicy),
			})
		}
		rep.ManualFollowUps = res.Report.ManualFollowUps
		out.Reports = append(out.Reports, rep)
	}
	return r.JSON(out)
}

func fileStatus(f core.WrittenFile) string {
	switch {
	case f.Unchanged:
		return "unchanged"
	case f.Created:
		return "created"
	default:
		return "updated"
	}
}
