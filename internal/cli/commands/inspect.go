package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chiselkit/chisel/internal/cli/output"
	"github.com/chiselkit/chisel/internal/engine"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <plan.yaml>",
		Short: "Resolve a plan's boundaries without splitting",
		Long: `Locate every marker of a plan against its source document and show
the line each one resolved to, plus the segment ranges they imply.
Nothing is rewritten or written to disk.`,
		Example: `  # Show where the boundaries land
  chisel inspect plans/toolbar.yaml

  # Machine-readable
  chisel inspect plans/toolbar.yaml -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			plans, err := loadPlans(cmdCtx.Cfg, args)
			if err != nil {
				return err
			}

			eng := engine.New(engine.Config{Logger: cmdCtx.Logger})
			insp, err := eng.Inspect(cmd.Context(), plans[0])
			if err != nil {
				return err
			}
			return renderInspect(cmdCtx.Renderer, insp)
		},
	}
}

func renderInspect(r *output.Renderer, insp *engine.Inspection) error {
	if r.EffectiveMode() == output.ModeJSON {
		return inspectJSON(r, insp)
	}

	r.Println(output.FormatHeader(1, "Boundaries"))
	r.Println("")
	markerRows := make([][]string, 0, len(insp.Markers))
	for _, m := range insp.Markers {
		markerRows = append(markerRows, []string{
			m.ID, string(m.Kind), strconv.Itoa(insp.Lines[m.ID]),
		})
	}
	r.Table([]string{"marker", "kind", "line"}, markerRows)

	r.Println("")
	r.Println(output.FormatHeader(1, "Segments"))
	r.Println("")
	segRows := make([][]string, 0, len(insp.Segments))
	for _, s := range insp.Segments {
		segRows = append(segRows, []string{
			s.Name, s.Range(), s.Dest, string(s.Policy),
		})
	}
	r.Table([]string{"segment", "range", "dest", "visibility"}, segRows)

	r.Println("")
	r.Println(output.FormatKeyValue("Source", insp.Doc.Path()))
	r.Println(output.FormatKeyValue("Lines", fmt.Sprintf("%d", insp.Doc.LineCount())))
	return nil
}

func inspectJSON(r *output.Renderer, insp *engine.Inspection) error {
	out := output.InspectOutput{
		Source: insp.Doc.Path(),
		Lines:  insp.Doc.LineCount(),
	}
	for _, m := range insp.Markers {
		out.Markers = append(out.Markers, output.InspectMarker{
			ID:   m.ID,
			Kind: string(m.Kind),
			Line: insp.Lines[m.ID],
		})
	}
	for _, s := range insp.Segments {
		out.Segments = append(out.Segments, output.InspectSegment{
			Name:       s.Name,
			Start:      s.Start,
			End:        s.End,
			Dest:       s.Dest,
			Visibility: string(s.Policy),
		})
	}
	return r.JSON(out)
}
