package commands

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chiselkit/chisel/internal/cli/output"
	"github.com/chiselkit/chisel/internal/engine"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "graph <plan.yaml>",
		Short: "Show cross-segment references",
		Long: `Display which symbols each segment consumes from the others.
Every edge shown here becomes an import line, and may force a private
symbol to be promoted when the plan splits the document.`,
		Example: `  # Show the reference graph
  chisel graph plans/toolbar.yaml

  # Output as JSON
  chisel graph plans/toolbar.yaml -o json`,
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
			return renderGraph(cmdCtx.Renderer, insp)
		},
	}
}

func renderGraph(r *output.Renderer, insp *engine.Inspection) error {
	if r.EffectiveMode() == output.ModeJSON {
		out := output.GraphOutput{Source: insp.Doc.Path()}
		for _, e := range insp.Edges {
			out.Edges = append(out.Edges, output.GraphEdge{
				From: e.From, To: e.To, Symbol: e.Symbol,
			})
		}
		return r.JSON(out)
	}

	if len(insp.Edges) == 0 {
		r.Println("no cross-segment references")
		return nil
	}

	// Group symbols per consumer→provider pair for readable output.
	type pair struct{ from, to string }
	symbols := make(map[pair][]string)
	var order []pair
	for _, e := range insp.Edges {
		p := pair{e.From, e.To}
		if _, seen := symbols[p]; !seen {
			order = append(order, p)
		}
		symbols[p] = append(symbols[p], e.Symbol)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].from != order[j].from {
			return order[i].from < order[j].from
		}
		return order[i].to < order[j].to
	})

	for _, p := range order {
		syms := symbols[p]
		sort.Strings(syms)
		r.Printf("%s -> %s (%s)\n", p.from, p.to, strings.Join(syms, ", "))
	}
	return nil
}
