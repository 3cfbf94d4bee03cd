package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chiselkit/chisel/internal/cli/output"
	"github.com/chiselkit/chisel/internal/taxonomy"
)

// NewTaxonomyCommand creates the taxonomy command.
func NewTaxonomyCommand() *cobra.Command {
	var (
		csvPath string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "taxonomy --csv <export.csv> --out <hierarchy.json>",
		Short: "Rebuild the classification hierarchy from a CSV export",
		Long: `Parse an ISCED-F style CSV export into the broad/narrow/detailed
field hierarchy and write it as JSON. Only canonical 2, 3 and 4 digit
codes are kept; extended variants in the source are dropped.`,
		Example: `  chisel taxonomy --csv /tmp/iscedf13.csv --out src/data/isced.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)

			in, err := os.Open(csvPath)
			if err != nil {
				return err
			}
			defer in.Close()

			h, err := taxonomy.Parse(in)
			if err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := h.Encode(out); err != nil {
				out.Close()
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			if err := out.Close(); err != nil {
				return err
			}

			broad, narrow, detailed := h.Counts()
			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(output.TaxonomyOutput{
					Output:   outPath,
					Broad:    broad,
					Narrow:   narrow,
					Detailed: detailed,
				})
			}
			r.Printf("written %s (broad=%d, narrow=%d, detailed=%d)\n", outPath, broad, narrow, detailed)
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Path to the CSV export")
	cmd.Flags().StringVar(&outPath, "out", "", "Path for the JSON hierarchy")
	_ = cmd.MarkFlagRequired("csv")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
