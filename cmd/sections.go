package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/section"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the cross-section presets",
	Run: func(cmd *cobra.Command, args []string) {
		header("SECTION PRESETS")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Section\tDimensions\tI (m⁴)\n")
		fmt.Fprintf(w, "  ───────\t──────────\t──────\n")
		r, c, i := section.PresetRectangle, section.PresetCircle, section.PresetIShape
		fmt.Fprintf(w, "  %s\tb = %.3f m, h = %.3f m\t%.6e\n", r.Kind(), r.Base, r.Height, r.Inertia())
		fmt.Fprintf(w, "  %s\tr = %.3f m\t%.6e\n", c.Kind(), c.Radius, c.Inertia())
		fmt.Fprintf(w, "  %s\th = %.3f m, tw = %.3f m, bf = %.3f m, tf = %.3f m\t%.6e\n",
			i.Kind(), i.Height, i.WebWidth, i.FlangeWidth, i.FlangeThickness, i.Inertia())
		w.Flush()
		fmt.Println()
		fmt.Println("  Custom polygons: gobeam inertia --file <section.json>")
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
}
