package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/section"
)

var inertiaFile string

var inertiaCmd = &cobra.Command{
	Use:   "inertia [section]",
	Short: "Compute the moment of inertia of a cross-section",
	Long: `Compute the second moment of area about the horizontal centroidal axis.

Without arguments every preset section is listed. A polygonal section can be
read from a JSON file with vertices in meters:

  {
    "name": "Tee",
    "vertices": [{"x": 0, "y": 0}, {"x": 0.1, "y": 0}, ...]
  }

Examples:
  gobeam inertia
  gobeam inertia i-beam
  gobeam inertia --file tee.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInertia,
}

func init() {
	rootCmd.AddCommand(inertiaCmd)

	inertiaCmd.Flags().StringVarP(&inertiaFile, "file", "f", "", "Polygonal section JSON file")
}

func runInertia(cmd *cobra.Command, args []string) error {
	var profiles []section.Profile
	switch {
	case inertiaFile != "":
		poly, err := section.LoadFromFile(inertiaFile)
		if err != nil {
			return err
		}
		profiles = append(profiles, poly)
	case len(args) == 1:
		k, err := section.ParseKind(args[0])
		if err != nil {
			return err
		}
		p, err := section.Preset(k)
		if err != nil {
			return err
		}
		profiles = append(profiles, p)
	default:
		for _, k := range section.Kinds {
			p, err := section.Preset(k)
			if err != nil {
				return err
			}
			profiles = append(profiles, p)
		}
	}

	header("MOMENT OF INERTIA")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Section\tArea (m²)\tDepth (m)\tc (m)\tI (m⁴)\n")
	fmt.Fprintf(w, "  ───────\t─────────\t─────────\t─────\t──────\n")
	for _, p := range profiles {
		name := p.Kind().String()
		if poly, ok := p.(*section.Polygon); ok && poly.Name != "" {
			name = poly.Name
		}
		fmt.Fprintf(w, "  %s\t%.5f\t%.4f\t%.4f\t%.6e\n", name, p.Area(), p.Depth(), p.ExtremeFiber(), p.Inertia())
	}
	w.Flush()
	fmt.Println()
	return nil
}
