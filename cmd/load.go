package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/config"
	"github.com/alexiusacademia/gobeam/internal/loads"
)

var (
	// Unfactored point loads (N)
	loadCases loads.Cases

	// Options
	loadShowAll    bool
	loadSimplified bool
	loadApply      bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Calculate the factored point load using NSCP load combinations",
	Long: `Calculate the factored point load (Pu) based on NSCP 2015 load combinations.

Provide the unfactored point load from different load types and this command
will compute the factored load for all applicable NSCP load combinations.

Load Types:
  D  - Dead load
  L  - Live load
  Lr - Roof live load
  W  - Wind load
  E  - Earthquake load
  R  - Rain load

Lr and R are alternatives: "(Lr or R)" terms use the larger of the two.

Examples:
  # Simple gravity loads (dead + live)
  gobeam load --dead 500 --live 300

  # With wind load, show all combinations
  gobeam load --dead 500 --live 300 --wind 200 --all

  # Store the governing load in the configuration file
  gobeam load --dead 500 --live 300 --apply`,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	// Load flags
	loadCmd.Flags().Float64VarP(&loadCases.Dead, "dead", "d", 0, "Point load due to dead load (N)")
	loadCmd.Flags().Float64VarP(&loadCases.Live, "live", "l", 0, "Point load due to live load (N)")
	loadCmd.Flags().Float64VarP(&loadCases.Roof, "roof", "r", 0, "Point load due to roof live load (N)")
	loadCmd.Flags().Float64VarP(&loadCases.Wind, "wind", "w", 0, "Point load due to wind load (N)")
	loadCmd.Flags().Float64VarP(&loadCases.Earthquake, "earthquake", "e", 0, "Point load due to earthquake load (N)")
	loadCmd.Flags().Float64VarP(&loadCases.Rain, "rain", "R", 0, "Point load due to rain load (N)")

	// Options
	loadCmd.Flags().BoolVarP(&loadShowAll, "all", "a", false, "Show all load combination results")
	loadCmd.Flags().BoolVarP(&loadSimplified, "simplified", "s", false, "Use simplified combinations (gravity only: 1.4D and 1.2D+1.6L)")
	loadCmd.Flags().BoolVar(&loadApply, "apply", false, "Store the governing load in the configuration file")
}

func runLoad(cmd *cobra.Command, args []string) error {
	if loadCases.IsZero() {
		return errors.New("provide at least one unfactored load (see 'gobeam load --help')")
	}

	combinations := loads.Combinations
	if loadSimplified {
		combinations = loads.Simplified
	}

	header("NSCP 2015 FACTORED POINT LOAD")

	heading("UNFACTORED LOADS (N):")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, c := range []struct {
		label string
		value float64
	}{
		{"Dead Load (D)", loadCases.Dead},
		{"Live Load (L)", loadCases.Live},
		{"Roof Live Load (Lr)", loadCases.Roof},
		{"Wind Load (W)", loadCases.Wind},
		{"Earthquake Load (E)", loadCases.Earthquake},
		{"Rain Load (R)", loadCases.Rain},
	} {
		if c.value != 0 {
			fmt.Fprintf(w, "  %s:\t%.2f\n", c.label, c.value)
		}
	}
	w.Flush()
	fmt.Println()

	pu, governing := loads.Governing(loadCases, combinations)

	if loadShowAll {
		heading("LOAD COMBINATIONS (NSCP 2015 Section 203.3):")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  #\tCombination\tPu (N)\n")
		fmt.Fprintf(w, "  ─\t───────────\t──────\n")
		for _, combo := range combinations {
			marker := ""
			if combo.ID == governing.ID {
				marker = " ← GOVERNS"
			}
			fmt.Fprintf(w, "  %s\t%s\t%.2f%s\n", combo.ID, combo.Description, combo.Factored(loadCases), marker)
		}
		w.Flush()
		fmt.Println()
	}

	heading("RESULT:")
	fmt.Printf("  Governing Combination: %s (%s)\n", governing.ID, governing.Description)
	fmt.Println()
	fmt.Printf("  ╔═══════════════════════════════════╗\n")
	fmt.Printf("  ║  FACTORED LOAD (Pu) = %.2f N  \n", pu)
	fmt.Printf("  ╚═══════════════════════════════════╝\n")
	fmt.Println()

	if loadApply {
		cfg, _, err := config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		cfg.Load = pu
		if err := config.Save(configPath, cfg); err != nil {
			return err
		}
		logger.Info("governing load stored", "path", configPath, "load", pu)
	}
	return nil
}
