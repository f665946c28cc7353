package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/material"
)

var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "List the material presets",
	Run: func(cmd *cobra.Command, args []string) {
		header("MATERIAL PRESETS")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Material\tE (GPa)\n")
		fmt.Fprintf(w, "  ────────\t───────\n")
		for _, m := range material.All() {
			fmt.Fprintf(w, "  %s\t%.2f\n", m.Name, m.Modulus/1e9)
		}
		w.Flush()
		fmt.Println()
		fmt.Printf("  Concrete: Ec = 4700√f'c with f'c = %.0f MPa (NSCP 2015 Section 419.2.2.1)\n", material.ConcreteFc)
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(materialsCmd)
}
