package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/config"
)

var (
	configSetLength   float64
	configSetPosition float64
	configSetLoad     float64
	configSetMaterial string
	configSetSection  string

	configShowFormat string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or edit the stored beam configuration",
	Long: `Show or edit the beam configuration file.

The file is chosen with --config or $GOBEAM_CONFIG (default beam_config.json).
A .yaml or .yml extension selects YAML; anything else is JSON. When the file
does not exist the defaults are used: L = 10 m, a = 5 m, P = 1000 N, steel,
rectangular section.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, fellBack, err := config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		if configShowFormat != "table" {
			return encode(os.Stdout, configShowFormat, cfg)
		}
		source := configPath
		if fellBack {
			source = configPath + " (not found, defaults)"
		}
		printConfig("BEAM CONFIGURATION", source, cfg)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change configuration values and save them",
	Long: `Change one or more configuration values. The result is validated
before it is written; an invalid configuration leaves the file untouched.

Examples:
  gobeam config set --length 12 --position 4
  gobeam config set --material wood --section circular`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		cfg, err = applyBeamFlags(cmd, cfg, configSetLength, configSetPosition, configSetLoad, configSetMaterial, configSetSection)
		if err != nil {
			return err
		}
		if err := config.Save(configPath, cfg); err != nil {
			return err
		}
		logger.Info("configuration saved", "path", configPath)
		printConfig("BEAM CONFIGURATION", configPath, cfg)
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Overwrite the configuration with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := beam.Default()
		if err := config.Save(configPath, cfg); err != nil {
			return err
		}
		logger.Info("configuration reset", "path", configPath)
		printConfig("BEAM CONFIGURATION", configPath, cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd, configResetCmd)

	configShowCmd.Flags().StringVar(&configShowFormat, "format", "table", "Output format: table, json, yaml")

	configSetCmd.Flags().Float64VarP(&configSetLength, "length", "L", 0, "Span length (m)")
	configSetCmd.Flags().Float64VarP(&configSetPosition, "position", "a", 0, "Load position from the left support (m)")
	configSetCmd.Flags().Float64VarP(&configSetLoad, "load", "P", 0, "Point load (N)")
	configSetCmd.Flags().StringVarP(&configSetMaterial, "material", "m", "", "Material: steel, wood, aluminum, concrete")
	configSetCmd.Flags().StringVarP(&configSetSection, "section", "s", "", "Section: rectangular, circular, i-beam")
}

func printConfig(title, source string, cfg beam.Configuration) {
	header(title)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  File:\t%s\n", source)
	fmt.Fprintf(w, "  Span Length (L):\t%g m\n", cfg.Length)
	fmt.Fprintf(w, "  Load Position (a):\t%g m\n", cfg.LoadPosition)
	fmt.Fprintf(w, "  Point Load (P):\t%g N\n", cfg.Load)
	fmt.Fprintf(w, "  Material:\t%s\n", cfg.Material)
	fmt.Fprintf(w, "  Section:\t%s\n", cfg.Section)
	w.Flush()
	fmt.Println()
}
