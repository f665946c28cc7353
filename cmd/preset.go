package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/config"
	"github.com/alexiusacademia/gobeam/internal/storage"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage named beam configurations",
	Long: `Keep a library of named beam configurations in a SQLite database.

The database is chosen with --db or $GOBEAM_DB (default ~/.gobeam/presets.db).

Examples:
  gobeam preset save footbridge
  gobeam preset list
  gobeam preset apply footbridge`,
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Store the current configuration under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		return withStore(func(store *storage.Store) error {
			if err := store.SavePreset(args[0], cfg); err != nil {
				return err
			}
			logger.Info("preset saved", "name", args[0], "db", dbPath)
			return nil
		})
	},
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *storage.Store) error {
			presets, err := store.ListPresets()
			if err != nil {
				return err
			}

			header("BEAM PRESETS")
			if len(presets) == 0 {
				fmt.Println("  No presets stored yet. Use 'gobeam preset save <name>'.")
				fmt.Println()
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "  Name\tL (m)\ta (m)\tP (N)\tMaterial\tSection\tUpdated\n")
			fmt.Fprintf(w, "  ────\t─────\t─────\t─────\t────────\t───────\t───────\n")
			for _, p := range presets {
				fmt.Fprintf(w, "  %s\t%g\t%g\t%g\t%s\t%s\t%s\n", p.Name,
					p.Config.Length, p.Config.LoadPosition, p.Config.Load,
					p.Config.Material, p.Config.Section, p.UpdatedAt.Format("2006-01-02 15:04"))
			}
			w.Flush()
			fmt.Println()
			return nil
		})
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *storage.Store) error {
			p, err := store.Preset(args[0])
			if err != nil {
				return err
			}
			printConfig("PRESET "+p.Name, dbPath, p.Config)
			return nil
		})
	},
}

var presetApplyCmd = &cobra.Command{
	Use:   "apply <name>",
	Short: "Write a stored preset to the configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *storage.Store) error {
			p, err := store.Preset(args[0])
			if err != nil {
				return err
			}
			if err := config.Save(configPath, p.Config); err != nil {
				return err
			}
			logger.Info("preset applied", "name", p.Name, "path", configPath)
			printConfig("BEAM CONFIGURATION", configPath, p.Config)
			return nil
		})
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *storage.Store) error {
			if err := store.DeletePreset(args[0]); err != nil {
				return err
			}
			logger.Info("preset deleted", "name", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetSaveCmd, presetListCmd, presetShowCmd, presetApplyCmd, presetDeleteCmd)
}

func withStore(fn func(*storage.Store) error) error {
	store, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
