package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/config"
	"github.com/alexiusacademia/gobeam/internal/logging"
	"github.com/alexiusacademia/gobeam/internal/version"
)

// Environment variables that provide defaults for the persistent flags.
const (
	envConfig   = "GOBEAM_CONFIG"
	envDB       = "GOBEAM_DB"
	envAddr     = "GOBEAM_ADDR"
	envLogLevel = "GOBEAM_LOG_LEVEL"
)

const defaultDBPath = "~/.gobeam/presets.db"

var (
	configPath string
	dbPath     string
	logLevel   string

	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gobeam",
	Short: "Simply supported beam analysis tool",
	Long: `gobeam - Go Simply Supported Beam Analyzer

A CLI tool for the analysis of a simply supported beam carrying a single
point load.

This tool computes:
  - Support reactions
  - Bending moment, shear force and deflection diagrams
  - Moment of inertia of preset and polygonal cross-sections
  - Factored point loads from NSCP load combinations

The current beam configuration is kept in a JSON or YAML file and can be
edited from the command line or through the HTTP API ('gobeam serve').`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		configPath = resolve(cmd, "config", configPath, envConfig, config.DefaultPath)
		dbPath = resolve(cmd, "db", dbPath, envDB, defaultDBPath)
		logLevel = resolve(cmd, "log-level", logLevel, envLogLevel, "info")

		var err error
		logger, err = logging.New(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println(bannerLine(""))
		fmt.Println(bannerLine("gobeam v" + version.Version))
		fmt.Println(bannerLine("Go Simply Supported Beam Analyzer"))
		fmt.Println(bannerLine(version.Author + " ©  " + version.Year))
		fmt.Println(bannerLine(""))
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Reactions, moment, shear and deflection of a point-loaded span")
		fmt.Println("    • Steel, wood, aluminum and concrete material presets")
		fmt.Println("    • Rectangular, circular, I-shaped and polygonal sections")
		fmt.Println("    • ASCII charts, image, PDF and spreadsheet exports")
		fmt.Println("    • Named configuration presets and an HTTP API")
		fmt.Println()
		fmt.Println("  Use 'gobeam --help' to see available commands.")
		fmt.Println()
		fmt.Println("  ─────────────────────────────────────────────────────────────")
		fmt.Printf("  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Beam configuration file (json or yaml) [$"+envConfig+", default "+config.DefaultPath+"]")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Preset library database [$"+envDB+", default "+defaultDBPath+"]")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error [$"+envLogLevel+", default info]")
}

// resolve picks the flag value when set on the command line, then the
// environment, then fallback.
func resolve(cmd *cobra.Command, flag, value, env, fallback string) string {
	if cmd.Flags().Changed(flag) {
		return value
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}
