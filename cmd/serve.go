package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/alexiusacademia/gobeam/internal/config"
	"github.com/alexiusacademia/gobeam/internal/server"
	"github.com/alexiusacademia/gobeam/internal/storage"
)

var (
	serveAddr      string
	serveRate      float64
	serveBurst     int
	serveNoPresets bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyzer over HTTP",
	Long: `Start an HTTP server exposing the beam configuration, the analysis,
the interactive simulator state and the exports as a JSON API under /api.

The server starts from the configuration file and stops gracefully on
SIGINT or SIGTERM.

Examples:
  gobeam serve
  gobeam serve --addr :9090 --rate 5 --burst 10`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address [$"+envAddr+", default :8080]")
	serveCmd.Flags().Float64Var(&serveRate, "rate", 20, "Requests per second allowed per client")
	serveCmd.Flags().IntVar(&serveBurst, "burst", 40, "Request burst allowed per client")
	serveCmd.Flags().BoolVar(&serveNoPresets, "no-presets", false, "Disable the preset library endpoints")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := resolve(cmd, "addr", serveAddr, envAddr, ":8080")

	cfg, fellBack, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if fellBack {
		logger.Warn("configuration file not found, using defaults", "path", configPath)
	}

	opts := server.Options{
		ConfigPath: configPath,
		Logger:     logger,
		Rate:       rate.Limit(serveRate),
		Burst:      serveBurst,
	}
	if !serveNoPresets {
		store, err := storage.Open(dbPath)
		if err != nil {
			logger.Warn("could not open preset database", "path", dbPath, "error", err)
			// Continue without presets
		} else {
			defer store.Close()
			opts.Store = store
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, opts).ListenAndServe(ctx, addr)
}
