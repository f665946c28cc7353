package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/config"
	"github.com/alexiusacademia/gobeam/internal/diagram"
	"github.com/alexiusacademia/gobeam/internal/loads"
	"github.com/alexiusacademia/gobeam/internal/material"
	"github.com/alexiusacademia/gobeam/internal/report"
	"github.com/alexiusacademia/gobeam/internal/section"
)

var (
	// Beam inputs; unset flags keep the value from the configuration file
	analyzeLength      float64
	analyzePosition    float64
	analyzeLoad        float64
	analyzeMaterial    string
	analyzeSection     string
	analyzeSectionFile string

	// Unfactored load components (N)
	analyzeCases      loads.Cases
	analyzeSimplified bool

	// Solver options
	analyzeSamples int
	analyzeMethod  string

	// Output options
	analyzeFormat  string
	analyzeDiagram bool
	analyzeOutput  string
	analyzeReport  string
	analyzeXLSX    string
	analyzeProject string
	analyzeSave    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a simply supported beam with a point load",
	Long: `Compute the support reactions and the bending moment, shear force and
deflection diagrams of a simply supported beam carrying one point load.

The beam starts from the configuration file (or the defaults when there is
none); any flag given on the command line overrides the stored value.

Load components (--dead, --live, ...) replace --load with the governing
factored load of the NSCP 2015 load combinations.

Examples:
  # Analyze the stored configuration
  gobeam analyze

  # 8 m wooden beam, 2 kN at 3 m, with ASCII diagrams
  gobeam analyze --length 8 --position 3 --load 2000 --material wood --diagram

  # Factored load on an I-beam, exported to PDF and PNG
  gobeam analyze --dead 800 --live 500 --section i-beam --report beam.pdf -o beam.png

  # Custom polygonal section
  gobeam analyze --section-file tee.json --format json`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Beam flags
	analyzeCmd.Flags().Float64VarP(&analyzeLength, "length", "L", 0, "Span length (m)")
	analyzeCmd.Flags().Float64VarP(&analyzePosition, "position", "a", 0, "Load position from the left support (m)")
	analyzeCmd.Flags().Float64VarP(&analyzeLoad, "load", "P", 0, "Point load (N)")
	analyzeCmd.Flags().StringVarP(&analyzeMaterial, "material", "m", "", "Material: steel, wood, aluminum, concrete")
	analyzeCmd.Flags().StringVarP(&analyzeSection, "section", "s", "", "Section: rectangular, circular, i-beam")
	analyzeCmd.Flags().StringVarP(&analyzeSectionFile, "section-file", "f", "", "Polygonal section JSON file (overrides --section)")

	// Load combination flags
	analyzeCmd.Flags().Float64Var(&analyzeCases.Dead, "dead", 0, "Point load due to dead load (N)")
	analyzeCmd.Flags().Float64Var(&analyzeCases.Live, "live", 0, "Point load due to live load (N)")
	analyzeCmd.Flags().Float64Var(&analyzeCases.Roof, "roof", 0, "Point load due to roof live load (N)")
	analyzeCmd.Flags().Float64Var(&analyzeCases.Wind, "wind", 0, "Point load due to wind load (N)")
	analyzeCmd.Flags().Float64Var(&analyzeCases.Earthquake, "earthquake", 0, "Point load due to earthquake load (N)")
	analyzeCmd.Flags().Float64Var(&analyzeCases.Rain, "rain", 0, "Point load due to rain load (N)")
	analyzeCmd.Flags().BoolVar(&analyzeSimplified, "simplified", false, "Use simplified combinations (1.4D and 1.2D+1.6L)")

	// Solver flags
	analyzeCmd.Flags().IntVarP(&analyzeSamples, "samples", "n", beam.DefaultSamples, "Number of stations along the span")
	analyzeCmd.Flags().StringVar(&analyzeMethod, "method", "closed-form", "Deflection method: closed-form, integration")

	// Output flags
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "table", "Output format: table, json, yaml")
	analyzeCmd.Flags().BoolVarP(&analyzeDiagram, "diagram", "d", false, "Show ASCII diagrams")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Export diagrams to an image file (png, svg, pdf, ...)")
	analyzeCmd.Flags().StringVar(&analyzeReport, "report", "", "Write a PDF report")
	analyzeCmd.Flags().StringVar(&analyzeXLSX, "xlsx", "", "Write the sampled diagrams to a spreadsheet")
	analyzeCmd.Flags().StringVar(&analyzeProject, "project", "", "Project name printed on the PDF report")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Store the resulting configuration in the configuration file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, fellBack, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if fellBack {
		logger.Debug("configuration file not found, using defaults", "path", configPath)
	}

	cfg, err = applyBeamFlags(cmd, cfg, analyzeLength, analyzePosition, analyzeLoad, analyzeMaterial, analyzeSection)
	if err != nil {
		return err
	}

	var governing *loads.Combination
	combinations := loads.Combinations
	if analyzeSimplified {
		combinations = loads.Simplified
	}
	if !analyzeCases.IsZero() {
		p, combo := loads.Governing(analyzeCases, combinations)
		cfg.Load = p
		governing = &combo
	}

	an := beam.NewAnalyzer()
	an.Samples = analyzeSamples
	if an.Method, err = beam.ParseMethod(analyzeMethod); err != nil {
		return err
	}

	var prof section.Profile
	var poly *section.Polygon
	if analyzeSectionFile != "" {
		if poly, err = section.LoadFromFile(analyzeSectionFile); err != nil {
			return err
		}
		prof = poly
	} else if prof, err = section.Preset(cfg.Section); err != nil {
		return err
	}

	mat, err := material.Lookup(cfg.Material)
	if err != nil {
		return fmt.Errorf("%w: %w", beam.ErrInvalidInput, err)
	}

	res, err := an.AnalyzeWith(cfg, prof, mat)
	if err != nil {
		return err
	}
	logger.Debug("analysis complete", "method", res.Method, "samples", len(res.Samples))

	if analyzeFormat == "table" {
		printAnalysis(res, poly, governing, combinations)
		if analyzeDiagram {
			width := terminalWidth()
			fmt.Println("BEAM:")
			fmt.Println(thinRule)
			fmt.Print(diagram.BeamSketch(res.Config, min(width, 100)))
			fmt.Print(diagram.Charts(res, min(width, 120), 10))
			fmt.Println()
		}
	} else if err := encode(os.Stdout, analyzeFormat, res); err != nil {
		return err
	}

	if err := exportAnalysis(res, prof); err != nil {
		return err
	}

	if analyzeSave {
		if poly != nil {
			return errors.New("a configuration with a custom section file cannot be saved")
		}
		if err := config.Save(configPath, cfg); err != nil {
			return err
		}
		logger.Info("configuration saved", "path", configPath)
	}
	return nil
}

// applyBeamFlags overrides cfg with the beam flags given on the command line.
func applyBeamFlags(cmd *cobra.Command, cfg beam.Configuration, length, position, load float64, mat, sec string) (beam.Configuration, error) {
	flags := cmd.Flags()
	if flags.Changed("length") {
		cfg.Length = length
	}
	if flags.Changed("position") {
		cfg.LoadPosition = position
	}
	if flags.Changed("load") {
		cfg.Load = load
	}
	if flags.Changed("material") {
		name, err := material.Canonical(mat)
		if err != nil {
			return cfg, fmt.Errorf("%w: %w", beam.ErrInvalidInput, err)
		}
		cfg.Material = name
	}
	if flags.Changed("section") {
		k, err := section.ParseKind(sec)
		if err != nil {
			return cfg, err
		}
		cfg.Section = k
	}
	return cfg, nil
}

func exportAnalysis(res *beam.Result, prof section.Profile) error {
	if analyzeOutput != "" {
		if err := diagram.Export(res, analyzeOutput); err != nil {
			return fmt.Errorf("exporting diagram: %w", err)
		}
		logger.Info("diagram exported", "path", analyzeOutput)
	}
	if analyzeReport != "" {
		err := writeFile(analyzeReport, func(w io.Writer) error {
			return report.PDF(w, report.Input{Project: analyzeProject, Result: res, Profile: prof})
		})
		if err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info("report written", "path", analyzeReport)
	}
	if analyzeXLSX != "" {
		err := writeFile(analyzeXLSX, func(w io.Writer) error {
			return report.XLSX(w, res)
		})
		if err != nil {
			return fmt.Errorf("writing spreadsheet: %w", err)
		}
		logger.Info("spreadsheet written", "path", analyzeXLSX)
	}
	return nil
}

func printAnalysis(res *beam.Result, poly *section.Polygon, governing *loads.Combination, combinations []loads.Combination) {
	header("SIMPLY SUPPORTED BEAM ANALYSIS")

	if governing != nil {
		heading("LOAD COMBINATIONS (NSCP 2015 Section 203.3):")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  #\tCombination\tP (N)\n")
		fmt.Fprintf(w, "  ─\t───────────\t─────\n")
		for _, combo := range combinations {
			marker := ""
			if combo.ID == governing.ID {
				marker = " ← GOVERNS"
			}
			fmt.Fprintf(w, "  %s\t%s\t%.2f%s\n", combo.ID, combo.Description, combo.Factored(analyzeCases), marker)
		}
		w.Flush()
		fmt.Println()
	}

	heading("INPUT DATA:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Span Length (L):\t%.3f m\n", res.Config.Length)
	fmt.Fprintf(w, "  Load Position (a):\t%.3f m\n", res.Config.LoadPosition)
	fmt.Fprintf(w, "  Point Load (P):\t%.2f N\n", res.Config.Load)
	fmt.Fprintf(w, "  Material:\t%s\n", res.Config.Material)
	if poly != nil {
		name := poly.Name
		if name == "" {
			name = analyzeSectionFile
		}
		fmt.Fprintf(w, "  Section:\tcustom (%s, %d vertices)\n", name, len(poly.Vertices))
	} else {
		fmt.Fprintf(w, "  Section:\t%s\n", res.Section)
	}
	w.Flush()
	fmt.Println()

	heading("PROPERTIES:")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Elastic Modulus (E):\t%.3e Pa\n", res.Modulus)
	fmt.Fprintf(w, "  Moment of Inertia (I):\t%.4e m⁴\n", res.Inertia)
	fmt.Fprintf(w, "  Flexural Rigidity (EI):\t%.4e N·m²\n", res.Modulus*res.Inertia)
	w.Flush()
	fmt.Println()

	heading("REACTIONS:")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  R1 (left support):\t%.2f N\n", res.R1)
	fmt.Fprintf(w, "  R2 (right support):\t%.2f N\n", res.R2)
	w.Flush()
	fmt.Println()

	heading("RESULTS:")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Deflection Method:\t%s (%d stations)\n", res.Method, len(res.Samples))
	fmt.Fprintf(w, "  Max Moment:\t%.2f N·m\tat x = %.3f m\n", res.MaxMoment.Value, res.MaxMoment.X)
	fmt.Fprintf(w, "  Max Shear:\t%.2f N\tat x = %.3f m\n", res.MaxShear.Value, res.MaxShear.X)
	fmt.Fprintf(w, "  Max Deflection:\t%.4f mm\tat x = %.3f m\n", res.MaxDeflection.Value*1000, res.MaxDeflection.X)
	w.Flush()
	fmt.Println()

	fmt.Print(diagram.SummaryBox("BENDING STRESS", []string{
		fmt.Sprintf("σ max = M·c/I = %.3f MPa", res.MaxStress/1e6),
	}))
	fmt.Println()
}
