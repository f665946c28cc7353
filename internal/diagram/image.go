package diagram

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/alexiusacademia/gobeam/internal/beam"
)

// Figure size of the exported diagrams.
var (
	Width  = 10 * vg.Inch
	Height = 7 * vg.Inch
)

var (
	momentColor     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	deflectionColor = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	shearColor      = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Formats lists the image formats Write accepts.
var Formats = []string{"png", "svg", "pdf", "jpg", "jpeg", "tif", "tiff", "eps"}

// Export writes the three diagrams to filename. The format follows the
// extension; unknown extensions get ".png" appended.
func Export(res *beam.Result, filename string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if !supported(format) {
		format = "png"
		filename += ".png"
	}

	// Create directory if needed
	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Write(res, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write renders the moment, deflection and shear panels stacked vertically.
func Write(res *beam.Result, w io.Writer, format string) error {
	plots, err := Panels(res)
	if err != nil {
		return err
	}

	c, err := draw.NewFormattedCanvas(Width, Height, format)
	if err != nil {
		return fmt.Errorf("diagram: %w", err)
	}

	rows := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		rows[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      4 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  4 * vg.Millimeter,
	}

	canvases := plot.Align(rows, tiles, draw.New(c))
	for i := range plots {
		plots[i].Draw(canvases[i][0])
	}

	_, err = c.WriteTo(w)
	return err
}

// Panels builds one plot per diagram: moment, deflection and shear.
func Panels(res *beam.Result) ([]*plot.Plot, error) {
	xs := beam.Positions(res.Samples)

	mm := make([]float64, len(res.Samples))
	for i, s := range res.Samples {
		mm[i] = s.Deflection * 1000
	}

	moment, err := panel("Bending Moment Diagram", "Moment (N·m)", xs, beam.Moments(res.Samples), momentColor, false)
	if err != nil {
		return nil, err
	}
	peak, err := plotter.NewScatter(plotter.XYs{{X: res.MaxMoment.X, Y: res.MaxMoment.Value}})
	if err != nil {
		return nil, err
	}
	peak.GlyphStyle.Color = momentColor
	peak.GlyphStyle.Radius = vg.Points(3)
	peak.GlyphStyle.Shape = draw.CircleGlyph{}
	moment.Add(peak)

	deflection, err := panel(fmt.Sprintf("Deflection Diagram (%s)", res.Method), "Deflection (mm)", xs, mm, deflectionColor, false)
	if err != nil {
		return nil, err
	}

	shear, err := panel("Shear Force Diagram", "Shear (N)", xs, beam.Shears(res.Samples), shearColor, true)
	if err != nil {
		return nil, err
	}

	return []*plot.Plot{moment, deflection, shear}, nil
}

func panel(title, ylabel string, xs, ys []float64, c color.Color, step bool) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Position along the beam (m)"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = c
	if step {
		line.StepStyle = plotter.PostStep
	}
	p.Add(line)

	// Zero reference
	zero, err := plotter.NewLine(plotter.XYs{{X: xs[0], Y: 0}, {X: xs[len(xs)-1], Y: 0}})
	if err != nil {
		return nil, err
	}
	zero.LineStyle.Width = vg.Points(0.5)
	zero.LineStyle.Color = color.Gray{Y: 96}
	p.Add(zero)

	return p, nil
}

func supported(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}
