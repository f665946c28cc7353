// Package report renders analysis results as PDF and XLSX documents.
package report

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/diagram"
	"github.com/alexiusacademia/gobeam/internal/section"
)

// Input is what a report is built from.
type Input struct {
	Title   string
	Project string
	Result  *beam.Result
	Profile section.Profile // drawn as the section outline; optional
}

const (
	pageMargin = 15.0
	labelCol   = 60.0
	valueCol   = 50.0
	rowHeight  = 6.0
)

// PDF writes an A4 report: tables and the section outline on the first
// page, the diagrams on the second.
func PDF(w io.Writer, in Input) error {
	if in.Result == nil {
		return fmt.Errorf("report: no result")
	}
	if in.Title == "" {
		in.Title = "Beam Analysis Report"
	}
	res := in.Result

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, in.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)
	if in.Project != "" {
		pdf.Cell(0, 5, fmt.Sprintf("Project: %s", in.Project))
		pdf.Ln(5)
	}
	pdf.Cell(0, 5, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(8)

	top := pdf.GetY()
	heading(pdf, "Input Parameters")
	row(pdf, tr, "Span length L", fmt.Sprintf("%.3f m", res.Config.Length))
	row(pdf, tr, "Load position a", fmt.Sprintf("%.3f m", res.Config.LoadPosition))
	row(pdf, tr, "Point load P", fmt.Sprintf("%.2f N", res.Config.Load))
	row(pdf, tr, "Material", res.Config.Material)
	row(pdf, tr, "Section", res.Section)
	row(pdf, tr, "Deflection method", res.Method.String())

	heading(pdf, "Properties")
	row(pdf, tr, "Elastic modulus E", fmt.Sprintf("%.3e Pa", res.Modulus))
	row(pdf, tr, "Moment of inertia I", fmt.Sprintf("%.4e m^4", res.Inertia))
	row(pdf, tr, "Flexural rigidity EI", fmt.Sprintf("%.4e N·m²", res.Modulus*res.Inertia))

	heading(pdf, "Reactions")
	row(pdf, tr, "R1 (left)", fmt.Sprintf("%.2f N", res.R1))
	row(pdf, tr, "R2 (right)", fmt.Sprintf("%.2f N", res.R2))

	heading(pdf, "Results")
	row(pdf, tr, "Max moment", fmt.Sprintf("%.2f N·m at x = %.3f m", res.MaxMoment.Value, res.MaxMoment.X))
	row(pdf, tr, "Max shear", fmt.Sprintf("%.2f N at x = %.3f m", res.MaxShear.Value, res.MaxShear.X))
	row(pdf, tr, "Max deflection", fmt.Sprintf("%.4f mm at x = %.3f m", res.MaxDeflection.Value*1000, res.MaxDeflection.X))
	row(pdf, tr, "Max bending stress", fmt.Sprintf("%.3f MPa", res.MaxStress/1e6))

	if in.Profile != nil {
		drawOutline(pdf, section.Outline(in.Profile, 48), pageMargin+labelCol+valueCol+10, top+8, 50)
	}

	var img bytes.Buffer
	if err := diagram.Write(res, &img, "png"); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("diagrams", opts, &img)
	pdf.AddPage()
	heading(pdf, "Diagrams")
	pageW, _ := pdf.GetPageSize()
	pdf.ImageOptions("diagrams", pageMargin, pdf.GetY()+2, pageW-2*pageMargin, 0, false, opts, 0, "")

	return pdf.Output(w)
}

func heading(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, rowHeight+1, title)
	pdf.Ln(rowHeight + 1)
	pdf.SetFont("Helvetica", "", 10)
}

func row(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.CellFormat(labelCol, rowHeight, tr(label), "B", 0, "L", false, 0, "")
	pdf.CellFormat(valueCol, rowHeight, tr(value), "B", 1, "R", false, 0, "")
}

// drawOutline scales pts into a size x size box with its top-left corner at
// (x, y). The section y axis points up, the page y axis down.
func drawOutline(pdf *gofpdf.Fpdf, pts []section.Point, x, y, size float64) {
	if len(pts) < 3 {
		return
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	extent := math.Max(maxX-minX, maxY-minY)
	if extent <= 0 {
		return
	}
	scale := size / extent
	offX := x + (size-(maxX-minX)*scale)/2
	offY := y + (size-(maxY-minY)*scale)/2

	poly := make([]gofpdf.PointType, len(pts))
	for i, p := range pts {
		poly[i] = gofpdf.PointType{
			X: offX + (p.X-minX)*scale,
			Y: offY + (maxY-p.Y)*scale,
		}
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(x, y-2, "Cross-section")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetDrawColor(40, 40, 40)
	pdf.SetFillColor(200, 210, 225)
	pdf.Polygon(poly, "DF")
}
