package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/gobeam/internal/beam"
)

// Sheet names of the workbook.
const (
	SummarySheet = "Summary"
	SamplesSheet = "Samples"
)

// XLSX writes a workbook with a summary sheet and one row per station.
func XLSX(w io.Writer, res *beam.Result) error {
	if res == nil {
		return fmt.Errorf("report: no result")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	summary := [][]any{
		{"Parameter", "Value", "Unit"},
		{"Length", res.Config.Length, "m"},
		{"Load position", res.Config.LoadPosition, "m"},
		{"Load", res.Config.Load, "N"},
		{"Material", res.Config.Material, ""},
		{"Section", res.Section, ""},
		{"Deflection method", res.Method.String(), ""},
		{"Elastic modulus", res.Modulus, "Pa"},
		{"Moment of inertia", res.Inertia, "m^4"},
		{"R1", res.R1, "N"},
		{"R2", res.R2, "N"},
		{"Max moment", res.MaxMoment.Value, "N·m"},
		{"Max moment at", res.MaxMoment.X, "m"},
		{"Max shear", res.MaxShear.Value, "N"},
		{"Max deflection", res.MaxDeflection.Value, "m"},
		{"Max deflection at", res.MaxDeflection.X, "m"},
		{"Max bending stress", res.MaxStress, "Pa"},
	}
	if err := writeRows(f, SummarySheet, summary); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 22); err != nil {
		return err
	}

	if _, err := f.NewSheet(SamplesSheet); err != nil {
		return err
	}
	rows := make([][]any, 0, len(res.Samples)+1)
	rows = append(rows, []any{"x (m)", "M (N·m)", "V (N)", "deflection (m)"})
	for _, s := range res.Samples {
		rows = append(rows, []any{s.X, s.Moment, s.Shear, s.Deflection})
	}
	if err := writeRows(f, SamplesSheet, rows); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("report: %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
