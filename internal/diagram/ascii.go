package diagram

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/guptarohit/asciigraph"

	"github.com/alexiusacademia/gobeam/internal/beam"
)

// labelWidth is the room asciigraph takes for the y-axis labels.
const labelWidth = 14

// Charts renders the moment, shear and deflection diagrams one below the
// other, sized for a terminal of the given width.
func Charts(res *beam.Result, width, height int) string {
	if height < 4 {
		height = 4
	}
	cols := width - labelWidth
	if cols < 20 {
		cols = 20
	}

	span := fmt.Sprintf("x = 0 … %.2f m", res.Config.Length)
	mm := make([]float64, len(res.Samples))
	for i, s := range res.Samples {
		mm[i] = s.Deflection * 1000
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(Chart(beam.Moments(res.Samples), "Bending moment M(x) [N·m], "+span, cols, height, 1))
	sb.WriteString("\n\n")
	sb.WriteString(Chart(beam.Shears(res.Samples), "Shear force V(x) [N], "+span, cols, height, 1))
	sb.WriteString("\n\n")
	sb.WriteString(Chart(mm, "Deflection δ(x) [mm], downward positive, "+span, cols, height, 4))
	sb.WriteString("\n")
	return sb.String()
}

// Chart plots values with cols points. Values are picked by nearest station
// rather than interpolated, so steps stay sharp.
func Chart(values []float64, caption string, cols, height int, precision uint) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(resample(values, cols),
		asciigraph.Height(height),
		asciigraph.Caption(caption),
		asciigraph.Precision(precision),
		asciigraph.Offset(2),
	)
}

// resample picks n values by nearest index.
func resample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	last := float64(len(values) - 1)
	for i := range out {
		idx := int(math.Round(float64(i) * last / float64(n-1)))
		out[i] = values[idx]
	}
	return out
}

// BeamSketch draws the span with its supports and the load arrow.
func BeamSketch(cfg beam.Configuration, width int) string {
	cols := width - 4
	if cols < 20 {
		cols = 20
	}

	col := 0
	if cfg.Length > 0 {
		col = int(math.Round(cfg.LoadPosition / cfg.Length * float64(cols-1)))
	}
	col = max(0, min(cols-1, col))
	pad := strings.Repeat(" ", col)

	var sb strings.Builder
	sb.WriteString("\n")

	label := fmt.Sprintf("P = %.1f N", cfg.Load)
	labelCol := max(0, min(cols-utf8.RuneCountInString(label), col-utf8.RuneCountInString(label)/2))
	sb.WriteString(fmt.Sprintf("  %s%s\n", strings.Repeat(" ", labelCol), label))
	sb.WriteString(fmt.Sprintf("  %s│\n", pad))
	sb.WriteString(fmt.Sprintf("  %s▼\n", pad))
	sb.WriteString(fmt.Sprintf("  %s\n", strings.Repeat("█", cols)))
	sb.WriteString(fmt.Sprintf("  △%s○\n", strings.Repeat(" ", cols-2)))
	sb.WriteString(fmt.Sprintf("  %s\n", dimension(cols, fmt.Sprintf("L = %.2f m", cfg.Length))))
	if col > 0 {
		sb.WriteString(fmt.Sprintf("  %s\n", dimension(col+1, fmt.Sprintf("a = %.2f m", cfg.LoadPosition))))
	}
	return sb.String()
}

// dimension draws a |<-- text -->| line spanning n columns.
func dimension(n int, text string) string {
	inner := n - 2
	tl := utf8.RuneCountInString(text) + 2
	if inner < tl {
		return text
	}
	left := (inner - tl) / 2
	right := inner - tl - left
	return "|" + strings.Repeat("─", left) + " " + text + " " + strings.Repeat("─", right) + "|"
}

// SummaryBox creates a summary box for results
func SummaryBox(title string, lines []string) string {
	var sb strings.Builder

	maxLen := utf8.RuneCountInString(title)
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > maxLen {
			maxLen = n
		}
	}
	maxLen += 4

	border := strings.Repeat("═", maxLen)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", padRight(title, maxLen-4)))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", padRight(line, maxLen-4)))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}

// padRight pads by rune count; %-*s counts bytes.
func padRight(s string, n int) string {
	if d := n - utf8.RuneCountInString(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}
