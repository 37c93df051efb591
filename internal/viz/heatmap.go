package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/elastosim/internal/export"
	"gonum.org/v1/gonum/mat"
)

// Heatmap renders f as cols x rows terminal cells, two characters wide,
// with row 0 of the field at the bottom. Each cell samples the nearest
// field point.
func Heatmap(f *mat.Dense, cols, rows int) string {
	n, m := f.Dims()
	if cols <= 0 || rows <= 0 || n == 0 || m == 0 {
		return ""
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		for _, v := range f.RawRowView(i) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	norm := export.Normalize(lo, hi)

	var sb strings.Builder
	for r := rows - 1; r >= 0; r-- {
		i := sample(r, rows, n)
		for c := 0; c < cols; c++ {
			j := sample(c, cols, m)
			cell := lipgloss.NewStyle().Background(lipgloss.Color(export.HeatHex(norm(f.At(i, j)))))
			sb.WriteString(cell.Render("  "))
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%s %.3g  %s %.3g\n",
		lipgloss.NewStyle().Foreground(lipgloss.Color(export.HeatHex(0))).Render("■"), lo,
		lipgloss.NewStyle().Foreground(lipgloss.Color(export.HeatHex(1))).Render("■"), hi)
	return sb.String()
}

// sample maps cell k of cells onto an index of a size-n axis.
func sample(k, cells, n int) int {
	if cells == 1 {
		return 0
	}
	return int(math.Round(float64(k) * float64(n-1) / float64(cells-1)))
}
