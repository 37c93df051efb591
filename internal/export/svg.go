package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/elastosim/internal/relax"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

func fieldRange(f *mat.Dense) (lo, hi float64) {
	r, _ := f.Dims()
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := 0; i < r; i++ {
		row := f.RawRowView(i)
		lo = math.Min(lo, floats.Min(row))
		hi = math.Max(hi, floats.Max(row))
	}
	return lo, hi
}

// HeatmapSVG draws a field as coloured cells with row 0 at the bottom.
func HeatmapSVG(f *mat.Dense, cell int, title string) string {
	if f == nil {
		return ""
	}
	if cell <= 0 {
		cell = 16
	}
	rows, cols := f.Dims()
	lo, hi := fieldRange(f)
	norm := Normalize(lo, hi)

	top := 0
	if title != "" {
		top = 24
	}
	width, height := cols*cell, rows*cell+top

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	if title != "" {
		fmt.Fprintf(&sb, `<text x="4" y="16" fill="#e0e0e0" font-family="monospace" font-size="12">%s [%.3g, %.3g]</text>
`, title, lo, hi)
	}
	sb.WriteString("<g>\n")
	for i := 0; i < rows; i++ {
		y := top + (rows-1-i)*cell
		for j := 0; j < cols; j++ {
			fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>
`, j*cell, y, cell, cell, HeatHex(norm(f.At(i, j))))
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// DisplacedSVG plots the deformed particle positions, coloured by vertical
// displacement. Displacements are multiplied by exaggerate.
func DisplacedSVG(res *relax.Result, size int, exaggerate float64) string {
	if res == nil || res.Ux == nil {
		return ""
	}
	if size <= 0 {
		size = 480
	}
	if exaggerate <= 0 {
		exaggerate = 1
	}

	n := res.Geometry.N
	lo, hi := fieldRange(res.Uy)
	norm := Normalize(lo, hi)

	// world window [-0.5, 1.5] keeps moderately exaggerated bodies in view
	toPx := func(v float64) float64 { return (v + 0.5) / 2 * float64(size) }

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, size, size, size, size)
	fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#404040"/>
`, toPx(0), float64(size)-toPx(1), toPx(1)-toPx(0), toPx(1)-toPx(0))
	sb.WriteString("<g>\n")
	r := math.Max(1, float64(size)/float64(4*n))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			px := res.X[j] + exaggerate*res.Ux.At(i, j)
			py := res.Y[i] + exaggerate*res.Uy.At(i, j)
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, toPx(px), float64(size)-toPx(py), r, HeatHex(norm(res.Uy.At(i, j))))
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TraceSVG draws log10 of the residual trace against iteration.
func TraceSVG(trace []float64, width, height int, strokeColor string) string {
	if len(trace) < 2 {
		return ""
	}

	ys := make([]float64, 0, len(trace))
	xs := make([]float64, 0, len(trace))
	for i, r := range trace {
		if r <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, math.Log10(r))
	}
	if len(ys) < 2 {
		return ""
	}

	minY, maxY := floats.Min(ys), floats.Max(ys)
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2
	rangeX := float64(len(trace) - 1)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)
	for k := range xs {
		x := xs[k] / rangeX * float64(width)
		y := float64(height) - (ys[k]-minY)/rangeY*float64(height)
		if k == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
