package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
	stats   lipgloss.Style
	picture lipgloss.Style
	good    lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		header:  lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Secondary).Width(12),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		graph:   lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 0),
		help:    lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		stats:   lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(1, 2).Width(48),
		picture: lipgloss.NewStyle().Padding(1, 2),
		good:    lipgloss.NewStyle().Foreground(t.Good).Bold(true),
		warn:    lipgloss.NewStyle().Foreground(t.Warn).Bold(true),
		bad:     lipgloss.NewStyle().Foreground(t.Bad).Bold(true),
	}
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline compresses values into width runes, averaging over buckets.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) < width {
		width = len(values)
	}

	buckets := make([]float64, width)
	for b := range buckets {
		lo, hi := b*len(values)/width, (b+1)*len(values)/width
		sum := 0.0
		for _, v := range values[lo:hi] {
			sum += v
		}
		buckets[b] = sum / float64(hi-lo)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range buckets {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var sb strings.Builder
	for _, v := range buckets {
		idx := int(math.Round((v - lo) / span * float64(len(sparkRunes)-1)))
		if idx < 0 || idx >= len(sparkRunes) {
			idx = 0
		}
		sb.WriteRune(sparkRunes[idx])
	}
	return sb.String()
}

// ProgressBar renders frac of width as filled cells.
func ProgressBar(frac float64, width int) string {
	filled := int(math.Round(frac * float64(width)))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
