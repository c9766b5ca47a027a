package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/savemoney/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a one-line unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := 1 + int(v/peak*float64(len(blocks)-2))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 1 {
			idx = 1
		}
		buf.WriteRune(blocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// SpendingChart renders vertical bars with a dotted limit line. Bars above
// limit are drawn in the expense color. A limit of zero draws no line.
func SpendingChart(values []float64, labels []string, limit float64, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, theme.Active.Accent)
	}
	t := theme.Active

	maxVal := limit
	for _, v := range values {
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	tickStep := chartTickStep(maxVal)
	for math.Ceil(maxVal/tickStep) > float64(max(2, height/2)) {
		tickStep *= 2
	}
	ceiling := math.Ceil(maxVal/tickStep) * tickStep
	intervals := max(1, int(math.Round(ceiling/tickStep)))
	rowsPerTick := max(2, height/intervals)
	chartH := rowsPerTick * intervals

	yLabelW := max(4, len(formatChartLabel(ceiling))+1)
	tickLabels := make(map[int]string, intervals)
	for i := 1; i <= intervals; i++ {
		tickLabels[i*rowsPerTick] = formatChartLabel(tickStep * float64(i))
	}

	n := len(values)
	chartW := max(5, width-yLabelW-1)
	barW := min(8, max(1, (chartW-(n-1))/n))
	axisLen := n*barW + (n - 1)

	limitRow := -1
	if limit > 0 {
		limitRow = int(math.Round(limit / ceiling * float64(chartH)))
	}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	fill := lipgloss.NewStyle().Background(t.Surface)
	limitStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
	underStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	overStyle := lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		rowTop := ceiling * float64(row) / float64(chartH)
		rowBottom := ceiling * float64(row-1) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		for i, v := range values {
			if i > 0 {
				if row == limitRow {
					b.WriteString(limitStyle.Render("┈"))
				} else {
					b.WriteString(fill.Render(" "))
				}
			}
			style := underStyle
			if limit > 0 && v > limit {
				style = overStyle
			}
			switch {
			case v >= rowTop:
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := int((v - rowBottom) / (rowTop - rowBottom) * 8)
				idx = min(8, max(1, idx))
				b.WriteString(style.Render(strings.Repeat(string(blocks[idx]), barW)))
			case row == limitRow:
				b.WriteString(limitStyle.Render(strings.Repeat("┈", barW)))
			default:
				b.WriteString(fill.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	if len(labels) == n {
		cells := make([]string, n)
		for i, lbl := range labels {
			r := []rune(lbl)
			if len(r) > barW {
				r = r[:barW]
			}
			cells[i] = fmt.Sprintf("%-*s", barW, string(r))
		}
		labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		b.WriteString("\n")
		b.WriteString(fill.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(labelStyle.Render(strings.TrimRight(strings.Join(cells, " "), " ")))
	}

	return b.String()
}

// chartTickStep computes a round tick interval targeting about five ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e9:
		return trimScaled(v/1e9) + "B"
	case v >= 1e6:
		return trimScaled(v/1e6) + "M"
	case v >= 1e3:
		return trimScaled(v/1e3) + "K"
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func trimScaled(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
