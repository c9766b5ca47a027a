package components

import (
	"strings"
	"testing"

	"github.com/theirongolddev/savemoney/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{80, 3}, {81, 4}, {10, 1}, {7, 7}} {
		widths := LayoutRow(tc.total, tc.n)
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if len(widths) != tc.n || sum != tc.total {
			t.Fatalf("LayoutRow(%d, %d) = %v, want %d widths summing to %d", tc.total, tc.n, widths, tc.n, tc.total)
		}
	}
	if got := LayoutRow(10, 0); got != nil {
		t.Fatalf("LayoutRow(10, 0) = %v, want nil", got)
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22, false)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22, true)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no ANSI codes: %q", i, lines[i])
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Balance", Value: "Rp 1.000.000", Tone: ToneIncome},
		{Label: "Today", Value: "Rp 25.000", Note: "of Rp 32.258", Tone: ToneExpense},
		{Label: "Remaining", Value: "Rp 975.000"},
	}, 90)
	if got := lipgloss.Width(row); got != 90 {
		t.Fatalf("MetricCardRow width = %d, want 90", got)
	}
}

func TestTabIdxByKey(t *testing.T) {
	tests := []struct {
		key  rune
		want int
	}{
		{'d', TabDashboard},
		{'t', TabTransactions},
		{'x', TabSettings},
		{'z', -1},
	}
	for _, tt := range tests {
		if got := TabIdxByKey(tt.key); got != tt.want {
			t.Fatalf("TabIdxByKey(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestTabVisualWidth(t *testing.T) {
	for i, tab := range Tabs {
		active := TabVisualWidth(tab, true)
		if active != len(tab.Name)+2*tabPadding {
			t.Fatalf("active width of %q = %d, want %d", tab.Name, active, len(tab.Name)+2*tabPadding)
		}
		inactive := TabVisualWidth(tab, false)
		want := len(tab.Name) + 2*tabPadding
		if tab.KeyPos < 0 {
			want += 3
		}
		if inactive != want {
			t.Fatalf("inactive width of tab %d = %d, want %d", i, inactive, want)
		}
	}
}

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		max, want float64
	}{
		{0, 1},
		{100, 20},
		{50, 10},
		{1_000_000, 200_000},
		{30, 5},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.max); got != tt.want {
			t.Fatalf("chartTickStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{500, "500"},
		{2000, "2K"},
		{1_500_000, "1.5M"},
		{3_000_000_000, "3B"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.v); got != tt.want {
			t.Fatalf("formatChartLabel(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestSpendingChartLimitLine(t *testing.T) {
	values := []float64{10_000, 100_000, 0, 20_000, 60_000, 5_000, 30_000}
	labels := []string{"Wed", "Thu", "Fri", "Sat", "Sun", "Mon", "Today"}

	with := SpendingChart(values, labels, 50_000, 60, 8)
	if !strings.Contains(with, "┈") {
		t.Fatal("chart with a limit should draw the limit line")
	}
	if !strings.Contains(with, "Wed") {
		t.Fatal("chart should carry x-axis labels")
	}

	without := SpendingChart(values, labels, 0, 60, 8)
	if strings.Contains(without, "┈") {
		t.Fatal("chart without a limit should not draw the limit line")
	}
}

func TestSpendingChartFallsBackToSparkline(t *testing.T) {
	out := SpendingChart([]float64{1, 2, 3}, nil, 0, 10, 2)
	if lipgloss.Height(out) != 1 {
		t.Fatalf("narrow chart height = %d, want 1", lipgloss.Height(out))
	}
}
