package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel         lipgloss.Style
	CanvasStyle   lipgloss.Style
	Title         lipgloss.Style
	Subtle        lipgloss.Style
	StatusEditing lipgloss.Style
	StatusRunning lipgloss.Style
	StatusPaused  lipgloss.Style
	StatusError   lipgloss.Style
	MetricLabel   lipgloss.Style
	MetricValue   lipgloss.Style
	KeyHint       lipgloss.Style
	KeyName       lipgloss.Style
	GraphStyle    lipgloss.Style
	SparkHigh     lipgloss.Style
	SparkMid      lipgloss.Style
	SparkLow      lipgloss.Style
)

func init() { applyTheme(CurrentTheme) }

func applyTheme(t Theme) {
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(0, 1).
		Width(34)
	CanvasStyle = lipgloss.NewStyle().
		Foreground(t.Canvas).
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Muted)
	Title = lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	Subtle = lipgloss.NewStyle().Foreground(t.Muted)
	StatusEditing = lipgloss.NewStyle().Bold(true).Foreground(t.Secondary)
	StatusRunning = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	StatusPaused = lipgloss.NewStyle().Bold(true).Foreground(t.Warning)
	StatusError = lipgloss.NewStyle().Bold(true).Foreground(t.Error)
	MetricLabel = lipgloss.NewStyle().Foreground(t.Muted).Width(12)
	MetricValue = lipgloss.NewStyle().Bold(true).Foreground(t.Text)
	KeyHint = lipgloss.NewStyle().Foreground(t.Muted).Italic(true)
	KeyName = lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	GraphStyle = lipgloss.NewStyle().Foreground(t.Accent)
	SparkHigh = lipgloss.NewStyle().Foreground(t.Success)
	SparkMid = lipgloss.NewStyle().Foreground(t.Warning)
	SparkLow = lipgloss.NewStyle().Foreground(t.Error)
}

// Row renders a label/value line of the side panel.
func Row(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value)
}

// Hints renders key/description pairs on one line.
func Hints(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, KeyName.Render(pairs[i])+KeyHint.Render(" "+pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}

// SparklineChart renders a one-line sparkline of values sampled to width.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	rng := max - min
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - min) / rng
		idx := int(norm * float64(len(chars)-1))
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		if idx < 0 {
			idx = 0
		}

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}
	return result.String()
}
