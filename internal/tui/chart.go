package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/wordtrack/internal/dashboard"
)

const (
	idealGlyph  = "·"
	actualGlyph = "●"
)

var (
	idealStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	actualStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// renderBurndown draws the ideal and actual series as a text plot, one column
// per week. Where both series land on the same cell the actual point wins.
func renderBurndown(b dashboard.Burndown, height int) string {
	if height < 2 {
		height = 2
	}
	top := b.Max()
	if top == 0 {
		top = 1
	}
	level := func(v int) int {
		return int(math.Round(float64(v) * float64(height) / float64(top)))
	}
	labelWidth := len(fmt.Sprint(top))

	var lines []string
	for row := height; row >= 1; row-- {
		label := strings.Repeat(" ", labelWidth)
		switch row {
		case height:
			label = fmt.Sprintf("%*d", labelWidth, top)
		case (height + 1) / 2:
			label = fmt.Sprintf("%*d", labelWidth, top*row/height)
		}
		var sb strings.Builder
		for i := range b.Weeks {
			switch {
			case i < len(b.Actual) && level(b.Actual[i]) == row:
				sb.WriteString(actualStyle.Render(actualGlyph))
			case i < len(b.Ideal) && level(b.Ideal[i]) == row:
				sb.WriteString(idealStyle.Render(idealGlyph))
			default:
				sb.WriteString(" ")
			}
		}
		lines = append(lines, axisStyle.Render(label+" │")+sb.String())
	}

	pad := strings.Repeat(" ", labelWidth)
	lines = append(lines, axisStyle.Render(fmt.Sprintf("%s 0└%s", pad[1:], strings.Repeat("─", len(b.Weeks)))))
	lines = append(lines, axisStyle.Render(pad+"  "+weekAxis(len(b.Weeks))))
	lines = append(lines, fmt.Sprintf("%s  %s Ideal Pace   %s Actual Progress",
		pad,
		idealStyle.Render(idealGlyph),
		actualStyle.Render(actualGlyph),
	))
	return strings.Join(lines, "\n")
}

// weekAxis labels the first, middle and last week under the plot.
func weekAxis(weeks int) string {
	if weeks <= 0 {
		return ""
	}
	axis := []rune(strings.Repeat(" ", weeks+3))
	put := func(col int, text string) {
		for i, r := range text {
			if col+i < len(axis) {
				axis[col+i] = r
			}
		}
	}
	put(0, "1")
	if weeks >= 8 {
		mid := fmt.Sprint(weeks / 2)
		put(weeks/2-1, mid)
	}
	last := fmt.Sprint(weeks)
	put(weeks-len(last), last)
	return strings.TrimRight(string(axis), " ") + " wk"
}
