package tui

import (
	"strings"
	"testing"

	"github.com/kingrea/wordtrack/internal/dashboard"
)

func TestRenderBurndownPlotsBothSeries(t *testing.T) {
	b := dashboard.Burndown{
		Weeks:  []int{1, 2, 3, 4},
		Ideal:  []int{1, 2, 3, 4},
		Actual: []int{1, 1, 1, 1},
	}
	out := renderBurndown(b, 4)
	lines := strings.Split(out, "\n")
	// 4 plot rows, x-axis, week labels, legend
	if len(lines) != 7 {
		t.Fatalf("lines = %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "4 │") {
		t.Fatalf("top row should carry the max label, got %q", lines[0])
	}
	if got := strings.Count(out, actualGlyph); got != 4+1 {
		t.Fatalf("actual points = %d, want 4 plus legend", got)
	}
	// week 1 overlaps; the actual point wins there
	if got := strings.Count(out, idealGlyph); got != 3+1 {
		t.Fatalf("ideal points = %d, want 3 plus legend", got)
	}
	if !strings.Contains(lines[len(lines)-1], "Ideal Pace") || !strings.Contains(lines[len(lines)-1], "Actual Progress") {
		t.Fatalf("legend missing: %q", lines[len(lines)-1])
	}
}

func TestRenderBurndownEmptyActual(t *testing.T) {
	b := dashboard.Burndown{Weeks: []int{1, 2}, Ideal: []int{1, 2}}
	out := renderBurndown(b, 1)
	if strings.Count(out, actualGlyph) != 1 {
		t.Fatalf("only the legend should use the actual glyph:\n%s", out)
	}
}

func TestWeekAxisLabels(t *testing.T) {
	axis := weekAxis(52)
	if !strings.HasPrefix(axis, "1 ") || !strings.HasSuffix(axis, "52 wk") {
		t.Fatalf("axis = %q", axis)
	}
	if !strings.Contains(axis, "26") {
		t.Fatalf("axis should label the middle week: %q", axis)
	}
	if weekAxis(0) != "" {
		t.Fatalf("empty plan should have no axis")
	}
}
