package dashboard

import "github.com/kingrea/wordtrack/internal/progress"

// Burndown holds the two cumulative series plotted per week.
type Burndown struct {
	Weeks  []int
	Ideal  []int
	Actual []int
}

// ComputeBurndown builds the series for a standard 52-week plan.
func ComputeBurndown(snap progress.Snapshot) Burndown {
	return ComputeBurndownFor(snap, TotalWeeks)
}

// ComputeBurndownFor builds the ideal series (one week per week) and the
// actual running count of completed weeks.
//
// The actual series reads the snapshot by position: slot i counts toward week
// i+1. The store orders snapshots by week at load time, so positions and week
// numbers agree. Weeks beyond the end of a short snapshot are left out of the
// actual series.
func ComputeBurndownFor(snap progress.Snapshot, totalWeeks int) Burndown {
	if totalWeeks <= 0 {
		totalWeeks = TotalWeeks
	}
	b := Burndown{
		Weeks: make([]int, totalWeeks),
		Ideal: make([]int, totalWeeks),
	}
	running := 0
	for i := 0; i < totalWeeks; i++ {
		week := i + 1
		b.Weeks[i] = week
		b.Ideal[i] = week
		if i >= len(snap) {
			continue
		}
		if snap[i].Completed {
			running++
		}
		b.Actual = append(b.Actual, running)
	}
	return b
}

// Max returns the largest value on either series, used to scale charts.
func (b Burndown) Max() int {
	hi := 0
	for _, series := range [][]int{b.Ideal, b.Actual} {
		for _, v := range series {
			if v > hi {
				hi = v
			}
		}
	}
	return hi
}
