// Package dashboard derives the read-only views of a progress snapshot: the
// headline metrics and the ideal vs. actual burndown series. Nothing here is
// stored; every render recomputes from the current snapshot.
package dashboard

import (
	"time"

	"github.com/kingrea/wordtrack/internal/progress"
)

// TotalWeeks is the length of a standard reading year.
const TotalWeeks = 52

// Status labels.
const (
	StatusOnTrack = "On Track"
	StatusBehind  = "Behind"
)

// Metrics are the headline numbers shown above the checklist.
type Metrics struct {
	ElapsedDays int
	CurrentWeek int
	Completed   int
	TotalWeeks  int
	Fraction    float64
	Status      string
	// NotStarted is true when today falls before the start date.
	NotStarted bool
}

// OnTrack reports whether Status is StatusOnTrack.
func (m Metrics) OnTrack() bool {
	return m.Status == StatusOnTrack
}

// Percent returns the completion percentage truncated to a whole number.
func (m Metrics) Percent() int {
	return int(m.Fraction * 100)
}

// ComputeMetrics derives the metrics for a standard 52-week plan.
func ComputeMetrics(snap progress.Snapshot, today, start time.Time) Metrics {
	return ComputeMetricsFor(snap, today, start, TotalWeeks)
}

// ComputeMetricsFor derives the metrics for a plan of totalWeeks weeks.
//
// The status compares completed weeks to the week before the current one.
// Before the start date the current week is 0, so the status stays On Track.
func ComputeMetricsFor(snap progress.Snapshot, today, start time.Time, totalWeeks int) Metrics {
	if totalWeeks <= 0 {
		totalWeeks = TotalWeeks
	}
	todayDate := progress.DateOf(today)
	startDate := progress.DateOf(start)

	m := Metrics{TotalWeeks: totalWeeks}
	if todayDate.Before(startDate) {
		m.NotStarted = true
	} else {
		m.ElapsedDays = daysBetween(startDate, todayDate) + 1
	}
	if m.ElapsedDays > 0 {
		m.CurrentWeek = m.ElapsedDays/7 + 1
	}
	m.Completed = snap.CompletedCount()
	m.Fraction = float64(m.Completed) / float64(totalWeeks)
	if m.Completed >= m.CurrentWeek-1 {
		m.Status = StatusOnTrack
	} else {
		m.Status = StatusBehind
	}
	return m
}

// daysBetween counts calendar days between two UTC midnights. Spans longer
// than a time.Duration can hold (~292 years) must still count correctly.
func daysBetween(from, to time.Time) int {
	const secondsPerDay = 24 * 60 * 60
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}
