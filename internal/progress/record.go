// Package progress owns the mutable half of the tracker: one completion record
// per plan week, the merge of checkbox input into those records, and the
// comma-separated file they are persisted to.
package progress

import (
	"time"

	"github.com/kingrea/wordtrack/internal/plan"
)

// Record is the completion state of a single week.
type Record struct {
	Week    int
	Reading string
	Focus   string

	Completed bool
	// DateCompleted is the zero time when no completion date is known.
	DateCompleted time.Time
}

// HasDate reports whether a completion date was recorded.
func (r Record) HasDate() bool {
	return !r.DateCompleted.IsZero()
}

// Entry returns the plan entry the record was created from.
func (r Record) Entry() plan.Entry {
	return plan.Entry{Week: r.Week, Reading: r.Reading, Focus: r.Focus}
}

// Snapshot is the full set of records ordered by week.
type Snapshot []Record

// NewSnapshot builds the initial, all-incomplete snapshot for a plan.
func NewSnapshot(entries []plan.Entry) Snapshot {
	snap := make(Snapshot, 0, len(entries))
	for _, e := range entries {
		snap = append(snap, Record{Week: e.Week, Reading: e.Reading, Focus: e.Focus})
	}
	return snap
}

// Clone returns an independent copy.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

// CompletedCount returns the number of completed weeks.
func (s Snapshot) CompletedCount() int {
	n := 0
	for _, r := range s {
		if r.Completed {
			n++
		}
	}
	return n
}

// Record looks a week up by its number.
func (s Snapshot) Record(week int) (Record, bool) {
	for _, r := range s {
		if r.Week == week {
			return r, true
		}
	}
	return Record{}, false
}

// Inputs returns the checkbox values implied by the snapshot, keyed by week.
func (s Snapshot) Inputs() map[int]bool {
	out := make(map[int]bool, len(s))
	for _, r := range s {
		out[r.Week] = r.Completed
	}
	return out
}

// Change describes one week whose completed flag flipped during Apply.
type Change struct {
	Week      int
	Completed bool
	// Stamped is true when the change recorded a new completion date.
	Stamped bool
}

// Apply merges checkbox values into the snapshot in week order. A week that
// goes from incomplete to complete is stamped with today's date; a week that
// is unticked keeps whatever date it had. Weeks missing from inputs are left
// alone. The snapshot is modified in place.
func Apply(snap Snapshot, inputs map[int]bool, today time.Time) []Change {
	day := DateOf(today)
	var changes []Change
	for i := range snap {
		rec := &snap[i]
		checked, ok := inputs[rec.Week]
		if !ok {
			continue
		}
		if checked == rec.Completed {
			continue
		}
		change := Change{Week: rec.Week, Completed: checked}
		if checked {
			rec.DateCompleted = day
			change.Stamped = true
		}
		rec.Completed = checked
		changes = append(changes, change)
	}
	return changes
}

// DateOf truncates t to its calendar date at UTC midnight, which is the
// precision stored on disk.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
