package progress

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/wordtrack/internal/config"
	"github.com/kingrea/wordtrack/internal/plan"
)

// Column headers of the progress file.
const (
	ColumnWeek          = "Week"
	ColumnReading       = "Reading Range"
	ColumnFocus         = "Focus"
	ColumnCompleted     = "Completed"
	ColumnDateCompleted = "Date_Completed"
)

var header = []string{ColumnWeek, ColumnReading, ColumnFocus, ColumnCompleted, ColumnDateCompleted}

var (
	// ErrCorrupt means the progress file exists but could not be parsed.
	ErrCorrupt = errors.New("progress: store is corrupt")
	// ErrWeekMismatch means the stored weeks do not match the plan's weeks.
	ErrWeekMismatch = errors.New("progress: stored weeks do not match the plan")
)

// Store reads and writes the progress file.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file backing this store.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the progress file is present.
func (s *Store) Exists() (bool, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("progress: stat %s: %w", s.path, err)
	}
	return true, nil
}

// LoadOrInit returns the persisted snapshot for the plan. When no file
// exists yet, a fresh all-incomplete snapshot is written before it is
// returned, so the store always exists after the first successful load.
func (s *Store) LoadOrInit(entries []plan.Entry) (Snapshot, error) {
	exists, err := s.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		snap := NewSnapshot(entries)
		if err := s.Save(snap); err != nil {
			return nil, err
		}
		return snap, nil
	}
	snap, err := s.read()
	if err != nil {
		return nil, err
	}
	if err := validate(snap, entries); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save replaces the progress file with the full snapshot. The rows are
// written to a temporary file in the same directory and renamed over the
// target.
func (s *Store) Save(snap Snapshot) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("progress: ensure dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("progress: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("progress: write header: %w", err)
	}
	for _, rec := range snap {
		if err := w.Write(encodeRecord(rec)); err != nil {
			tmp.Close()
			return fmt.Errorf("progress: write week %d: %w", rec.Week, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("progress: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("progress: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("progress: replace %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) read() (Snapshot, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("progress: open %s: %w", s.path, err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrCorrupt, s.path)
	}
	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{ColumnWeek, ColumnCompleted} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s has no %q column", ErrCorrupt, s.path, required)
		}
	}

	snap := make(Snapshot, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := decodeRecord(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrCorrupt, s.path, i+2, err)
		}
		snap = append(snap, rec)
	}
	sort.SliceStable(snap, func(i, j int) bool { return snap[i].Week < snap[j].Week })
	return snap, nil
}

// validate rejects snapshots whose week keys differ from the plan's. A
// completed record without a date is accepted as-is.
func validate(snap Snapshot, entries []plan.Entry) error {
	known := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		known[e.Week] = struct{}{}
	}
	seen := make(map[int]struct{}, len(snap))
	for _, rec := range snap {
		if _, ok := known[rec.Week]; !ok {
			return fmt.Errorf("%w: unexpected week %d", ErrWeekMismatch, rec.Week)
		}
		if _, dup := seen[rec.Week]; dup {
			return fmt.Errorf("%w: week %d appears more than once", ErrWeekMismatch, rec.Week)
		}
		seen[rec.Week] = struct{}{}
	}
	if len(seen) != len(known) {
		return fmt.Errorf("%w: %d of %d weeks stored", ErrWeekMismatch, len(seen), len(known))
	}
	return nil
}

func encodeRecord(rec Record) []string {
	completed := "False"
	if rec.Completed {
		completed = "True"
	}
	date := ""
	if rec.HasDate() {
		date = rec.DateCompleted.Format(config.DateLayout)
	}
	return []string{strconv.Itoa(rec.Week), rec.Reading, rec.Focus, completed, date}
}

func decodeRecord(row []string, cols map[string]int) (Record, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	week, err := strconv.Atoi(strings.TrimSuffix(get(ColumnWeek), ".0"))
	if err != nil {
		return Record{}, fmt.Errorf("week %q is not a number", get(ColumnWeek))
	}
	completed := false
	if raw := get(ColumnCompleted); raw != "" {
		completed, err = strconv.ParseBool(raw)
		if err != nil {
			return Record{}, fmt.Errorf("completed %q is not a boolean", raw)
		}
	}
	var date time.Time
	switch raw := get(ColumnDateCompleted); strings.ToLower(raw) {
	case "", "nan", "nat", "none":
	default:
		date, err = time.Parse(config.DateLayout, raw)
		if err != nil {
			return Record{}, fmt.Errorf("date %q is not YYYY-MM-DD", raw)
		}
	}
	return Record{
		Week:          week,
		Reading:       get(ColumnReading),
		Focus:         get(ColumnFocus),
		Completed:     completed,
		DateCompleted: date,
	}, nil
}
