// Package plan reads the static reading plan: one row per week with a reading
// range and a focus theme. Plans are delimited text files (a non-comma
// delimiter by default) or .xlsx workbooks whose first sheet holds the same
// three columns.
package plan

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column headers expected in the plan source.
const (
	ColumnWeek    = "Week"
	ColumnReading = "Reading Range"
	ColumnFocus   = "Focus"
)

// Entry is one immutable week definition.
type Entry struct {
	Week    int
	Reading string
	Focus   string
}

// Label renders the entry the way the checklist shows it.
func (e Entry) Label() string {
	return fmt.Sprintf("Wk %d: %s (%s)", e.Week, e.Reading, e.Focus)
}

// Source describes where a plan lives and how it is encoded.
type Source struct {
	Path      string
	Delimiter rune
	// Weeks is the number of weeks the plan must contain. Zero skips the check.
	Weeks int
}

// Load reads and validates the plan. Weeks must start at 1 and increase by
// one per row. Any failure is reported as *Error; nothing is partially loaded.
func Load(src Source) ([]Entry, error) {
	rows, err := readRows(src)
	if err != nil {
		return nil, err
	}
	entries, err := parseRows(rows)
	if err != nil {
		return nil, parseError(src, err)
	}
	if src.Weeks > 0 && len(entries) != src.Weeks {
		return nil, parseError(src, fmt.Errorf("plan has %d weeks, expected %d", len(entries), src.Weeks))
	}
	return entries, nil
}

// IsWorkbook reports whether the source is read as an .xlsx workbook.
func (s Source) IsWorkbook() bool {
	return strings.EqualFold(filepath.Ext(s.Path), ".xlsx")
}

func readRows(src Source) ([][]string, error) {
	if src.IsWorkbook() {
		return readWorkbook(src)
	}
	file, err := os.Open(src.Path)
	if err != nil {
		return nil, openError(src, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = src.Delimiter
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError(src, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readWorkbook(src Source) ([][]string, error) {
	if _, err := os.Stat(src.Path); err != nil {
		return nil, openError(src, err)
	}
	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return nil, parseError(src, fmt.Errorf("open workbook: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseError(src, errors.New("workbook has no sheets"))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, parseError(src, fmt.Errorf("read sheet %s: %w", sheets[0], err))
	}
	return rows, nil
}

func openError(src Source, err error) error {
	kind := KindUnreadable
	if errors.Is(err, fs.ErrNotExist) {
		kind = KindNotFound
	}
	return newError(kind, src, err)
}

func parseError(src Source, err error) error {
	return newError(KindParse, src, err)
}

// newError records the delimiter only for delimited text plans; workbooks
// have none.
func newError(kind Kind, src Source, err error) *Error {
	e := &Error{Kind: kind, Path: src.Path, Workbook: src.IsWorkbook(), Err: err}
	if !e.Workbook {
		e.Delimiter = src.Delimiter
	}
	return e
}

func parseRows(rows [][]string) ([]Entry, error) {
	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, errors.New("plan is empty")
	}
	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		week, err := strconv.Atoi(cell(row, cols[ColumnWeek]))
		if err != nil {
			return nil, fmt.Errorf("row %d: week %q is not a number", line, cell(row, cols[ColumnWeek]))
		}
		if want := len(entries) + 1; week != want {
			return nil, fmt.Errorf("row %d: expected week %d, got %d", line, want, week)
		}
		entries = append(entries, Entry{
			Week:    week,
			Reading: cell(row, cols[ColumnReading]),
			Focus:   cell(row, cols[ColumnFocus]),
		})
	}
	if len(entries) == 0 {
		return nil, errors.New("plan has a header but no weeks")
	}
	return entries, nil
}

func headerIndex(header []string) (map[string]int, error) {
	cols := map[string]int{}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		cols[name] = i
	}
	var missing []string
	for _, name := range []string{ColumnWeek, ColumnReading, ColumnFocus} {
		if _, ok := cols[name]; !ok {
			missing = append(missing, strconv.Quote(name))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header %q is missing column(s) %s", strings.Join(header, ","), strings.Join(missing, ", "))
	}
	return cols, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		out = append(out, row)
	}
	return out
}
