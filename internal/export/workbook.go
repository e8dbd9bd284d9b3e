// Package export writes the progress snapshot and its burndown series to an
// .xlsx workbook so the year can be reviewed or charted in a spreadsheet.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kingrea/wordtrack/internal/config"
	"github.com/kingrea/wordtrack/internal/dashboard"
	"github.com/kingrea/wordtrack/internal/progress"
)

// Header is the first row of the exported sheet.
var Header = []any{
	progress.ColumnWeek,
	progress.ColumnReading,
	progress.ColumnFocus,
	progress.ColumnCompleted,
	progress.ColumnDateCompleted,
	"Ideal",
	"Actual",
}

// FileName returns the export name for the given day.
func FileName(day time.Time) string {
	return fmt.Sprintf("progress-%s.xlsx", day.Format(config.DateLayout))
}

// Workbook writes snap and burndown into a single-sheet workbook at path.
// Row n+1 holds week n; the burndown columns are left blank for weeks the
// series does not cover.
func Workbook(path string, snap progress.Snapshot, burndown dashboard.Burndown) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: ensure dir: %w", err)
	}
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &Header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	rows := len(snap)
	if len(burndown.Weeks) > rows {
		rows = len(burndown.Weeks)
	}
	for i := 0; i < rows; i++ {
		row := make([]any, len(Header))
		if i < len(snap) {
			rec := snap[i]
			row[0] = rec.Week
			row[1] = rec.Reading
			row[2] = rec.Focus
			row[3] = "False"
			if rec.Completed {
				row[3] = "True"
			}
			if rec.HasDate() {
				row[4] = rec.DateCompleted.Format(config.DateLayout)
			}
		} else {
			row[0] = burndown.Weeks[i]
		}
		if i < len(burndown.Ideal) {
			row[5] = burndown.Ideal[i]
		}
		if i < len(burndown.Actual) {
			row[6] = burndown.Actual[i]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: write week %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}
