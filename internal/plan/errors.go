package plan

import "fmt"

// Kind classifies plan load failures.
type Kind int

const (
	// KindNotFound means the plan file does not exist at the configured path.
	KindNotFound Kind = iota + 1
	// KindUnreadable means the file exists but could not be opened.
	KindUnreadable
	// KindParse means the file was read but is not a valid plan under the
	// configured delimiter.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindUnreadable:
		return "unreadable"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error reports why a plan could not be loaded.
type Error struct {
	Kind      Kind
	Path      string
	Delimiter rune
	// Workbook is set when the plan was read as an .xlsx file.
	Workbook bool
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("plan: %s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the text shown to the user when the dashboard cannot start.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("File not found: %s. Make sure it is in the project folder, or point plan.file in .wordtrack/config.yaml at it.", e.Path)
	case KindUnreadable:
		return fmt.Sprintf("Could not open %s: %v", e.Path, e.Err)
	case KindParse:
		if e.Workbook {
			return fmt.Sprintf("Error reading workbook %s. The first sheet must have the columns Week, Reading Range and Focus with weeks numbered from 1. Error: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("Error reading %s. Is the delimiter %q correct, and is it a delimited text file rather than a renamed spreadsheet? Error: %v", e.Path, string(e.Delimiter), e.Err)
	default:
		return fmt.Sprintf("Error reading %s: %v", e.Path, e.Err)
	}
}
