package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/wordtrack/internal/config"
	"github.com/kingrea/wordtrack/internal/progress"
)

var (
	checkedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	uncheckedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	weekStyle      = lipgloss.NewStyle().Bold(true)
	dateStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

// weekItem is one checklist row: the stored record plus the checkbox value
// the user has not committed yet.
type weekItem struct {
	record  progress.Record
	checked bool
}

func (i weekItem) FilterValue() string { return i.record.Reading }

// dirty reports whether the checkbox differs from the stored value.
func (i weekItem) dirty() bool { return i.checked != i.record.Completed }

func (i weekItem) label() string {
	return fmt.Sprintf("%s: %s (%s)",
		weekStyle.Render(fmt.Sprintf("Wk %d", i.record.Week)),
		i.record.Reading,
		i.record.Focus,
	)
}

// weekDelegate renders weekItems as single-line checkboxes.
type weekDelegate struct{}

func (weekDelegate) Height() int                             { return 1 }
func (weekDelegate) Spacing() int                            { return 0 }
func (weekDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (weekDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(weekItem)
	if !ok {
		return
	}
	cursor := "  "
	if index == m.Index() {
		cursor = cursorStyle.Render("> ")
	}
	box := uncheckedStyle.Render("[ ]")
	if item.checked {
		box = checkedStyle.Render("[x]")
	}
	var suffix []string
	if item.dirty() {
		suffix = append(suffix, pendingStyle.Render("● unsaved"))
	}
	if item.record.Completed && item.record.HasDate() {
		suffix = append(suffix, dateStyle.Render(item.record.DateCompleted.Format(config.DateLayout)))
	}
	line := fmt.Sprintf("%s%s %s", cursor, box, item.label())
	if len(suffix) > 0 {
		line += "  " + strings.Join(suffix, " ")
	}
	if width := m.Width(); width > 0 {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	fmt.Fprint(w, line)
}

func newChecklist() list.Model {
	l := list.New(nil, weekDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

// checklistItems merges the stored snapshot with the pending checkbox values.
func checklistItems(snap progress.Snapshot, pending map[int]bool) []list.Item {
	items := make([]list.Item, 0, len(snap))
	for _, rec := range snap {
		checked := rec.Completed
		if v, ok := pending[rec.Week]; ok {
			checked = v
		}
		items = append(items, weekItem{record: rec, checked: checked})
	}
	return items
}
