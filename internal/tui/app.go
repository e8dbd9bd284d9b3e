// internal/tui/app.go
//
// This is the dashboard for wordtrack.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the session snapshot plus the unsaved checkbox values
// 2. Update: one key press -> one state transition
// 3. View: metrics, checklist and burndown recomputed from the snapshot
//
// Ticking a week only changes the pending checkbox value. Nothing reaches the
// progress file until the user presses enter ("Update Progress").

package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	progressbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/wordtrack/internal/config"
	"github.com/kingrea/wordtrack/internal/dashboard"
	"github.com/kingrea/wordtrack/internal/export"
	"github.com/kingrea/wordtrack/internal/logbook"
	"github.com/kingrea/wordtrack/internal/plan"
	"github.com/kingrea/wordtrack/internal/progress"
)

const (
	defaultWidth   = 100
	defaultHeight  = 40
	chartHeight    = 10
	sideBySideMin  = 120
	minListHeight  = 6
	logPanelLines  = 4
	progressSaved  = "Progress Saved!"
	pendingDropped = "Unsaved ticks discarded"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7B801"))
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	cardLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	cardValueStyle = lipgloss.NewStyle().Bold(true)
	onTrackStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	behindStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithClock overrides the clock used for metrics and completion dates.
func WithClock(clock func() time.Time) AppOption {
	return func(a *App) {
		if clock != nil {
			a.now = clock
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) AppOption {
	return func(a *App) {
		if write != nil {
			a.writeClipboard = write
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config  *config.Config
	session *progress.Session
	logbook *logbook.Logbook
	now     func() time.Time

	writeClipboard func(string) error

	// pending holds checkbox values that differ from the stored snapshot,
	// keyed by week.
	pending map[int]bool

	// UI components
	checklist list.Model
	bar       progressbar.Model
	help      help.Model
	keys      keyMap
	statusMsg string

	width  int
	height int
}

// NewApp loads the configuration, the plan and the progress store for
// projectDir. A plan that is missing or cannot be parsed is returned as a
// *plan.Error so the caller can show its UserMessage.
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(cfg.JournalPath())
	if err != nil {
		return nil, err
	}

	app := &App{
		config:         cfg,
		logbook:        lb,
		now:            time.Now,
		writeClipboard: clipboard.WriteAll,
		pending:        map[int]bool{},
		checklist:      newChecklist(),
		bar:            progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithoutPercentage()),
		help:           help.New(),
		keys:           defaultKeyMap(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}

	entries, err := plan.Load(plan.Source{
		Path:      cfg.PlanPath(),
		Delimiter: cfg.Delimiter(),
		Weeks:     cfg.TotalWeeks(),
	})
	if err != nil {
		app.logError("Plan unavailable: %v", err)
		return nil, err
	}
	app.session = progress.NewSession(progress.NewStore(cfg.ProgressPath()), entries)
	if err := app.session.Load(); err != nil {
		app.logError("Progress unavailable: %v", err)
		return nil, err
	}
	if app.session.Created() {
		app.logInfo("Progress store created at %s", app.session.StorePath())
	}

	m := app.metrics()
	app.logInfo("Session opened · %d/%d weeks complete · %s", m.Completed, m.TotalWeeks, m.Status)
	app.refreshChecklist()
	app.resize(defaultWidth, defaultHeight)
	return app, nil
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			if n := len(a.pending); n > 0 {
				a.logWarn("Quit with %d unsaved tick(s)", n)
			}
			return a, tea.Quit
		case key.Matches(msg, a.keys.Toggle):
			a.toggleSelected()
			return a, nil
		case key.Matches(msg, a.keys.Save):
			a.commit()
			return a, nil
		case key.Matches(msg, a.keys.Discard):
			a.discardPending()
			return a, nil
		case key.Matches(msg, a.keys.Reload):
			a.reload()
			return a, nil
		case key.Matches(msg, a.keys.Export):
			a.exportWorkbook()
			return a, nil
		case key.Matches(msg, a.keys.Copy):
			a.copySelected()
			return a, nil
		case key.Matches(msg, a.keys.Help):
			a.help.ShowAll = !a.help.ShowAll
			a.resize(a.width, a.height)
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.checklist, cmd = a.checklist.Update(msg)
	return a, cmd
}

// toggleSelected flips the pending checkbox of the highlighted week.
func (a *App) toggleSelected() {
	item, ok := a.checklist.SelectedItem().(weekItem)
	if !ok {
		return
	}
	item.checked = !item.checked
	if item.dirty() {
		a.pending[item.record.Week] = item.checked
	} else {
		delete(a.pending, item.record.Week)
	}
	a.checklist.SetItem(a.checklist.Index(), item)
	a.statusMsg = fmt.Sprintf("%d unsaved change(s) · enter to update progress", len(a.pending))
}

// copySelected puts the highlighted week's reading on the system clipboard.
func (a *App) copySelected() {
	item, ok := a.checklist.SelectedItem().(weekItem)
	if !ok {
		return
	}
	text := item.record.Entry().Label()
	if err := a.writeClipboard(text); err != nil {
		a.statusMsg = fmt.Sprintf("Copy failed: %v", err)
		a.logWarn("Clipboard unavailable: %v", err)
		return
	}
	a.statusMsg = fmt.Sprintf("Copied %q", text)
}

// commit merges every checkbox into the snapshot and persists it. The full
// snapshot is written even when no checkbox changed.
func (a *App) commit() {
	inputs := a.session.Snapshot().Inputs()
	for week, checked := range a.pending {
		inputs[week] = checked
	}
	changes, err := a.session.Commit(inputs, a.now())
	if err != nil {
		a.statusMsg = fmt.Sprintf("Save failed: %v", err)
		a.logError("Save failed: %v", err)
		return
	}
	a.pending = map[int]bool{}
	a.refreshChecklist()
	a.statusMsg = progressSaved
	m := a.metrics()
	a.logInfo("Progress saved · %s · %d/%d complete", describeChanges(changes), m.Completed, m.TotalWeeks)
}

func (a *App) discardPending() {
	if len(a.pending) == 0 {
		return
	}
	a.pending = map[int]bool{}
	a.refreshChecklist()
	a.statusMsg = pendingDropped
}

// reload rereads the progress file, dropping unsaved ticks.
func (a *App) reload() {
	if err := a.session.Reload(); err != nil {
		a.statusMsg = fmt.Sprintf("Reload failed: %v", err)
		a.logError("Reload failed: %v", err)
		return
	}
	a.pending = map[int]bool{}
	a.refreshChecklist()
	a.statusMsg = fmt.Sprintf("Reloaded %s", filepath.Base(a.session.StorePath()))
	a.logInfo("Progress reloaded from %s", a.session.StorePath())
}

// exportWorkbook writes the saved snapshot (not the unsaved ticks) to .xlsx.
func (a *App) exportWorkbook() {
	snap := a.session.Snapshot()
	path := filepath.Join(a.config.ExportDir(), export.FileName(a.now()))
	burndown := dashboard.ComputeBurndownFor(snap, a.config.TotalWeeks())
	if err := export.Workbook(path, snap, burndown); err != nil {
		a.statusMsg = fmt.Sprintf("Export failed: %v", err)
		a.logError("Export failed: %v", err)
		return
	}
	a.statusMsg = fmt.Sprintf("Exported %s", path)
	a.logInfo("Exported %s", path)
}

func (a *App) refreshChecklist() {
	idx := a.checklist.Index()
	a.checklist.SetItems(checklistItems(a.session.Snapshot(), a.pending))
	if idx >= 0 && idx < len(a.checklist.Items()) {
		a.checklist.Select(idx)
	}
}

func (a *App) metrics() dashboard.Metrics {
	return dashboard.ComputeMetricsFor(a.session.Snapshot(), a.now(), a.config.StartDate(), a.config.TotalWeeks())
}

func (a *App) sideBySide() bool {
	return a.width >= sideBySideMin
}

func (a *App) resize(width, height int) {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	a.width = width
	a.height = height
	a.bar.Width = max(10, width-4)
	a.help.Width = width

	// title, warning, metric cards, bar, section headers, log panel, footer
	reserved := 16 + logPanelLines
	if a.help.ShowAll {
		reserved += 2
	}
	listWidth := width - 2
	if a.sideBySide() {
		listWidth = width - chartWidth(a.config.TotalWeeks()) - 6
	} else {
		reserved += chartHeight + 5
	}
	a.checklist.SetSize(max(20, listWidth), max(minListHeight, height-reserved))
}

func chartWidth(weeks int) int {
	return weeks + 8
}

// View renders the current state to a string.
func (a *App) View() string {
	m := a.metrics()
	sections := []string{titleStyle.Render("📖 " + a.config.Title())}
	if m.NotStarted {
		sections = append(sections, warningStyle.Render(fmt.Sprintf(
			"You haven't started yet! The clock starts %s.", a.config.StartDate().Format("Jan 2, 2006"))))
	}
	sections = append(sections,
		a.renderMetrics(m),
		a.bar.ViewAs(m.Fraction),
	)

	checklist := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Weekly Checklist"),
		a.checklist.View(),
	)
	chart := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Burndown Chart · Ideal vs. Actual Completion"),
		renderBurndown(dashboard.ComputeBurndownFor(a.session.Snapshot(), a.config.TotalWeeks()), chartHeight),
	)
	if a.sideBySide() {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, checklist, "  ", chart))
	} else {
		sections = append(sections, checklist, chart)
	}

	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.help.View(a.keys))
	if a.statusMsg != "" {
		sections = append(sections, footerStyle.Render(a.statusMsg))
	}
	return strings.Join(sections, "\n")
}

func (a *App) renderMetrics(m dashboard.Metrics) string {
	statusStyle := onTrackStyle
	if !m.OnTrack() {
		statusStyle = behindStyle
	}
	cards := []string{
		metricCard("Current Week", cardValueStyle.Render(fmt.Sprintf("Week %d", m.CurrentWeek)), fmt.Sprintf("Day %d", m.ElapsedDays)),
		metricCard("Progress", cardValueStyle.Render(fmt.Sprintf("%d / %d", m.Completed, m.TotalWeeks)), fmt.Sprintf("%d%%", m.Percent())),
		metricCard("Status", statusStyle.Render(m.Status), ""),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value, delta string) string {
	lines := []string{cardLabelStyle.Render(label), value}
	if delta != "" {
		lines = append(lines, cardLabelStyle.Render(delta))
	} else {
		lines = append(lines, "")
	}
	return cardStyle.Width(22).Render(strings.Join(lines, "\n"))
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(logPanelLines)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s (%d)", filepath.Base(a.logbook.Path()), total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		MaxWidth(max(20, a.width-4)).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// describeChanges summarises a commit for the journal, in week order.
func describeChanges(changes []progress.Change) string {
	if len(changes) == 0 {
		return "no changes"
	}
	sorted := append([]progress.Change(nil), changes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Week < sorted[j].Week })
	parts := make([]string, 0, len(sorted))
	for _, c := range sorted {
		verb := "reopened"
		if c.Completed {
			verb = "completed"
		}
		parts = append(parts, fmt.Sprintf("week %d %s", c.Week, verb))
	}
	return strings.Join(parts, ", ")
}

// UserMessage turns a startup error into the text shown before exiting.
func UserMessage(err error) string {
	var planErr *plan.Error
	switch {
	case errors.As(err, &planErr):
		return planErr.UserMessage()
	case errors.Is(err, progress.ErrWeekMismatch):
		return fmt.Sprintf("The progress file no longer matches the plan (%v). Move it aside to start a fresh record.", err)
	case errors.Is(err, progress.ErrCorrupt):
		return fmt.Sprintf("The progress file could not be read (%v). Fix it or move it aside to start a fresh record.", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
