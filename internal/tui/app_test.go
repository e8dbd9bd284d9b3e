package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/wordtrack/internal/config"
	"github.com/kingrea/wordtrack/internal/plan"
	"github.com/kingrea/wordtrack/internal/progress"
)

func TestToggleAndSavePersistsProgress(t *testing.T) {
	projectDir := newTestProject(t)
	app := newTestApp(t, projectDir, day(2026, 1, 9))

	app = press(t, app, tea.KeyMsg{Type: tea.KeySpace})
	if got := app.pending; len(got) != 1 || !got[1] {
		t.Fatalf("pending = %v, want week 1 ticked", got)
	}
	if rec, _ := app.session.Snapshot().Record(1); rec.Completed {
		t.Fatalf("tick must not reach the snapshot before saving")
	}

	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.statusMsg != progressSaved {
		t.Fatalf("status = %q", app.statusMsg)
	}
	if len(app.pending) != 0 {
		t.Fatalf("pending should be cleared after save, got %v", app.pending)
	}
	data, err := os.ReadFile(filepath.Join(projectDir, "user_progress.csv"))
	if err != nil {
		t.Fatalf("read progress: %v", err)
	}
	if !strings.Contains(string(data), "1,Reading 1,Focus 1,True,2026-01-09\n") {
		t.Fatalf("progress file missing completed week 1:\n%s", data)
	}
	if !strings.Contains(app.View(), "1 / 52") {
		t.Fatalf("view should show updated progress")
	}
}

func TestUntickKeepsCompletionDate(t *testing.T) {
	projectDir := newTestProject(t)
	app := newTestApp(t, projectDir, day(2026, 1, 9))
	app = press(t, app, tea.KeyMsg{Type: tea.KeySpace}, tea.KeyMsg{Type: tea.KeyEnter})

	app.now = func() time.Time { return day(2026, 1, 20) }
	app = press(t, app, keyRune('x'), keyRune('s'))

	rec, _ := app.session.Snapshot().Record(1)
	if rec.Completed {
		t.Fatalf("week 1 should be reopened")
	}
	if got := rec.DateCompleted.Format(config.DateLayout); got != "2026-01-09" {
		t.Fatalf("date = %s, want the original completion date", got)
	}
}

func TestDiscardDropsPendingTicks(t *testing.T) {
	projectDir := newTestProject(t)
	app := newTestApp(t, projectDir, day(2026, 1, 9))

	app = press(t, app,
		tea.KeyMsg{Type: tea.KeySpace},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeySpace},
	)
	if len(app.pending) != 2 {
		t.Fatalf("pending = %v, want weeks 1 and 2", app.pending)
	}
	app = press(t, app, keyRune('u'))
	if len(app.pending) != 0 {
		t.Fatalf("pending should be empty after discard, got %v", app.pending)
	}
	for _, item := range app.checklist.Items() {
		if item.(weekItem).checked {
			t.Fatalf("week %d still ticked", item.(weekItem).record.Week)
		}
	}
}

func TestTickingTwiceClearsPending(t *testing.T) {
	projectDir := newTestProject(t)
	app := newTestApp(t, projectDir, day(2026, 1, 9))

	app = press(t, app, tea.KeyMsg{Type: tea.KeySpace}, tea.KeyMsg{Type: tea.KeySpace})
	if len(app.pending) != 0 {
		t.Fatalf("pending = %v, want none", app.pending)
	}
}

func TestSaveWithoutChangesRewritesProgress(t *testing.T) {
	projectDir := newTestProject(t)
	app := newTestApp(t, projectDir, day(2026, 1, 9))

	path := filepath.Join(projectDir, "user_progress.csv")
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove progress: %v", err)
	}
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.statusMsg != progressSaved {
		t.Fatalf("status = %q", app.statusMsg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("progress file should be written on every save: %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 53 {
		t.Fatalf("lines = %d, want header + 52", got)
	}
}

func TestReloadPicksUpExternalEdits(t *testing.T) {
	projectDir := newTestProject(t)
	app := newTestApp(t, projectDir, day(2026, 1, 9))

	other := newTestApp(t, projectDir, day(2026, 1, 9))
	press(t, other, tea.KeyMsg{Type: tea.KeySpace}, tea.KeyMsg{Type: tea.KeyEnter})

	if app.session.Snapshot().CompletedCount() != 0 {
		t.Fatalf("snapshot should be reused until reload")
	}
	app = press(t, app, keyRune('r'))
	if got := app.session.Snapshot().CompletedCount(); got != 1 {
		t.Fatalf("completed after reload = %d, want 1", got)
	}
}

func TestExportWritesWorkbook(t *testing.T) {
	projectDir := newTestProject(t)
	app := newTestApp(t, projectDir, day(2026, 1, 9))

	app = press(t, app, keyRune('e'))
	path := filepath.Join(projectDir, config.TrackerDir, "exports", "progress-2026-01-09.xlsx")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected export at %s: %v (status %q)", path, err, app.statusMsg)
	}
	if !strings.Contains(app.statusMsg, "Exported") {
		t.Fatalf("status = %q", app.statusMsg)
	}
}

func TestViewBeforeStartDate(t *testing.T) {
	projectDir := newTestProject(t)
	app := newTestApp(t, projectDir, day(2025, 12, 20))

	view := app.View()
	for _, want := range []string{"You haven't started yet!", "Week 0", "On Track", "Weekly Checklist", "Burndown Chart"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestViewShowsBehindStatus(t *testing.T) {
	projectDir := newTestProject(t)
	app := newTestApp(t, projectDir, day(2026, 2, 1))

	view := app.View()
	if !strings.Contains(view, "Behind") {
		t.Fatalf("view should report Behind in week 5 with nothing read")
	}
	if strings.Contains(view, "You haven't started yet!") {
		t.Fatalf("unexpected not-started warning")
	}
}

func TestCopyReadingToClipboard(t *testing.T) {
	projectDir := newTestProject(t)
	var copied string
	app, err := NewApp(projectDir,
		WithClock(func() time.Time { return day(2026, 1, 9) }),
		WithClipboard(func(text string) error {
			copied = text
			return nil
		}),
	)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	app = press(t, app, tea.KeyMsg{Type: tea.KeyDown}, keyRune('c'))
	if copied != "Wk 2: Reading 2 (Focus 2)" {
		t.Fatalf("copied = %q", copied)
	}

	app.writeClipboard = func(string) error { return errors.New("no display") }
	app = press(t, app, keyRune('c'))
	if !strings.Contains(app.statusMsg, "Copy failed") {
		t.Fatalf("status = %q", app.statusMsg)
	}
}

func TestQuitKey(t *testing.T) {
	projectDir := newTestProject(t)
	app := newTestApp(t, projectDir, day(2026, 1, 9))

	_, cmd := app.Update(keyRune('q'))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestNewAppReportsMissingPlan(t *testing.T) {
	projectDir := t.TempDir()
	clearEnv(t)
	if err := config.InitTrackerDir(projectDir); err != nil {
		t.Fatalf("init tracker dir: %v", err)
	}
	_, err := NewApp(projectDir)
	var planErr *plan.Error
	if !errors.As(err, &planErr) || planErr.Kind != plan.KindNotFound {
		t.Fatalf("err = %v, want plan not-found error", err)
	}
	if msg := UserMessage(err); !strings.Contains(msg, "bible_plan.csv") {
		t.Fatalf("message should name the plan file: %q", msg)
	}
	if _, err := os.Stat(filepath.Join(projectDir, "user_progress.csv")); !os.IsNotExist(err) {
		t.Fatalf("progress file must not be created without a plan")
	}
}

func TestSessionJournal(t *testing.T) {
	projectDir := newTestProject(t)
	app := newTestApp(t, projectDir, day(2026, 1, 9))
	press(t, app, tea.KeyMsg{Type: tea.KeySpace}, tea.KeyMsg{Type: tea.KeyEnter}, keyRune('e'))

	lines, _ := app.logbook.Tail(10)
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"Progress store created", "Session opened", "week 1 completed", "Exported"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("journal missing %q:\n%s", want, joined)
		}
	}
}

func TestDescribeChangesOrdersWeeks(t *testing.T) {
	if got := describeChanges(nil); got != "no changes" {
		t.Fatalf("got %q", got)
	}
	changes := []progress.Change{{Week: 3}, {Week: 1, Completed: true, Stamped: true}}
	if got := describeChanges(changes); got != "week 1 completed, week 3 reopened" {
		t.Fatalf("got %q", got)
	}
}

func newTestProject(t *testing.T) string {
	t.Helper()
	clearEnv(t)
	projectDir := t.TempDir()
	if err := config.InitTrackerDir(projectDir); err != nil {
		t.Fatalf("init tracker dir: %v", err)
	}
	var sb strings.Builder
	sb.WriteString("Week*Reading Range*Focus\n")
	for w := 1; w <= 52; w++ {
		fmt.Fprintf(&sb, "%d*Reading %d*Focus %d\n", w, w, w)
	}
	if err := os.WriteFile(filepath.Join(projectDir, "bible_plan.csv"), []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}
	return projectDir
}

func newTestApp(t *testing.T, projectDir string, today time.Time) *App {
	t.Helper()
	app, err := NewApp(projectDir, WithClock(func() time.Time { return today }))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvPlanFile, config.EnvProgressFile, config.EnvStartDate, config.EnvDelimiter} {
		t.Setenv(key, "")
	}
}

func press(t *testing.T, app *App, keys ...tea.KeyMsg) *App {
	t.Helper()
	for _, k := range keys {
		model, cmd := app.Update(k)
		app = runCommands(t, model, cmd)
	}
	return app
}

func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		if _, ok := msg.(tea.BatchMsg); ok {
			break
		}
		nextModel, nextCmd := app.Update(msg)
		app, ok = nextModel.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", nextModel)
		}
		cmd = nextCmd
	}
	return app
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 9, 30, 0, 0, time.UTC)
}
