package tui

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/carryover"
	"github.com/sadopc/liftlog/internal/config"
	"github.com/sadopc/liftlog/internal/plan"
	"github.com/sadopc/liftlog/internal/store"
	"github.com/sadopc/liftlog/internal/taskstate"
)

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestApp(t *testing.T, kv taskstate.KV) App {
	t.Helper()
	db := newTestStore(t)
	if kv == nil {
		kv = db
	}
	w, err := calendar.NewWindow(testNow, calendar.PolicyRolling, 1)
	if err != nil {
		t.Fatal(err)
	}
	cat, err := plan.New([]plan.DayTemplate{
		{Label: "Push", Tasks: []string{"Bench", "Dips"}},
		{Label: "Legs", Tasks: []string{"Squat"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	st := taskstate.Open(taskstate.Options{Window: w, Catalog: cat, KV: kv})
	clock := calendar.FixedClock{T: testNow}
	engine := carryover.New(st, clock, db, nil)

	app := NewApp(Deps{
		Engine:    engine,
		DB:        db,
		Clock:     clock,
		Config:    config.Config{Timezone: "UTC", Policy: calendar.PolicyRolling, Horizon: 1, Retention: taskstate.RetentionPurge},
		ExportDir: t.TempDir(),
	})
	app.width = 120
	app.height = 40
	app.today.setSize(120, 36)
	app.week.setSize(120, 36)
	app.progress.setSize(120, 36)
	app.settings.setSize(120, 36)
	return app
}

func press(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, app App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := app.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return next, cmd
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// settle feeds every message produced by cmd back into the App.
func settle(t *testing.T, app App, cmd tea.Cmd) App {
	t.Helper()
	for _, msg := range collect(cmd) {
		var next tea.Cmd
		app, next = send(t, app, msg)
		app = settle(t, app, next)
	}
	return app
}

func names(tasks []taskstate.Task) string {
	var out []string
	for _, t := range tasks {
		out = append(out, t.Name)
	}
	return strings.Join(out, ",")
}

func dayTasks(t *testing.T, app App, k calendar.DayKey) []taskstate.Task {
	t.Helper()
	tasks, err := app.engine.Store().Tasks(k)
	if err != nil {
		t.Fatal(err)
	}
	return tasks
}

type failingKV struct{}

func (failingKV) Get(string) (string, bool, error) { return "", false, errors.New("locked") }
func (failingKV) Set(string, string) error        { return errors.New("locked") }

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app := newTestApp(t, nil)

	if app.activeView != viewToday {
		t.Fatal("default view should be today")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	app := newTestApp(t, nil)

	for i := range viewNames {
		app.activeView = viewState(i)
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", i)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	app := newTestApp(t, nil)
	app.width = 0
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app := newTestApp(t, nil)
	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppStatusMessage(t *testing.T) {
	app := newTestApp(t, nil)
	app, _ = send(t, app, statusMsg{text: "test status"})
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppSwitchViews(t *testing.T) {
	app := newTestApp(t, nil)
	app, _ = send(t, app, press("2"))
	if app.activeView != viewWeek {
		t.Fatalf("expected week view, got %d", app.activeView)
	}
	app, _ = send(t, app, press("tab"))
	if app.activeView != viewProgress {
		t.Fatalf("tab should move to progress, got %d", app.activeView)
	}
	app, _ = send(t, app, press("tab"))
	app, _ = send(t, app, press("tab"))
	if app.activeView != viewToday {
		t.Fatalf("tab should wrap to today, got %d", app.activeView)
	}
}

func TestAppDegradedFooter(t *testing.T) {
	app := newTestApp(t, failingKV{})
	if !strings.Contains(app.renderFooter(), "not saving") {
		t.Fatal("footer should warn when persistence is unavailable")
	}

	// The session keeps working in memory.
	app, _ = send(t, app, press(" "))
	if !dayTasks(t, app, "2026-10-15")[0].Complete {
		t.Fatal("toggle should still apply in memory")
	}
}

// ============================================================
// Today view
// ============================================================

func TestTodayToggleComplete(t *testing.T) {
	app := newTestApp(t, nil)
	app, cmd := send(t, app, press(" "))
	app = settle(t, app, cmd)

	if !dayTasks(t, app, "2026-10-15")[0].Complete {
		t.Fatal("space should complete the task under the cursor")
	}
	if !strings.Contains(app.status, "Bench") {
		t.Fatalf("unexpected status %q", app.status)
	}
	if !strings.Contains(app.today.view(), "[x]") {
		t.Fatal("completed task should render checked")
	}
}

func TestTodaySkipFlag(t *testing.T) {
	app := newTestApp(t, nil)
	app, _ = send(t, app, press("j"))
	app, cmd := send(t, app, press("s"))
	app = settle(t, app, cmd)

	tasks := dayTasks(t, app, "2026-10-15")
	if !tasks[1].Skipped || tasks[0].Skipped {
		t.Fatal("s should flag only the selected task")
	}
	if !strings.Contains(app.today.view(), "skipped") {
		t.Fatal("skipped tag should render")
	}
}

func TestTodayCarryOver(t *testing.T) {
	app := newTestApp(t, nil)
	app, _ = send(t, app, press("j"))
	app, _ = send(t, app, press(" ")) // Dips done
	app, cmd := send(t, app, press("c"))
	app = settle(t, app, cmd)

	if got := names(dayTasks(t, app, "2026-10-16")); got != "Bench,Squat" {
		t.Fatalf("next day = %s", got)
	}
	if got := names(dayTasks(t, app, "2026-10-15")); got != "Dips" {
		t.Fatalf("today = %s", got)
	}
	if app.engine.View() != "2026-10-16" {
		t.Fatal("carry over should move the view to the next day")
	}
	if !strings.Contains(app.today.view(), "from Thu Oct 15") {
		t.Fatal("carried task should show its origin")
	}
}

func TestTodayBump(t *testing.T) {
	app := newTestApp(t, nil)
	app, _ = send(t, app, press("j"))
	app, cmd := send(t, app, press("b"))
	app = settle(t, app, cmd)

	if got := names(dayTasks(t, app, "2026-10-15")); got != "Bench" {
		t.Fatalf("today = %s", got)
	}
	if got := names(dayTasks(t, app, "2026-10-16")); got != "Dips,Squat" {
		t.Fatalf("next day = %s", got)
	}
	if app.today.cursor != 0 {
		t.Fatalf("cursor should be clamped, got %d", app.today.cursor)
	}
}

func TestTodayBumpAtWindowEnd(t *testing.T) {
	app := newTestApp(t, nil)
	app, _ = send(t, app, press("right"))
	before := app.engine.Store().Snapshot()

	app, cmd := send(t, app, press("b"))
	app = settle(t, app, cmd)

	if len(app.engine.Store().Snapshot()["2026-10-16"]) != len(before["2026-10-16"]) {
		t.Fatal("bump on the last day should change nothing")
	}
	if !strings.Contains(app.status, "Last day") {
		t.Fatalf("unexpected status %q", app.status)
	}
}

func TestTodayToggleOnEmptyDay(t *testing.T) {
	app := newTestApp(t, nil)
	// Move everything off today, then try to toggle.
	app, cmd := send(t, app, press("c"))
	app = settle(t, app, cmd)
	app, _ = send(t, app, press("left"))

	app, cmd = send(t, app, press(" "))
	app = settle(t, app, cmd)
	if !app.isErr {
		t.Fatal("toggling on an empty day should report an error")
	}
	if !strings.Contains(app.today.view(), "Nothing scheduled") {
		t.Fatal("empty day should say so")
	}
}

func TestTodayNavigation(t *testing.T) {
	app := newTestApp(t, nil)
	app, _ = send(t, app, press("left"))
	app, _ = send(t, app, press("left"))
	if app.engine.View() != "2026-10-14" {
		t.Fatalf("view should clamp at the window start, got %s", app.engine.View())
	}
	app, _ = send(t, app, press("t"))
	if app.engine.View() != "2026-10-15" {
		t.Fatal("t should jump back to today")
	}
}

// ============================================================
// Week view
// ============================================================

func TestWeekOpenDay(t *testing.T) {
	app := newTestApp(t, nil)
	app, _ = send(t, app, press("2"))
	if app.week.cursor != 1 {
		t.Fatalf("week cursor should start on today, got %d", app.week.cursor)
	}
	app, _ = send(t, app, press("j"))
	app, cmd := send(t, app, press("enter"))
	app = settle(t, app, cmd)

	if app.activeView != viewToday {
		t.Fatal("enter should open the day")
	}
	if app.engine.View() != "2026-10-16" {
		t.Fatalf("expected 2026-10-16, got %s", app.engine.View())
	}
}

func TestWeekViewShowsPreview(t *testing.T) {
	app := newTestApp(t, nil)
	app, _ = send(t, app, press("2"))
	out := app.week.view()
	if !strings.Contains(out, "Next up") || !strings.Contains(out, "Squat") {
		t.Fatal("week view should preview the next day")
	}
	if !strings.Contains(out, "today") {
		t.Fatal("week view should mark today")
	}
}

// ============================================================
// Rollover and export
// ============================================================

func TestTickRollsOver(t *testing.T) {
	app := newTestApp(t, nil)
	app.clock = calendar.FixedClock{T: testNow.AddDate(0, 0, 1)}

	app, _ = send(t, app, tickMsg(testNow))
	if got := app.engine.Window().TodayKey(); got != "2026-10-16" {
		t.Fatalf("window should follow the clock, today = %s", got)
	}
	if _, err := app.engine.Store().Tasks("2026-10-17"); err != nil {
		t.Fatal("new day should be materialized")
	}
}

func TestExportCSV(t *testing.T) {
	app := newTestApp(t, nil)
	msg := app.doExport(0)()
	done, ok := msg.(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %#v", msg)
	}
	if !strings.HasSuffix(done.path, "liftlog-export-2026-10-15.csv") {
		t.Fatalf("unexpected path %s", done.path)
	}
	data, err := os.ReadFile(done.path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Bench") {
		t.Fatal("export should contain tasks")
	}
}

func TestExportPicker(t *testing.T) {
	app := newTestApp(t, nil)
	app, _ = send(t, app, press("e"))
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	app, _ = send(t, app, press("j"))
	if app.exportCursor != 1 {
		t.Fatal("down should select JSON")
	}
	app, _ = send(t, app, press("esc"))
	if app.exportPicking {
		t.Fatal("esc should close the picker")
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsSave(t *testing.T) {
	app := newTestApp(t, nil)
	s := app.settings
	*s.timezone = "Europe/Berlin"
	*s.policy = "weekday"
	*s.horizon = "3"
	*s.retention = "keep"
	*s.progressDays = "30"

	if err := s.saveSettings(); err != nil {
		t.Fatal(err)
	}
	for k, want := range map[string]string{"timezone": "Europe/Berlin", "policy": "weekday", "horizon": "3", "retention": "keep", "progress_days": "30"} {
		got, err := app.db.GetSetting(k)
		if err != nil || got != want {
			t.Fatalf("setting %s = %q (%v), want %q", k, got, err, want)
		}
	}
}

func TestSettingsSaveRejectsInvalid(t *testing.T) {
	app := newTestApp(t, nil)
	s := app.settings
	*s.timezone = "Nowhere/Special"
	*s.policy = "rolling"
	*s.horizon = "7"
	*s.retention = "purge"

	if err := s.saveSettings(); err == nil {
		t.Fatal("expected invalid timezone to be rejected")
	}
	if _, err := app.db.GetSetting("policy"); err == nil {
		t.Fatal("nothing should be written when validation fails")
	}
}

func TestSettingsCurrentFallsBackToConfig(t *testing.T) {
	app := newTestApp(t, nil)
	if got := app.settings.current("horizon"); got != "1" {
		t.Fatalf("horizon = %q, want config value 1", got)
	}
	if got := app.settings.current("progress_days"); got != "14" {
		t.Fatalf("progress_days = %q, want 14", got)
	}
}

func TestValidators(t *testing.T) {
	if validatePositive("3") != nil || validatePositive("0") == nil || validatePositive("x") == nil {
		t.Fatal("validatePositive")
	}
	if validateZone("UTC") != nil || validateZone("local") != nil || validateZone("Mars/Base") == nil {
		t.Fatal("validateZone")
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		k, v, want string
	}{
		{"horizon", "7", "±7 days"},
		{"progress_days", "14", "14 days"},
		{"policy", "weekday", "weekdays"},
		{"policy", "rolling", "calendar dates"},
		{"timezone", "UTC", "UTC"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.k, tt.v); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.k, tt.v, got, tt.want)
		}
	}
}

// ============================================================
// Progress
// ============================================================

func TestProgressDateRange(t *testing.T) {
	app := newTestApp(t, nil)
	from, to := app.progress.dateRange()
	if from.Format("2006-01-02") != "2026-10-02" || to.Format("2006-01-02") != "2026-10-16" {
		t.Fatalf("range = %s..%s", from, to)
	}
}

func TestProgressLoadsActivity(t *testing.T) {
	app := newTestApp(t, nil)
	app, cmd := send(t, app, press(" "))
	app = settle(t, app, cmd)

	msg := app.progress.refresh()()
	data, ok := msg.(progressDataMsg)
	if !ok {
		t.Fatalf("expected progressDataMsg, got %T", msg)
	}
	if len(data.summaries) != 1 || data.summaries[0].Completed != 1 {
		t.Fatalf("unexpected summaries %+v", data.summaries)
	}
}

// ============================================================
// Helpers
// ============================================================

func TestPlural(t *testing.T) {
	if plural(1, "task") != "1 task" || plural(3, "task") != "3 tasks" || plural(0, "task") != "0 tasks" {
		t.Fatal("plural")
	}
}

func TestShortDay(t *testing.T) {
	w, _ := calendar.NewWindow(testNow, calendar.PolicyRolling, 1)
	if got := shortDay(w, "2026-10-15"); got != "Thu Oct 15" {
		t.Fatalf("shortDay = %q", got)
	}
	if got := shortDay(w, "garbage"); got != "garbage" {
		t.Fatalf("shortDay = %q", got)
	}
}

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"dayTitle", func() string { return dayTitleStyle.Render("test") }},
		{"doneTask", func() string { return doneTaskStyle.Render("test") }},
		{"carriedTag", func() string { return carriedTagStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"brand", func() string { return brandStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
	}
	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
