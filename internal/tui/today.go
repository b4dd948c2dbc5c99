package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/carryover"
	"github.com/sadopc/liftlog/internal/taskstate"
)

// todayModel is the day carousel: one day of the window at a time.
type todayModel struct {
	engine *carryover.Engine
	width  int
	height int

	cursor int
}

func newTodayModel(e *carryover.Engine) todayModel {
	return todayModel{engine: e}
}

func (m *todayModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m todayModel) tasks() []taskstate.Task {
	tasks, err := m.engine.Store().Tasks(m.engine.View())
	if err != nil {
		return nil
	}
	return tasks
}

func (m *todayModel) clampCursor() {
	n := len(m.tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	switch msg := msg.(type) {
	case stateChangedMsg:
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		day := m.engine.View()
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.tasks())-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Left):
			m.engine.Shift(-1)
			m.cursor = 0
		case key.Matches(msg, keys.Right):
			m.engine.Shift(1)
			m.cursor = 0
		case key.Matches(msg, keys.Today):
			m.engine.SetView(m.engine.Window().TodayKey())
			m.cursor = 0

		case key.Matches(msg, keys.Toggle):
			t, err := m.engine.ToggleComplete(day, m.cursor)
			text := "Marked " + t.Name + " done"
			if !t.Complete {
				text = "Unmarked " + t.Name
			}
			return m, mutated(text, err)

		case key.Matches(msg, keys.SkipFlag):
			t, err := m.engine.ToggleSkip(day, m.cursor)
			text := "Flagged " + t.Name + " as skipped"
			if !t.Skipped {
				text = "Cleared skip flag on " + t.Name
			}
			return m, mutated(text, err)

		case key.Matches(msg, keys.Bump):
			tasks := m.tasks()
			moved, err := m.engine.Skip(day, m.cursor)
			text := "Last day of the window, nothing to bump into"
			if moved {
				text = fmt.Sprintf("Moved %s to %s", tasks[m.cursor].Name, m.nextLabel(day))
			}
			return m, mutated(text, err)

		case key.Matches(msg, keys.Carry):
			next := m.nextLabel(day)
			n, err := m.engine.CarryOver(day)
			text := "Last day of the window, nothing to carry into"
			if m.engine.View() != day {
				text = fmt.Sprintf("Carried %s to %s", plural(n, "task"), next)
				m.cursor = 0
			}
			return m, mutated(text, err)
		}
	}
	return m, nil
}

func (m todayModel) nextLabel(day calendar.DayKey) string {
	w := m.engine.Window()
	next, ok := w.NextKey(day)
	if !ok {
		return ""
	}
	return shortDay(w, next)
}

func (m todayModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	w := m.width - 4
	win := m.engine.Window()
	day := m.engine.View()
	tasks := m.tasks()

	title := dayTitleStyle.Render(win.Label(day))
	if day == win.TodayKey() {
		title += "  " + accentStyle.Render("today")
	}
	if idx, ok := win.PlanIndex(day); ok {
		title += "  " + workoutStyle.Render(m.engine.Store().Catalog().Template(idx).Label)
	}

	progress := mutedStyle.Render(fmt.Sprintf("%d/%d done", countDone(tasks), len(tasks)))
	if m.engine.Store().IsDayComplete(day) {
		progress = successStyle.Render("✓ day complete")
	}

	var rows []string
	rows = append(rows, title, progress, "")
	if len(tasks) == 0 {
		rows = append(rows, mutedStyle.Render("  Nothing scheduled"))
	}
	for i, t := range tasks {
		rows = append(rows, m.renderTask(win, day, i, t))
	}
	rows = append(rows, "", m.renderCarousel(win, day))

	panel := panelStyle
	if day == win.TodayKey() {
		panel = activePanelStyle
	}
	return panel.Width(w).Render(strings.Join(rows, "\n"))
}

func (m todayModel) renderTask(win calendar.Window, day calendar.DayKey, i int, t taskstate.Task) string {
	cursor := "  "
	style := normalItemStyle
	if i == m.cursor {
		cursor = "> "
		style = selectedItemStyle
	}
	box := "[ ]"
	name := style.Render(t.Name)
	if t.Complete {
		box = successStyle.Render("[x]")
		name = doneTaskStyle.Render(t.Name)
	}

	line := fmt.Sprintf("%s%s %s", cursor, box, name)
	if t.Skipped {
		line += "  " + skippedTagStyle.Render("skipped")
	}
	if t.Carried(day) {
		line += "  " + carriedTagStyle.Render("↪ from "+shortDay(win, t.OriginalDay))
	}
	return line
}

// renderCarousel draws one dot per window day with the viewed day filled.
func (m todayModel) renderCarousel(win calendar.Window, day calendar.DayKey) string {
	var dots []string
	for _, k := range win.Keys() {
		switch {
		case k == day:
			dots = append(dots, selectedItemStyle.Render("●"))
		case m.engine.Store().IsDayComplete(k):
			dots = append(dots, successStyle.Render("○"))
		default:
			dots = append(dots, mutedStyle.Render("○"))
		}
	}
	return strings.Join(dots, " ")
}
