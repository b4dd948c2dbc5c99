package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/carryover"
)

// weekModel lists every day of the window with its completion state and
// previews the day after the selected one.
type weekModel struct {
	engine *carryover.Engine
	width  int
	height int

	cursor int
}

func newWeekModel(e *carryover.Engine) weekModel {
	return weekModel{engine: e}
}

func (m *weekModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// focus puts the cursor on the viewed day.
func (m *weekModel) focus() {
	win := m.engine.Window()
	lo, _ := win.Bounds()
	if off, ok := win.OffsetOf(m.engine.View()); ok {
		m.cursor = off - lo
	}
}

func (m weekModel) selected() calendar.DayKey {
	keys := m.engine.Window().Keys()
	if m.cursor < 0 || m.cursor >= len(keys) {
		return m.engine.View()
	}
	return keys[m.cursor]
}

func (m weekModel) update(msg tea.Msg) (weekModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		n := len(m.engine.Window().Keys())
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < n-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Today):
			m.engine.SetView(m.engine.Window().TodayKey())
			m.focus()
		case key.Matches(msg, keys.Carry):
			day := m.selected()
			c, err := m.engine.CarryOver(day)
			m.focus()
			return m, mutated(fmt.Sprintf("Carried %s from %s", plural(c, "task"), shortDay(m.engine.Window(), day)), err)
		case key.Matches(msg, keys.Enter):
			if err := m.engine.SetView(m.selected()); err != nil {
				return m, mutated("", err)
			}
			return m, func() tea.Msg { return switchViewMsg{view: viewToday} }
		}
	}
	return m, nil
}

func (m weekModel) view() string {
	w := m.width - 4
	win := m.engine.Window()
	st := m.engine.Store()
	cat := st.Catalog()

	var rows []string
	rows = append(rows, titleStyle.Render("This window"), "")
	for i, k := range win.Keys() {
		tasks, _ := st.Tasks(k)

		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := mutedStyle.Render("·")
		if st.IsDayComplete(k) {
			mark = successStyle.Render("✓")
		}
		label := ""
		if idx, ok := win.PlanIndex(k); ok {
			label = cat.Template(idx).Label
		}

		row := fmt.Sprintf("%s%s %s  %s  %s",
			cursor,
			mark,
			style.Render(fmt.Sprintf("%-11s", shortDay(win, k))),
			workoutStyle.Render(fmt.Sprintf("%-18s", label)),
			mutedStyle.Render(fmt.Sprintf("%d/%d", countDone(tasks), len(tasks))),
		)
		if k == win.TodayKey() {
			row += "  " + accentStyle.Render("today")
		}
		if k == m.engine.View() {
			row += "  " + highlightStyle.Render("viewing")
		}
		rows = append(rows, row)
	}
	rows = append(rows, "", mutedStyle.Render("  enter: open day  c: carry over  t: today"))

	list := panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, list, m.renderPreview(w))
}

// renderPreview shows what the day after the selected one holds.
func (m weekModel) renderPreview(w int) string {
	win := m.engine.Window()
	next, ok := win.NextKey(m.selected())
	if !ok {
		return panelStyle.Width(w).Render(mutedStyle.Render("End of the window"))
	}
	tasks, _ := m.engine.Store().Tasks(next)

	var rows []string
	rows = append(rows, titleStyle.Render("Next up: ")+highlightStyle.Render(shortDay(win, next)))
	if len(tasks) == 0 {
		rows = append(rows, mutedStyle.Render("  Nothing scheduled"))
	}
	for _, t := range tasks {
		line := "  • " + t.Name
		if t.Carried(next) {
			line += "  " + carriedTagStyle.Render("carried")
		}
		rows = append(rows, line)
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
