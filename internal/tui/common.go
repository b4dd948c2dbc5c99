package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/taskstate"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewWeek
	viewProgress
	viewSettings
)

var viewNames = []string{"Today", "Week", "Progress", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// switchViewMsg asks the App to change the active view.
type switchViewMsg struct {
	view viewState
}

// stateChangedMsg is sent after any mutation of the task table so views
// can clamp cursors and reload derived data.
type stateChangedMsg struct{}

// --- Helpers ---

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

// mutated reports the outcome of an engine call.
func mutated(text string, err error) tea.Cmd {
	if err != nil {
		msg := fmt.Sprintf("Error: %v", err)
		if errors.Is(err, taskstate.ErrOutOfRange) {
			msg = "Nothing to do here"
		}
		return func() tea.Msg { return statusMsg{text: msg, isError: true} }
	}
	return tea.Batch(
		func() tea.Msg { return stateChangedMsg{} },
		status(text),
	)
}

// shortDay renders a key as "Thu Oct 15", or the raw key if it has no date.
func shortDay(w calendar.Window, k calendar.DayKey) string {
	d, ok := w.DateOf(k)
	if !ok {
		return string(k)
	}
	return d.Format("Mon Jan 2")
}

func countDone(tasks []taskstate.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Complete {
			n++
		}
	}
	return n
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
