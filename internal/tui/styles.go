package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Orange marks the day being worked, teal names the workout and
// blue follows carried work.
var (
	colorEffort  = lipgloss.Color("#FF7A45")
	colorWorkout = lipgloss.Color("#2EC4B6")
	colorToday   = lipgloss.Color("#F25C9A")
	colorRest    = lipgloss.Color("#7C7F93")
	colorDone    = lipgloss.Color("#7BD88F")
	colorSkip    = lipgloss.Color("#FFC857")
	colorFail    = lipgloss.Color("#FF5F5F")
	colorInk     = lipgloss.Color("#E6E1DC")
	colorFrame   = lipgloss.Color("#3B3F51")
	colorCarry   = lipgloss.Color("#6EA8FE")
	colorOnPill  = lipgloss.Color("#1B1D26")
)

// framed is the bordered box every view is drawn in.
func framed(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), true, false, true, true).
		BorderForeground(border).
		Padding(0, 2)
}

var (
	brandStyle = lipgloss.NewStyle().Bold(true).Foreground(colorEffort)

	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorOnPill).Background(colorEffort).Padding(0, 1).MarginLeft(1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorRest).Padding(0, 1).MarginLeft(1)

	panelStyle       = framed(colorFrame)
	activePanelStyle = framed(colorEffort)

	headerStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorFrame)
	footerStyle = lipgloss.NewStyle().Foreground(colorRest)

	dayTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorInk).Underline(true)
	workoutStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorWorkout)
	doneTaskStyle   = lipgloss.NewStyle().Foreground(colorRest).Strikethrough(true)
	skippedTagStyle = lipgloss.NewStyle().Foreground(colorSkip).Italic(true)
	carriedTagStyle = lipgloss.NewStyle().Foreground(colorCarry).Italic(true)

	selectedItemStyle = lipgloss.NewStyle().Bold(true).Foreground(colorEffort)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorInk)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorInk)
	accentStyle    = lipgloss.NewStyle().Foreground(colorToday)
	successStyle   = lipgloss.NewStyle().Foreground(colorDone)
	warningStyle   = lipgloss.NewStyle().Foreground(colorSkip)
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorFail)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorRest)
	highlightStyle = lipgloss.NewStyle().Foreground(colorCarry)
)
