package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/store"
)

const defaultProgressDays = 14

type progressModel struct {
	db     *store.Store
	clock  calendar.Clock
	width  int
	height int

	days      int
	offset    int // blocks of days back from today (0 = current)
	summaries []store.DailySummary

	chart barchart.Model
}

func newProgressModel(db *store.Store, clock calendar.Clock) progressModel {
	return progressModel{
		db:    db,
		clock: clock,
		days:  defaultProgressDays,
		chart: barchart.New(60, 12),
	}
}

func (p *progressModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type progressDataMsg struct {
	days      int
	summaries []store.DailySummary
}

func (p progressModel) refresh() tea.Cmd {
	return func() tea.Msg {
		days := defaultProgressDays
		if v, err := p.db.GetSetting("progress_days"); err == nil {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				days = n
			}
		}
		p.days = days
		from, to := p.dateRange()
		summaries, _ := p.db.GetDailySummary(from, to)
		return progressDataMsg{days: days, summaries: summaries}
	}
}

// dateRange is the half-open range of dates shown, ending today.
func (p progressModel) dateRange() (time.Time, time.Time) {
	today := calendar.StartOfDay(p.clock.Now())
	end := today.AddDate(0, 0, 1-p.days*p.offset)
	return end.AddDate(0, 0, -p.days), end
}

func (p progressModel) update(msg tea.Msg) (progressModel, tea.Cmd) {
	switch msg := msg.(type) {
	case progressDataMsg:
		p.days = msg.days
		p.summaries = msg.summaries
		p.buildChart()
		return p, nil

	case stateChangedMsg:
		return p, p.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			p.offset++
			return p, p.refresh()
		case key.Matches(msg, keys.Right):
			if p.offset > 0 {
				p.offset--
			}
			return p, p.refresh()
		}
	}
	return p, nil
}

func (p progressModel) summaryFor(date string) store.DailySummary {
	for _, s := range p.summaries {
		if s.Date == date {
			return s
		}
	}
	return store.DailySummary{Date: date}
}

func (p *progressModel) buildChart() {
	chartWidth := p.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if p.height > 30 {
		chartHeight = 16
	}

	p.chart = barchart.New(chartWidth, chartHeight)

	from, to := p.dateRange()
	layout := "02"
	if p.days <= 7 {
		layout = "Mon 02"
	}

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		s := p.summaryFor(d.Format(calendar.DateLayout))
		bars = append(bars, barchart.BarData{
			Label: d.Format(layout),
			Values: []barchart.BarValue{
				{Name: "done", Value: float64(s.Completed), Style: successStyle},
				{Name: "carried", Value: float64(s.Carried), Style: highlightStyle},
				{Name: "bumped", Value: float64(s.Bumped), Style: warningStyle},
			},
		})
	}

	p.chart.PushAll(bars)
	p.chart.Draw()
}

func (p progressModel) view() string {
	w := p.width - 4

	from, to := p.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Progress"), "  ", dateLabel)

	legend := "  " + strings.Join([]string{
		successStyle.Render("■ done"),
		highlightStyle.Render("■ carried"),
		warningStyle.Render("■ bumped"),
	}, "  ")

	nav := mutedStyle.Render("  ←/→: earlier/later")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", p.chart.View(), "", legend, "", p.renderTotals(), "", nav,
		),
	)
}

func (p progressModel) renderTotals() string {
	if len(p.summaries) == 0 {
		return mutedStyle.Render("  No activity for this period")
	}
	var t store.DailySummary
	for _, s := range p.summaries {
		t.Completed += s.Completed
		t.Skipped += s.Skipped
		t.Carried += s.Carried
		t.Bumped += s.Bumped
	}
	return fmt.Sprintf("  %s  %s  %s  %s  over %s",
		successStyle.Render(plural(t.Completed, "check-off")),
		warningStyle.Render(fmt.Sprintf("%d skipped", t.Skipped)),
		highlightStyle.Render(fmt.Sprintf("%d carried", t.Carried)),
		accentStyle.Render(fmt.Sprintf("%d bumped", t.Bumped)),
		plural(len(p.summaries), "active day"),
	)
}
