package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/config"
	"github.com/sadopc/liftlog/internal/store"
)

const keyProgressDays = "progress_days"

// settingKeys are the rows shown on the settings screen, in order.
var settingKeys = []string{
	config.KeyTimezone,
	config.KeyPolicy,
	config.KeyHorizon,
	config.KeyRetention,
	keyProgressDays,
}

type settingsModel struct {
	db     *store.Store
	cfg    config.Config
	width  int
	height int

	values     map[string]string
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	timezone     *string
	policy       *string
	horizon      *string
	retention    *string
	progressDays *string
}

func newSettingsModel(db *store.Store, cfg config.Config) settingsModel {
	tz, po, ho, re, pd := "", "", "", "", ""
	return settingsModel{
		db:           db,
		cfg:          cfg,
		timezone:     &tz,
		policy:       &po,
		horizon:      &ho,
		retention:    &re,
		progressDays: &pd,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	values map[string]string
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		values, _ := s.db.SettingsMap()
		return settingsDataMsg{values: values}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.values = msg.values
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

// current is the effective value of k: the saved setting, else the
// loaded configuration.
func (s settingsModel) current(k string) string {
	if v, ok := s.values[k]; ok && v != "" {
		return v
	}
	switch k {
	case config.KeyTimezone:
		return s.cfg.Timezone
	case config.KeyPolicy:
		return string(s.cfg.Policy)
	case config.KeyHorizon:
		return strconv.Itoa(s.cfg.Horizon)
	case config.KeyRetention:
		return string(s.cfg.Retention)
	case keyProgressDays:
		return strconv.Itoa(defaultProgressDays)
	}
	return ""
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.timezone = s.current(config.KeyTimezone)
	*s.policy = s.current(config.KeyPolicy)
	*s.horizon = s.current(config.KeyHorizon)
	*s.retention = s.current(config.KeyRetention)
	*s.progressDays = s.current(keyProgressDays)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Timezone").
				Description("IANA name such as Europe/Berlin, or local").
				Value(s.timezone).
				Validate(validateZone),
			huh.NewSelect[string]().Title("Day keys").
				Options(
					huh.NewOption("Calendar dates (rolling window)", string(calendar.PolicyRolling)),
					huh.NewOption("Weekdays (repeating week)", string(calendar.PolicyWeekday)),
				).Value(s.policy),
			huh.NewInput().Title("Days shown before and after today").
				Value(s.horizon).
				Validate(validatePositive),
		).Title("Schedule"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Days that leave the window").
				Options(
					huh.NewOption("Purge", "purge"),
					huh.NewOption("Keep", "keep"),
				).Value(s.retention),
			huh.NewInput().Title("Progress chart days").
				Value(s.progressDays).
				Validate(validatePositive),
		).Title("History"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Settings not saved: %v", err), isError: true}
			}
		}
		return s, tea.Batch(s.refresh(), status("Settings saved; restart liftlog to apply schedule changes"))
	}

	return s, cmd
}

// saveSettings validates the form against the configuration before
// writing anything.
func (s settingsModel) saveSettings() error {
	kv := map[string]string{
		config.KeyTimezone:  *s.timezone,
		config.KeyPolicy:    *s.policy,
		config.KeyHorizon:   *s.horizon,
		config.KeyRetention: *s.retention,
	}
	trial := s.cfg
	if err := trial.ApplySettings(kv); err != nil {
		return err
	}
	kv[keyProgressDays] = *s.progressDays
	for _, k := range settingKeys {
		if err := s.db.SetSetting(k, kv[k]); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Settings"), "")
	for _, k := range settingKeys {
		label := lipgloss.NewStyle().Width(24).Render(k)
		value := highlightStyle.Render(formatSettingValue(k, s.current(k)))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case config.KeyHorizon:
		return fmt.Sprintf("±%s days", v)
	case keyProgressDays:
		return v + " days"
	case config.KeyPolicy:
		if v == string(calendar.PolicyWeekday) {
			return "weekdays"
		}
		return "calendar dates"
	}
	return v
}

func validateZone(s string) error {
	_, err := calendar.LoadZone(s)
	return err
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}
