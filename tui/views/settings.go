package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/internal/config"
	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/tui/keys"
	"github.com/tonhe/meerkat/tui/styles"
)

// SettingsAction describes what the app should do after a settings update.
type SettingsAction int

const (
	// SettingsNone means continue in the settings view.
	SettingsNone SettingsAction = iota
	// SettingsClose means the user cancelled without saving.
	SettingsClose
	// SettingsSaved means the config was saved; the app should apply changes.
	SettingsSaved
)

// Settings field indices.
const (
	settingsFieldTheme   = 0
	settingsFieldAppName = 1
	settingsFieldSound   = 2
	settingsFieldLag     = 3
	settingsFieldRetry   = 4
	settingsFieldHistory = 5
	settingsFieldCount   = 6
)

// SettingsView is a full-screen settings editor with a live theme preview.
// The application name is a server setting; everything else is written to
// the local config file.
type SettingsView struct {
	theme   styles.Theme
	sty     *styles.Styles
	config  *config.Config
	cfgPath string

	themeIndex int // index into styles.Names()
	cursor     int // which setting row is focused

	width  int
	height int

	inputs [settingsFieldCount]textinput.Model

	err        string
	SavedTheme string // theme slug after save, so the app can apply it
}

func settingsInput(placeholder string, limit int, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.SetValue(value)
	return ti
}

// NewSettingsView creates a SettingsView populated from cfg and the
// server's application name. Saving writes cfg to cfgPath.
func NewSettingsView(theme styles.Theme, cfg *config.Config, cfgPath, appName string) SettingsView {
	themeIdx := styles.IndexOf(cfg.Theme)
	if themeIdx < 0 {
		themeIdx = styles.IndexOf(styles.DefaultThemeName)
	}

	s := SettingsView{
		theme:      theme,
		sty:        styles.NewStyles(theme),
		config:     cfg,
		cfgPath:    cfgPath,
		themeIndex: themeIdx,
	}
	s.inputs[settingsFieldAppName] = settingsInput("Meerkat", 64, appName)
	s.inputs[settingsFieldSound] = settingsInput("terminal bell", 256, cfg.SoundCommand)
	s.inputs[settingsFieldLag] = settingsInput("0.1", 8, strconv.FormatFloat(cfg.RefreshLag, 'f', -1, 64))
	s.inputs[settingsFieldRetry] = settingsInput("15s", 16, cfg.RetryInterval.String())
	s.inputs[settingsFieldHistory] = settingsInput("120", 8, strconv.Itoa(cfg.MaxHistory))
	return s
}

// AppName is the application name as last edited.
func (s SettingsView) AppName() string {
	return strings.TrimSpace(s.inputs[settingsFieldAppName].Value())
}

// SetSize updates the available dimensions for the settings view.
func (s *SettingsView) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s SettingsView) selectedTheme() styles.Theme {
	return styles.At(s.themeIndex)
}

// focusInput blurs all inputs and focuses the one at the cursor position.
func (s *SettingsView) focusInput() {
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
	if s.cursor != settingsFieldTheme {
		s.inputs[s.cursor].Focus()
	}
}

func (s SettingsView) cycleTheme(delta int) SettingsView {
	n := len(styles.Names())
	s.themeIndex = (s.themeIndex + delta + n) % n
	s.theme = s.selectedTheme()
	s.sty = styles.NewStyles(s.theme)
	return s
}

// Update handles messages for the settings view.
func (s SettingsView) Update(msg tea.Msg) (SettingsView, tea.Cmd, SettingsAction) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil, SettingsNone
	}
	switch {
	case key.Matches(km, keys.DefaultKeyMap.Escape):
		return s, nil, SettingsClose

	case key.Matches(km, keys.DefaultKeyMap.Enter):
		return s.save()

	case km.Type == tea.KeyUp, key.Matches(km, keys.DefaultKeyMap.ShiftTab):
		s.cursor = (s.cursor - 1 + settingsFieldCount) % settingsFieldCount
		s.focusInput()
		return s, nil, SettingsNone

	case km.Type == tea.KeyDown, key.Matches(km, keys.DefaultKeyMap.Tab):
		s.cursor = (s.cursor + 1) % settingsFieldCount
		s.focusInput()
		return s, nil, SettingsNone

	case s.cursor == settingsFieldTheme && key.Matches(km, keys.DefaultKeyMap.Left):
		return s.cycleTheme(-1), nil, SettingsNone

	case s.cursor == settingsFieldTheme && key.Matches(km, keys.DefaultKeyMap.Right):
		return s.cycleTheme(1), nil, SettingsNone
	}

	if s.cursor == settingsFieldTheme {
		return s, nil, SettingsNone
	}
	var cmd tea.Cmd
	s.inputs[s.cursor], cmd = s.inputs[s.cursor].Update(msg)
	return s, cmd, SettingsNone
}

// save validates and persists the config to disk.
func (s SettingsView) save() (SettingsView, tea.Cmd, SettingsAction) {
	lagStr := strings.TrimSpace(s.inputs[settingsFieldLag].Value())
	lag := icinga.DefaultLag
	if lagStr != "" {
		v, err := strconv.ParseFloat(lagStr, 64)
		if err != nil || v < 0 {
			s.err = "Refresh lag must be a non-negative number"
			return s, nil, SettingsNone
		}
		lag = v
	}

	retryStr := strings.TrimSpace(s.inputs[settingsFieldRetry].Value())
	if retryStr == "" {
		retryStr = "15s"
	}
	retry, err := time.ParseDuration(retryStr)
	if err != nil {
		s.err = fmt.Sprintf("Invalid retry interval: %v", err)
		return s, nil, SettingsNone
	}

	historyStr := strings.TrimSpace(s.inputs[settingsFieldHistory].Value())
	if historyStr == "" {
		historyStr = "120"
	}
	maxHistory, err := strconv.Atoi(historyStr)
	if err != nil || maxHistory < 1 {
		s.err = "Max history must be a positive integer"
		return s, nil, SettingsNone
	}

	next := *s.config
	next.Theme = s.selectedTheme().Slug
	next.SoundCommand = strings.TrimSpace(s.inputs[settingsFieldSound].Value())
	next.RefreshLag = lag
	next.RetryInterval = retry
	next.MaxHistory = maxHistory
	if err := next.Validate(); err != nil {
		s.err = err.Error()
		return s, nil, SettingsNone
	}

	if err := config.SaveConfig(&next, s.cfgPath); err != nil {
		s.err = fmt.Sprintf("Failed to save config: %v", err)
		return s, nil, SettingsNone
	}
	*s.config = next

	s.SavedTheme = next.Theme
	s.err = ""
	return s, nil, SettingsSaved
}

// View renders the settings screen.
func (s SettingsView) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(s.theme.Base0D).
		Bold(true)
	labelStyle := s.sty.FormLabel
	activeLabelStyle := lipgloss.NewStyle().
		Foreground(s.theme.Base0D).
		Bold(true)
	valStyle := lipgloss.NewStyle().
		Foreground(s.theme.Base06)

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Settings") + "\n")
	b.WriteString("\n")

	if s.err != "" {
		b.WriteString("  " + s.sty.FormError.Render(s.err) + "\n\n")
	}

	themeDisplay := fmt.Sprintf("< %s >  (%d/%d)", s.selectedTheme().Name, s.themeIndex+1, len(styles.Names()))

	labels := [settingsFieldCount]string{"Theme", "Application Name", "Sound Command", "Refresh Lag", "Retry Interval", "Max History"}
	for i, label := range labels {
		indicator := "  "
		lbl := labelStyle
		if i == s.cursor {
			indicator = lipgloss.NewStyle().Foreground(s.theme.Base0D).Bold(true).Render("> ")
			lbl = activeLabelStyle
		}
		value := s.inputs[i].View()
		if i == settingsFieldTheme {
			value = valStyle.Render(themeDisplay)
		}
		b.WriteString(fmt.Sprintf("  %s%s%s\n", indicator, lbl.Render(padRight(label+":", 20)), value))
	}

	b.WriteString("\n")
	b.WriteString(s.renderThemePreview())

	b.WriteString("\n")
	b.WriteString("  " + s.renderHelp() + "\n")

	return b.String()
}

// renderThemePreview renders a small wall of sample tiles in the selected
// theme's state colours.
func (s SettingsView) renderThemePreview() string {
	previewTheme := s.selectedTheme()

	sepStyle := lipgloss.NewStyle().Foreground(previewTheme.Base03)
	titleStyle := lipgloss.NewStyle().Foreground(previewTheme.Base0D).Bold(true)

	previewWidth := 56
	if s.width > 0 && s.width-6 < previewWidth {
		previewWidth = s.width - 6
	}
	if previewWidth < 30 {
		previewWidth = 30
	}

	var b strings.Builder

	label := " Theme Preview "
	dashCount := max(previewWidth-len(label), 2)
	leftDash := dashCount / 2
	b.WriteString("  " + sepStyle.Render(strings.Repeat("-", leftDash)) + titleStyle.Render(label) + sepStyle.Render(strings.Repeat("-", dashCount-leftDash)) + "\n")

	headerBg := lipgloss.NewStyle().
		Background(previewTheme.Base01).
		Foreground(previewTheme.Base05).
		Bold(true).
		Padding(0, 1)
	headerTitle := lipgloss.NewStyle().
		Background(previewTheme.Base01).
		Foreground(previewTheme.Base0D).
		Bold(true)
	name := s.AppName()
	if name == "" {
		name = "Meerkat"
	}
	b.WriteString("  " + headerBg.Render(headerTitle.Render(name)+" - Sample Dashboard"+strings.Repeat(" ", max(0, previewWidth-22-len(name)))) + "\n\n")

	samples := []struct {
		state icinga.State
		ack   bool
	}{
		{icinga.StateOK, false},
		{icinga.StateWarning, false},
		{icinga.StateCritical, false},
		{icinga.StateCritical, true},
		{icinga.StateUnknown, false},
	}
	var tiles []string
	for _, smp := range samples {
		tile := lipgloss.NewStyle().
			Background(styles.StateColor(previewTheme, smp.state, smp.ack)).
			Foreground(previewTheme.Base00).
			Padding(0, 1).
			Render(strings.ToUpper(smp.state.Label(smp.ack)))
		tiles = append(tiles, tile)
	}
	b.WriteString("  " + strings.Join(tiles, " ") + "\n")

	b.WriteString("\n")
	b.WriteString("  " + sepStyle.Render(strings.Repeat("-", previewWidth)) + "\n")

	return b.String()
}

// renderHelp renders the help line for the settings view.
func (s SettingsView) renderHelp() string {
	helpStyle := lipgloss.NewStyle().Foreground(s.theme.Base04)
	keyStyle := lipgloss.NewStyle().Foreground(s.theme.Base0D).Bold(true)

	if s.cursor == settingsFieldTheme {
		return helpStyle.Render(fmt.Sprintf(
			"%s/%s cycle theme  %s/%s navigate  %s save  %s cancel",
			keyStyle.Render("[left]"),
			keyStyle.Render("[right]"),
			keyStyle.Render("[up]"),
			keyStyle.Render("[down]"),
			keyStyle.Render("[enter]"),
			keyStyle.Render("[esc]"),
		))
	}
	return helpStyle.Render(fmt.Sprintf(
		"%s/%s navigate  %s save  %s cancel",
		keyStyle.Render("[up]"),
		keyStyle.Render("[down]"),
		keyStyle.Render("[enter]"),
		keyStyle.Render("[esc]"),
	))
}
