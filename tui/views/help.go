package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/tui/styles"
)

// HelpView renders a modal overlay showing all keyboard shortcuts.
type HelpView struct {
	theme   styles.Theme
	sty     *styles.Styles
	width   int
	height  int
	visible bool
}

// NewHelpView creates a new HelpView with the given theme.
func NewHelpView(theme styles.Theme) HelpView {
	return HelpView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// Toggle flips the help overlay visibility.
func (v *HelpView) Toggle() {
	v.visible = !v.visible
}

// IsVisible returns whether the help overlay is currently shown.
func (v HelpView) IsVisible() bool {
	return v.visible
}

// SetSize updates the available dimensions for the overlay.
func (v *HelpView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

type helpSection struct {
	title    string
	bindings [][2]string
}

var helpSections = []helpSection{
	{"Global", [][2]string{
		{"Ctrl+C", "Quit"},
		{"?", "Toggle this help"},
	}},
	{"Dashboard", [][2]string{
		{"q", "Quit"},
		{"Tab / arrows", "Focus next / previous element"},
		{"Enter / click", "Element detail"},
		{"d", "Dashboard switcher"},
		{"e", "Edit dashboard"},
		{"n", "New dashboard"},
		{"m", "Mute alerts"},
		{"r", "Refresh all elements"},
		{"s", "Settings"},
	}},
	{"Switcher", [][2]string{
		{"Enter", "Open dashboard"},
		{"n / e", "New / edit dashboard"},
		{"x", "Delete dashboard"},
		{"/", "Filter by tag"},
	}},
	{"Editor", [][2]string{
		{"click / drag", "Select / move element"},
		{"drag ┘ corner", "Resize"},
		{"drag ┐ corner", "Rotate"},
		{"arrows", "Move selected"},
		{"Shift+arrows", "Resize selected"},
		{"< / >", "Rotate 45°"},
		{"[ / ]", "Lower / raise"},
		{"a / c / x", "Add / duplicate / delete"},
		{"t", "Change type"},
		{"Enter", "Element options"},
		{"o", "Dashboard options"},
		{"Ctrl+S", "Save"},
		{"Esc", "Back"},
	}},
}

// View renders the help overlay as a centered modal box.
func (v HelpView) View() string {
	modalWidth := 52
	if v.width > 60 {
		modalWidth = v.width / 2
		if modalWidth > 60 {
			modalWidth = 60
		}
	}
	if modalWidth < 44 {
		modalWidth = 44
	}

	innerWidth := modalWidth - 6 // border + padding

	sectionStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0E).
		Bold(true)
	keyStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0D).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base05)
	dimStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base04)

	var lines []string
	for _, s := range helpSections {
		lines = append(lines, sectionStyle.Render(s.title))
		for _, b := range s.bindings {
			lines = append(lines, fmt.Sprintf("  %s  %s",
				keyStyle.Render(padRight(b[0], 16)),
				descStyle.Render(b[1]),
			))
		}
		lines = append(lines, "")
	}
	lines = append(lines, dimStyle.Render("[?] close"))

	return modal(v.theme, v.sty, " Keyboard Shortcuts ", strings.Join(lines, "\n"), innerWidth, v.width, v.height)
}
