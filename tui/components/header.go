package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/tui/styles"
)

// HeaderInfo is what the top bar shows.
type HeaderInfo struct {
	AppName   string
	Dashboard string
	// Mode is the screen name, e.g. "LIVE" or "EDIT".
	Mode    string
	Stale   bool
	Muted   bool
	Pollers int
	Version string
}

// RenderHeader renders the top header bar with app name, dashboard title,
// mode, poller count and version.
func RenderHeader(theme styles.Theme, info HeaderInfo, width int) string {
	bg := theme.Base01
	seg := func(fg lipgloss.Color, s string) string {
		return lipgloss.NewStyle().Foreground(fg).Background(bg).Render(s)
	}

	name := info.AppName
	if name == "" {
		name = "meerkat"
	}
	left := lipgloss.NewStyle().Foreground(theme.Base0D).Background(bg).Bold(true).Render(name)

	title := info.Dashboard
	if title == "" {
		title = "(no dashboard)"
	}

	mode, modeColor := info.Mode, theme.Base0B
	switch {
	case info.Stale:
		mode, modeColor = mode+" STALE", theme.Base08
	case mode == "EDIT":
		modeColor = theme.Base0A
	}

	parts := []string{left, seg(theme.Base05, title), seg(modeColor, strings.TrimSpace(mode))}
	if info.Muted {
		parts = append(parts, seg(theme.Base09, "MUTED"))
	}
	parts = append(parts, seg(theme.Base04, fmt.Sprintf("%d pollers", info.Pollers)))
	if info.Version != "" {
		parts = append(parts, seg(theme.Base04, "v"+info.Version))
	}

	sep := seg(theme.Base03, "  |  ")
	content := seg(theme.Base05, " ") + strings.Join(parts, sep) + seg(theme.Base05, " ")

	return lipgloss.NewStyle().
		Background(bg).
		Width(width).
		Render(content)
}
