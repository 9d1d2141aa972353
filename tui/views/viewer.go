package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/gesture"
	"github.com/tonhe/meerkat/tui/components"
	"github.com/tonhe/meerkat/tui/keys"
	"github.com/tonhe/meerkat/tui/styles"
)

// StaleBanner is shown across the canvas while polls are failing.
const StaleBanner = "This dashboard isn't updating"

// ViewerView draws the active dashboard as a wall of element tiles. One
// element at a time can be focused to open its detail.
type ViewerView struct {
	theme  styles.Theme
	sty    *styles.Styles
	doc    *dashboard.Dashboard
	snaps  Snapshots
	focus  int
	banner string
	now    time.Time
	width  int
	height int
}

// NewViewerView creates a new ViewerView with the given theme.
func NewViewerView(theme styles.Theme) ViewerView {
	return ViewerView{
		theme: theme,
		sty:   styles.NewStyles(theme),
		focus: -1,
	}
}

// SetDashboard replaces the document on screen. Focus is kept when the
// element still exists.
func (v *ViewerView) SetDashboard(d *dashboard.Dashboard) {
	v.doc = d
	if d == nil || v.focus >= len(d.Elements) {
		v.focus = -1
	}
}

// SetSnapshots sets where element states come from.
func (v *ViewerView) SetSnapshots(s Snapshots) {
	v.snaps = s
}

// SetBanner shows msg over the top of the canvas; empty hides it.
func (v *ViewerView) SetBanner(msg string) {
	v.banner = msg
}

// Banner is the message currently shown, if any.
func (v ViewerView) Banner() string {
	return v.banner
}

// SetNow sets the time clocks and tickers render at.
func (v *ViewerView) SetNow(t time.Time) {
	v.now = t
}

// SetSize updates the available dimensions for the view.
func (v *ViewerView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Focused returns the focused element index or -1.
func (v ViewerView) Focused() int {
	return v.focus
}

func (v ViewerView) size() gesture.Size {
	return gesture.Size{W: float64(v.width), H: float64(v.height)}
}

func (v ViewerView) count() int {
	if v.doc == nil {
		return 0
	}
	return len(v.doc.Elements)
}

// Update handles focus navigation. The third return value is true when
// the user asked for the focused element's detail.
func (v ViewerView) Update(msg tea.Msg) (ViewerView, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		n := v.count()
		switch {
		case key.Matches(msg, keys.DefaultKeyMap.Tab),
			key.Matches(msg, keys.DefaultKeyMap.Right),
			key.Matches(msg, keys.DefaultKeyMap.Down):
			if n > 0 {
				v.focus = (v.focus + 1) % n
			}
		case key.Matches(msg, keys.DefaultKeyMap.ShiftTab),
			key.Matches(msg, keys.DefaultKeyMap.Left),
			key.Matches(msg, keys.DefaultKeyMap.Up):
			if n > 0 {
				v.focus--
				if v.focus < 0 {
					v.focus = n - 1
				}
			}
		case key.Matches(msg, keys.DefaultKeyMap.Escape):
			v.focus = -1
		case key.Matches(msg, keys.DefaultKeyMap.Enter):
			return v, nil, v.focus >= 0
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || v.doc == nil {
			return v, nil, false
		}
		hit := components.HitTest(v.doc.Elements, v.size(), msg.X, msg.Y)
		if hit < 0 {
			v.focus = -1
			return v, nil, false
		}
		open := hit == v.focus
		v.focus = hit
		return v, nil, open
	}
	return v, nil, false
}

// View renders the dashboard canvas.
func (v ViewerView) View() string {
	if v.doc == nil {
		return v.renderEmpty()
	}
	now := v.now
	if now.IsZero() {
		now = time.Now()
	}
	canvas := paintDashboard(v.theme, *v.doc, v.width, v.height, v.snaps, now)
	if v.focus >= 0 && v.focus < len(v.doc.Elements) {
		c := components.Place(v.doc.Elements[v.focus].Rect, canvas.Size())
		canvas.Corners(c.X, c.Y, c.W, c.H, v.sty.Highlight)
	}
	if len(v.doc.Elements) == 0 {
		msg := "Empty dashboard. Press [e] to add elements."
		canvas.Text((v.width-len(msg))/2, v.height/2, msg, v.sty.ListDim)
	}
	if v.banner != "" && v.height > 0 {
		text := " " + v.banner + " "
		line := strings.Repeat(" ", max((v.width-len([]rune(text)))/2, 0)) + text
		canvas.Text(0, 0, padRight(line, v.width), v.sty.Banner)
	}
	return canvas.Render()
}

// renderEmpty renders a centered message when no dashboard is loaded.
func (v ViewerView) renderEmpty() string {
	msgStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base04).
		Align(lipgloss.Center)

	keyStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0D).
		Bold(true)

	lines := []string{
		"",
		msgStyle.Render("No dashboard loaded"),
		"",
		msgStyle.Render(fmt.Sprintf(
			"Press %s to create a new dashboard",
			keyStyle.Render("[n]"),
		)),
		msgStyle.Render(fmt.Sprintf(
			"or %s to open an existing one",
			keyStyle.Render("[d]"),
		)),
		"",
	}
	if v.banner != "" {
		lines = append(lines, v.sty.Banner.Render(" "+v.banner+" "))
	}

	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, lines...))
}
