package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/tui/styles"
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key  string
	Desc string
}

// StateCounts tallies element states for the footer.
type StateCounts struct {
	OK       int
	Warning  int
	Critical int
	Unknown  int
	Pending  int
}

// Add counts one element in state s. Hosts count with services.
func (c *StateCounts) Add(s icinga.State) {
	switch s {
	case icinga.StateOK, icinga.StateUp:
		c.OK++
	case icinga.StateWarning:
		c.Warning++
	case icinga.StateCritical, icinga.StateDown:
		c.Critical++
	case icinga.StateUnknown:
		c.Unknown++
	default:
		c.Pending++
	}
}

// RenderStatusBar renders the two-line footer: poll summary and message on
// top, key hints below.
func RenderStatusBar(theme styles.Theme, lastPoll time.Time, counts StateCounts, message string, hints []KeyHint, width int) string {
	bg := theme.Base01
	bgStyle := lipgloss.NewStyle().Background(bg)
	sep := lipgloss.NewStyle().Foreground(theme.Base03).Background(bg).Render(" | ")
	seg := func(fg lipgloss.Color, s string) string {
		return lipgloss.NewStyle().Foreground(fg).Background(bg).Render(s)
	}

	lastStr := "never"
	if !lastPoll.IsZero() {
		lastStr = lastPoll.Format("15:04:05")
	}

	top := bgStyle.Render(" ") + seg(theme.Base05, "last: "+lastStr) + sep +
		seg(theme.Base0B, fmt.Sprintf("%d ok", counts.OK)) + bgStyle.Render(" ") +
		seg(theme.Base0A, fmt.Sprintf("%d warn", counts.Warning)) + bgStyle.Render(" ") +
		seg(theme.Base08, fmt.Sprintf("%d crit", counts.Critical)) + bgStyle.Render(" ") +
		seg(theme.Base0E, fmt.Sprintf("%d unk", counts.Unknown))
	if counts.Pending > 0 {
		top += bgStyle.Render(" ") + seg(theme.Base03, fmt.Sprintf("%d pending", counts.Pending))
	}
	if message != "" {
		top += sep + seg(theme.Base0A, message)
	}
	top = fill(top, width, bgStyle)

	keyStyle := lipgloss.NewStyle().Foreground(theme.Base0D).Background(bg).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.Base04).Background(bg)
	spacer := bgStyle.Render("  ")

	keys := bgStyle.Render(" ")
	for i, h := range hints {
		if i > 0 {
			keys += spacer
		}
		keys += keyStyle.Render(h.Key) + descStyle.Render(":"+h.Desc)
	}
	keys = fill(keys, width, bgStyle)

	return lipgloss.JoinVertical(lipgloss.Left, top, keys)
}

func fill(s string, width int, bg lipgloss.Style) string {
	if w := lipgloss.Width(s); w < width {
		s += bg.Render(strings.Repeat(" ", width-w))
	}
	return s
}
