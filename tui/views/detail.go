package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/engine"
	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/tui/components"
	"github.com/tonhe/meerkat/tui/keys"
	"github.com/tonhe/meerkat/tui/styles"
)

// maxDetailObjects caps the matched objects listed.
const maxDetailObjects = 12

// DetailView shows what one element is watching: the worst object's check
// output and performance data, the matched objects and the state history.
type DetailView struct {
	theme    styles.Theme
	sty      *styles.Styles
	el       *dashboard.Element
	selector icinga.Selector
	snap     engine.Snapshot
	polled   bool
	now      time.Time
	width    int
	height   int
}

// NewDetailView creates a new DetailView with the given theme.
func NewDetailView(theme styles.Theme) DetailView {
	return DetailView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// SetElement updates the detail view. polled is false when the element
// has no poller.
func (v *DetailView) SetElement(el dashboard.Element, sel icinga.Selector, snap engine.Snapshot, polled bool) {
	v.el = &el
	v.selector = sel
	v.snap = snap
	v.polled = polled
}

// SetNow sets the reference time for relative timestamps.
func (v *DetailView) SetNow(t time.Time) {
	v.now = t
}

// SetSize updates the available dimensions for the view.
func (v *DetailView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Update handles key messages for the detail view. The third return value
// indicates whether the user wants to go back (Esc pressed).
func (v DetailView) Update(msg tea.Msg) (DetailView, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.DefaultKeyMap.Escape), key.Matches(msg, keys.DefaultKeyMap.Enter):
			return v, nil, true
		}
	}
	return v, nil, false
}

// View renders the detail view.
func (v DetailView) View() string {
	if v.el == nil {
		msg := lipgloss.NewStyle().
			Foreground(v.theme.Base04).
			Render("No element selected")
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, msg)
	}

	labelStyle := lipgloss.NewStyle().Foreground(v.theme.Base04).Width(16)
	valueStyle := lipgloss.NewStyle().Foreground(v.theme.Base05)
	highlightStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(v.theme.Base0E).Bold(true)

	row := func(label, value string, st lipgloss.Style) string {
		return fmt.Sprintf("  %s%s", labelStyle.Render(label), st.Render(value))
	}

	title := v.el.Title
	if title == "" {
		title = v.el.Type.Label()
	}
	lines := []string{
		"",
		row("Element:", title, highlightStyle),
		row("Type:", v.el.Type.Label(), valueStyle),
	}

	if !v.el.Type.Monitored() {
		lines = append(lines, "", "  "+valueStyle.Render("This element does not watch Icinga."))
		return v.frame(lines)
	}

	lines = append(lines, row("Watching:", v.selector.String(), valueStyle))
	if !v.polled {
		lines = append(lines, "", "  "+valueStyle.Render("No poller is running for this element."))
		return v.frame(lines)
	}

	state := v.snap.DisplayState()
	stateStyle := styles.StateStyle(v.theme, state, v.snap.Result.Acknowledged).Bold(true)
	lines = append(lines, row("State:", strings.ToUpper(state.Label(v.snap.Result.Acknowledged)), stateStyle))

	now := v.now
	if now.IsZero() {
		now = time.Now()
	}
	poll := "never"
	if !v.snap.LastPoll.IsZero() {
		poll = components.FormatAgo(now.Sub(v.snap.LastPoll))
	}
	if !v.snap.Since.IsZero() && v.snap.Observed {
		lines = append(lines, row("Since:", components.FormatAgo(now.Sub(v.snap.Since)), valueStyle))
	}
	next := "-"
	if !v.snap.NextPoll.IsZero() {
		next = components.FormatAgo(now.Sub(v.snap.NextPoll))
	}
	lines = append(lines,
		row("Last poll:", poll, valueStyle),
		row("Next poll:", next, valueStyle),
		row("Polls:", fmt.Sprintf("%d (%d failed)", v.snap.PollCount, v.snap.ErrorCount), valueStyle),
	)
	if v.snap.Err != nil {
		errStyle := v.sty.FormError
		if v.snap.Stale {
			lines = append(lines, row("Error:", v.snap.Err.Error()+" (showing last result)", errStyle))
		} else {
			lines = append(lines, row("Error:", v.snap.Err.Error(), errStyle))
		}
	}

	if worst := v.snap.Result.Worst; worst != nil {
		lines = append(lines, "", sectionStyle.Render("  Worst object"))
		lines = append(lines, row("Name:", worst.Label(), highlightStyle))
		lines = append(lines, row("Last check:", formatTime(worst.Attrs.LastCheckTime()), valueStyle))
		for _, out := range wrapText(worst.Attrs.LastCheckResult.Output, max(v.width-20, 20)) {
			lines = append(lines, row("Output:", out, valueStyle))
		}
		perf := icinga.ParsePerformance(worst.Attrs.LastCheckResult.PerformanceData)
		if len(perf) > 0 {
			labels := make([]string, 0, len(perf))
			for k := range perf {
				labels = append(labels, k)
			}
			sort.Strings(labels)
			for _, k := range labels {
				lines = append(lines, row("  "+k+":", perf[k], valueStyle))
			}
		}
	}

	if objs := v.snap.Result.Objects; len(objs) > 1 {
		lines = append(lines, "", sectionStyle.Render(fmt.Sprintf("  Objects (%d)", len(objs))))
		for i, o := range objs {
			if i == maxDetailObjects {
				lines = append(lines, "  "+v.sty.ListDim.Render(fmt.Sprintf("... %d more", len(objs)-i)))
				break
			}
			st := icinga.StateFromCode(v.selector.Type.Member(), o.Attrs.Code())
			ack := o.Attrs.Acknowledged()
			lines = append(lines, fmt.Sprintf("    %s %s",
				styles.StateStyle(v.theme, st, ack).Render(padRight(strings.ToUpper(st.Label(ack)), 16)),
				valueStyle.Render(o.Label())))
		}
	}

	if len(v.snap.History) > 0 {
		width := max(v.width-20, 10)
		lines = append(lines, "", row("History:", components.Sparkline(historyCodes(v.snap.History, width), width), v.sty.SparklineStyle))
	}

	return v.frame(lines)
}

func (v DetailView) frame(lines []string) string {
	helpStyle := lipgloss.NewStyle().Foreground(v.theme.Base04)
	keyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	lines = append(lines, "", helpStyle.Render(fmt.Sprintf("  %s to go back", keyStyle.Render("[esc]"))))
	if v.height > 0 && len(lines) > v.height {
		lines = lines[:v.height]
	}
	return strings.Join(lines, "\n")
}

// historyCodes turns the last width samples into sparkline values.
func historyCodes(history []engine.Sample, width int) []float64 {
	if len(history) > width {
		history = history[len(history)-width:]
	}
	data := make([]float64, len(history))
	for i, s := range history {
		data[i] = float64(s.Code)
	}
	return data
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

// wrapText breaks s into lines of at most width runes.
func wrapText(s string, width int) []string {
	var out []string
	for _, para := range strings.Split(strings.TrimSpace(s), "\n") {
		r := []rune(para)
		for len(r) > width {
			out = append(out, string(r[:width]))
			r = r[width:]
		}
		out = append(out, string(r))
	}
	return out
}
