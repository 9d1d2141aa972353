package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/tui/keys"
	"github.com/tonhe/meerkat/tui/styles"
)

// SwitcherAction describes what the app should do after a switcher key press.
type SwitcherAction int

const (
	// ActionNone means no action needed.
	ActionNone SwitcherAction = iota
	// ActionClose means the user wants to dismiss the switcher.
	ActionClose
	// ActionSwitch means the user selected a dashboard to view.
	ActionSwitch
	// ActionNew means the user wants to create a new dashboard.
	ActionNew
	// ActionEdit means the user wants to edit the selected dashboard.
	ActionEdit
	// ActionDelete means the user confirmed deleting the selected dashboard.
	ActionDelete
	// ActionFilter means the tag filter changed and the list should reload.
	ActionFilter
)

// SwitcherItem represents a single dashboard entry in the switcher list.
type SwitcherItem struct {
	Title    string
	Slug     string
	Tags     []string
	Elements int
	Active   bool
}

// SwitcherView is a modal overlay that lists the dashboards stored on the
// Meerkat server.
type SwitcherView struct {
	theme      styles.Theme
	sty        *styles.Styles
	items      []SwitcherItem
	cursor     int
	width      int
	height     int
	filtering  bool
	tagInput   textinput.Model
	confirmDel bool
	err        string
}

// NewSwitcherView creates a new SwitcherView with the given theme.
func NewSwitcherView(theme styles.Theme) SwitcherView {
	ti := textinput.New()
	ti.Placeholder = "tag"
	ti.CharLimit = 64
	ti.Width = 24
	return SwitcherView{
		theme:    theme,
		sty:      styles.NewStyles(theme),
		tagInput: ti,
	}
}

// SetDashboards replaces the list. activeSlug marks the dashboard on screen.
func (v *SwitcherView) SetDashboards(dashes []dashboard.Dashboard, activeSlug string) {
	v.items = v.items[:0]
	for _, d := range dashes {
		v.items = append(v.items, SwitcherItem{
			Title:    d.Title,
			Slug:     d.Slug,
			Tags:     d.Tags,
			Elements: len(d.Elements),
			Active:   d.Slug == activeSlug,
		})
	}
	v.err = ""
	v.confirmDel = false

	if v.cursor >= len(v.items) {
		v.cursor = len(v.items) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

// SetError shows a load failure in place of the list.
func (v *SwitcherView) SetError(err error) {
	v.err = err.Error()
}

// Tag is the tag filter currently applied.
func (v SwitcherView) Tag() string {
	return strings.TrimSpace(v.tagInput.Value())
}

// SetSize updates the available dimensions for the overlay.
func (v *SwitcherView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// SelectedItem returns the currently highlighted item, or nil if the list is
// empty.
func (v *SwitcherView) SelectedItem() *SwitcherItem {
	if len(v.items) == 0 {
		return nil
	}
	return &v.items[v.cursor]
}

// Update handles key messages for the switcher overlay.
func (v SwitcherView) Update(msg tea.Msg) (SwitcherView, tea.Cmd, SwitcherAction) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil, ActionNone
	}
	if v.filtering {
		switch {
		case key.Matches(km, keys.DefaultKeyMap.Escape):
			v.filtering = false
			v.tagInput.Blur()
			return v, nil, ActionNone
		case key.Matches(km, keys.DefaultKeyMap.Enter):
			v.filtering = false
			v.tagInput.Blur()
			return v, nil, ActionFilter
		}
		var cmd tea.Cmd
		v.tagInput, cmd = v.tagInput.Update(msg)
		return v, cmd, ActionNone
	}

	if v.confirmDel {
		v.confirmDel = false
		if km.String() == "y" && len(v.items) > 0 {
			return v, nil, ActionDelete
		}
		return v, nil, ActionNone
	}

	switch {
	case key.Matches(km, keys.DefaultKeyMap.Escape):
		return v, nil, ActionClose

	case key.Matches(km, keys.DefaultKeyMap.Up):
		if v.cursor > 0 {
			v.cursor--
		}
		return v, nil, ActionNone

	case key.Matches(km, keys.DefaultKeyMap.Down):
		if v.cursor < len(v.items)-1 {
			v.cursor++
		}
		return v, nil, ActionNone

	case key.Matches(km, keys.DefaultKeyMap.Enter):
		if len(v.items) > 0 {
			return v, nil, ActionSwitch
		}
		return v, nil, ActionNone

	case key.Matches(km, keys.DefaultKeyMap.New):
		return v, nil, ActionNew

	case key.Matches(km, keys.DefaultKeyMap.Edit):
		if len(v.items) > 0 {
			return v, nil, ActionEdit
		}
		return v, nil, ActionNone

	case key.Matches(km, keys.DefaultKeyMap.Delete):
		if len(v.items) > 0 {
			v.confirmDel = true
		}
		return v, nil, ActionNone

	case km.String() == "/":
		v.filtering = true
		v.tagInput.Focus()
		return v, textinput.Blink, ActionNone
	}
	return v, nil, ActionNone
}

// View renders the switcher as a centered modal box.
func (v SwitcherView) View() string {
	modalWidth := 44
	if v.width > 60 {
		modalWidth = v.width / 2
		if modalWidth > 72 {
			modalWidth = 72
		}
	}
	if modalWidth < 30 {
		modalWidth = 30
	}

	// border + padding
	innerWidth := modalWidth - 6

	var lines []string
	dimStyle := lipgloss.NewStyle().Foreground(v.theme.Base04)

	switch {
	case v.err != "":
		lines = append(lines, v.sty.FormError.Render(v.err))
	case len(v.items) == 0:
		lines = append(lines, dimStyle.Render("No dashboards found."))
		lines = append(lines, "")
		lines = append(lines, dimStyle.Render("Press [n] to create one."))
	default:
		for i, item := range v.items {
			lines = append(lines, v.renderItem(item, i == v.cursor, innerWidth))
		}
	}

	if v.filtering || v.Tag() != "" {
		lines = append(lines, "", v.sty.FormLabel.Render("tag: ")+v.tagInput.View())
	}
	if v.confirmDel {
		if it := v.SelectedItem(); it != nil {
			lines = append(lines, "", v.sty.FormError.Render(fmt.Sprintf("Delete %q? [y/N]", it.Title)))
		}
	}

	helpStyle := lipgloss.NewStyle().Foreground(v.theme.Base04)
	helpKeyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	help := fmt.Sprintf(
		"%s:view  %s:new  %s:edit  %s:delete  %s:tag  %s:close",
		helpKeyStyle.Render("enter"),
		helpKeyStyle.Render("n"),
		helpKeyStyle.Render("e"),
		helpKeyStyle.Render("x"),
		helpKeyStyle.Render("/"),
		helpKeyStyle.Render("esc"),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(lines, "\n"),
		"",
		helpStyle.Render(help),
	)

	return modal(v.theme, v.sty, " Dashboards ", content, innerWidth, v.width, v.height)
}

// renderItem renders a single dashboard item line.
func (v SwitcherView) renderItem(item SwitcherItem, selected bool, width int) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}
	cursorStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)

	nameStyle := lipgloss.NewStyle().Foreground(v.theme.Base05)
	if selected {
		nameStyle = nameStyle.Foreground(v.theme.Base06).Bold(true)
	}

	status := fmt.Sprintf("%d el", item.Elements)
	if len(item.Tags) > 0 {
		status = "#" + strings.Join(item.Tags, " #") + "  " + status
	}
	statusStyle := lipgloss.NewStyle().Foreground(v.theme.Base03)
	if item.Active {
		status = "* " + status
		statusStyle = lipgloss.NewStyle().Foreground(v.theme.Base0B)
	}

	title := truncate(item.Title, width-len(cursor)-len(status)-2)
	padLen := width - len(cursor) - len(title) - len(status)
	if padLen < 2 {
		padLen = 2
	}
	return cursorStyle.Render(cursor) + nameStyle.Render(title) + strings.Repeat(" ", padLen) + statusStyle.Render(status)
}

// modal draws content in a rounded box with title set into the top border
// and centres it in width by height.
func modal(theme styles.Theme, sty *styles.Styles, title, content string, innerWidth, width, height int) string {
	noTopBorder := sty.ModalBorder.BorderTop(false)
	body := noTopBorder.Width(innerWidth).Render(content)

	borderFg := lipgloss.NewStyle().Foreground(theme.Base0D).Background(theme.Base00)
	fullWidth := lipgloss.Width(body)
	// corners(2) + one dash + title
	rightDashes := fullWidth - 2 - 1 - lipgloss.Width(title)
	if rightDashes < 0 {
		rightDashes = 0
	}
	top := borderFg.Render("╭─") + sty.ModalTitle.Render(title) + borderFg.Render(strings.Repeat("─", rightDashes)+"╮")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, top+"\n"+body)
}

// padRight pads s with spaces on the right to the given width.
func padRight(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// truncate shortens s to maxLen characters, adding an ellipsis if needed.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 {
		return ""
	}
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
