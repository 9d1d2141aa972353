package views

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/tui/styles"
)

func twoTiles() *dashboard.Dashboard {
	return &dashboard.Dashboard{
		Title: "Wall",
		Elements: []dashboard.Element{
			{Type: dashboard.StaticText, Title: "Left", Rect: dashboard.Rect{X: 0, Y: 0, W: 50, H: 50}},
			{Type: dashboard.StaticText, Title: "Right", Rect: dashboard.Rect{X: 50, Y: 0, W: 50, H: 50}},
		},
	}
}

func newTestViewer(d *dashboard.Dashboard) ViewerView {
	v := NewViewerView(styles.DefaultTheme)
	v.SetSize(80, 20)
	v.SetDashboard(d)
	return v
}

func TestViewerFocusCycles(t *testing.T) {
	v := newTestViewer(twoTiles())
	if v.Focused() != -1 {
		t.Fatalf("initial focus = %d, want -1", v.Focused())
	}

	steps := []struct {
		msg  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyTab}, 0},
		{tea.KeyMsg{Type: tea.KeyTab}, 1},
		{tea.KeyMsg{Type: tea.KeyTab}, 0},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, 1},
		{tea.KeyMsg{Type: tea.KeyEsc}, -1},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, 1},
	}
	for i, s := range steps {
		v, _, _ = v.Update(s.msg)
		if v.Focused() != s.want {
			t.Errorf("step %d (%s): focus = %d, want %d", i, s.msg, v.Focused(), s.want)
		}
	}
}

func TestViewerEnterOpensOnlyWhenFocused(t *testing.T) {
	v := newTestViewer(twoTiles())
	_, _, open := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if open {
		t.Error("enter without focus should not open detail")
	}
	v, _, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	_, _, open = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !open {
		t.Error("enter with focus should open detail")
	}
}

func TestViewerClickFocusesThenOpens(t *testing.T) {
	v := newTestViewer(twoTiles())
	click := tea.MouseMsg{X: 60, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}

	v, _, open := v.Update(click)
	if open || v.Focused() != 1 {
		t.Fatalf("first click: focus %d open %v, want 1 false", v.Focused(), open)
	}
	v, _, open = v.Update(click)
	if !open {
		t.Error("second click on the focused element should open detail")
	}

	v, _, _ = v.Update(tea.MouseMsg{X: 10, Y: 18, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if v.Focused() != -1 {
		t.Errorf("click on empty canvas: focus = %d, want -1", v.Focused())
	}
}

func TestViewerFocusDroppedWhenElementGone(t *testing.T) {
	v := newTestViewer(twoTiles())
	v, _, _ = v.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if v.Focused() != 1 {
		t.Fatalf("focus = %d, want 1", v.Focused())
	}
	d := twoTiles()
	d.Elements = d.Elements[:1]
	v.SetDashboard(d)
	if v.Focused() != -1 {
		t.Errorf("focus = %d after the element was removed, want -1", v.Focused())
	}
}

func TestViewerBanner(t *testing.T) {
	v := newTestViewer(twoTiles())
	if strings.Contains(v.View(), StaleBanner) {
		t.Error("banner shown before it was set")
	}
	v.SetBanner(StaleBanner)
	if !strings.Contains(v.View(), StaleBanner) {
		t.Error("banner missing from the canvas")
	}

	empty := newTestViewer(nil)
	empty.SetBanner(StaleBanner)
	out := empty.View()
	if !strings.Contains(out, "No dashboard loaded") || !strings.Contains(out, StaleBanner) {
		t.Error("empty view should show the hint and the banner")
	}
}
