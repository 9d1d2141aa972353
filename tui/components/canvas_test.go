package components

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/gesture"
	"github.com/tonhe/meerkat/tui/elements"
)

func TestCanvasDrawClips(t *testing.T) {
	c := NewCanvas(6, 3, lipgloss.NewStyle())
	c.Draw(4, 1, elements.Tile{Lines: []string{"abcd", "efgh"}})
	if got := c.Row(1); got != "    ab" {
		t.Errorf("row 1 = %q", got)
	}
	if got := c.Row(2); got != "    ef" {
		t.Errorf("row 2 = %q", got)
	}
	if got := c.Row(0); got != "      " {
		t.Errorf("row 0 = %q", got)
	}
}

func TestCanvasLaterTilesCover(t *testing.T) {
	c := NewCanvas(5, 1, lipgloss.NewStyle())
	c.Draw(0, 0, elements.Tile{Lines: []string{"aaaaa"}})
	c.Draw(2, 0, elements.Tile{Lines: []string{"bb"}})
	if got := c.Row(0); got != "aabba" {
		t.Errorf("row = %q", got)
	}
}

func TestCanvasCorners(t *testing.T) {
	c := NewCanvas(4, 3, lipgloss.NewStyle())
	c.Corners(0, 0, 4, 3, lipgloss.NewStyle())
	if c.Row(0) != "┌  ┐" || c.Row(2) != "└  ┘" {
		t.Errorf("corners = %q / %q", c.Row(0), c.Row(2))
	}
}

func TestCanvasRenderKeepsText(t *testing.T) {
	c := NewCanvas(3, 2, lipgloss.NewStyle())
	c.Text(0, 0, "hey", lipgloss.NewStyle())
	if got := c.Render(); got != "hey\n   " {
		t.Errorf("render = %q", got)
	}
}

func TestPlace(t *testing.T) {
	size := gesture.Size{W: 200, H: 50}
	got := Place(dashboard.Rect{X: 10, Y: 20, W: 15, H: 12}, size)
	want := Cells{X: 20, Y: 10, W: 30, H: 6}
	if got != want {
		t.Errorf("Place() = %+v, want %+v", got, want)
	}
	tiny := Place(dashboard.Rect{W: 0.1, H: 0.1}, size)
	if tiny.W != 1 || tiny.H != 1 {
		t.Errorf("expected a one cell minimum, got %+v", tiny)
	}
}

func TestHitTestTopmost(t *testing.T) {
	size := gesture.Size{W: 100, H: 100}
	els := []dashboard.Element{
		{Rect: dashboard.Rect{X: 0, Y: 0, W: 50, H: 50}},
		{Rect: dashboard.Rect{X: 25, Y: 25, W: 50, H: 50}},
	}
	if got := HitTest(els, size, 30, 30); got != 1 {
		t.Errorf("overlap hit = %d, want 1", got)
	}
	if got := HitTest(els, size, 10, 10); got != 0 {
		t.Errorf("hit = %d, want 0", got)
	}
	if got := HitTest(els, size, 90, 10); got != -1 {
		t.Errorf("miss = %d, want -1", got)
	}
}
