package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/gesture"
	"github.com/tonhe/meerkat/tui/elements"
)

// Canvas is a grid of styled cells that element tiles are painted onto in
// document order, so later elements cover earlier ones.
type Canvas struct {
	w, h   int
	runes  []rune
	style  []int
	styles []lipgloss.Style
}

// NewCanvas creates a w by h canvas filled with spaces in base.
func NewCanvas(w, h int, base lipgloss.Style) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &Canvas{
		w:      w,
		h:      h,
		runes:  make([]rune, w*h),
		style:  make([]int, w*h),
		styles: []lipgloss.Style{base},
	}
	for i := range c.runes {
		c.runes[i] = ' '
	}
	return c
}

// Size is the canvas extent in gesture units.
func (c *Canvas) Size() gesture.Size {
	return gesture.Size{W: float64(c.w), H: float64(c.h)}
}

// Width is the canvas width in cells.
func (c *Canvas) Width() int { return c.w }

// Height is the canvas height in cells.
func (c *Canvas) Height() int { return c.h }

func (c *Canvas) addStyle(st lipgloss.Style) int {
	c.styles = append(c.styles, st)
	return len(c.styles) - 1
}

func (c *Canvas) set(x, y int, r rune, style int) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.runes[y*c.w+x] = r
	c.style[y*c.w+x] = style
}

// Draw paints a tile with its top left corner at x, y. Cells outside the
// canvas are clipped.
func (c *Canvas) Draw(x, y int, t elements.Tile) {
	style := c.addStyle(t.Style)
	for dy, line := range t.Lines {
		for dx, r := range []rune(line) {
			c.set(x+dx, y+dy, r, style)
		}
	}
}

// Put paints a single cell.
func (c *Canvas) Put(x, y int, r rune, st lipgloss.Style) {
	c.set(x, y, r, c.addStyle(st))
}

// Text paints s left to right from x, y.
func (c *Canvas) Text(x, y int, s string, st lipgloss.Style) {
	style := c.addStyle(st)
	for i, r := range []rune(s) {
		c.set(x+i, y, r, style)
	}
}

// Corners marks the corners of a w by h box at x, y.
func (c *Canvas) Corners(x, y, w, h int, st lipgloss.Style) {
	if w <= 0 || h <= 0 {
		return
	}
	style := c.addStyle(st)
	c.set(x, y, '┌', style)
	c.set(x+w-1, y, '┐', style)
	c.set(x, y+h-1, '└', style)
	c.set(x+w-1, y+h-1, '┘', style)
}

// Row returns line y without styling.
func (c *Canvas) Row(y int) string {
	if y < 0 || y >= c.h {
		return ""
	}
	return string(c.runes[y*c.w : (y+1)*c.w])
}

// Render produces the styled canvas, one line per row.
func (c *Canvas) Render() string {
	lines := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		var b strings.Builder
		start := y * c.w
		for x := 0; x < c.w; {
			style := c.style[start+x]
			end := x
			for end < c.w && c.style[start+end] == style {
				end++
			}
			b.WriteString(c.styles[style].Render(string(c.runes[start+x : start+end])))
			x = end
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

// Cells is an element's placement rounded to whole cells.
type Cells struct{ X, Y, W, H int }

// Contains reports whether the cell at x, y is inside.
func (r Cells) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Place converts a percentage rect to cells on a canvas of size. Elements
// are at least one cell in each direction.
func Place(rect dashboard.Rect, size gesture.Size) Cells {
	b := gesture.BoxFromRect(rect, size)
	cells := Cells{
		X: int(math.Round(b.X)),
		Y: int(math.Round(b.Y)),
		W: int(math.Round(b.W)),
		H: int(math.Round(b.H)),
	}
	if cells.W < 1 {
		cells.W = 1
	}
	if cells.H < 1 {
		cells.H = 1
	}
	return cells
}

// HitTest returns the topmost element whose placement contains x, y, or
// -1.
func HitTest(els []dashboard.Element, size gesture.Size, x, y int) int {
	for i := len(els) - 1; i >= 0; i-- {
		if Place(els[i].Rect, size).Contains(x, y) {
			return i
		}
	}
	return -1
}
