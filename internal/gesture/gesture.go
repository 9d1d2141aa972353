// Package gesture turns pointer drags into element moves, resizes and
// rotations.
package gesture

import (
	"math"

	"github.com/tonhe/meerkat/internal/dashboard"
)

// Kind is the manipulation a drag performs.
type Kind int

const (
	Move Kind = iota
	Resize
	Rotate
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Resize:
		return "resize"
	case Rotate:
		return "rotate"
	}
	return "invalid"
}

// DefaultMinSize is the smallest width or height a resize may produce.
const DefaultMinSize = 40

// Point is a pointer position in container units (pixels or cells).
type Point struct{ X, Y float64 }

// Size is the container extent in the same units as Point.
type Size struct{ W, H float64 }

// Box is an element's current placement in container units.
type Box struct{ X, Y, W, H float64 }

// BoxFromRect converts a percentage rect to container units.
func BoxFromRect(r dashboard.Rect, container Size) Box {
	return Box{
		X: r.X / 100 * container.W,
		Y: r.Y / 100 * container.H,
		W: r.W / 100 * container.W,
		H: r.H / 100 * container.H,
	}
}

// Rect converts the box back to percentages of container.
func (b Box) Rect(container Size) dashboard.Rect {
	return dashboard.Rect{
		X: b.X / container.W * 100,
		Y: b.Y / container.H * 100,
		W: b.W / container.W * 100,
		H: b.H / container.H * 100,
	}
}

// Center is the middle of the box.
func (b Box) Center() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// Update is the result of one pointer movement.
type Update struct {
	Kind     Kind
	Index    int
	Rect     dashboard.Rect
	Rotation float64
}

// Action is the reducer action that applies the update.
func (u Update) Action() dashboard.Action {
	if u.Kind == Rotate {
		return dashboard.UpdateRotation{Index: u.Index, Rotation: u.Rotation}
	}
	return dashboard.UpdateRect{Index: u.Index, Rect: u.Rect}
}

// Controller tracks one drag at a time. Begin starts it, Move reports each
// step and End finishes it; Move outside a drag does nothing.
type Controller struct {
	MinSize float64

	active bool
	kind   Kind
	index  int
	box    Box
	last   Point
}

// NewController returns a Controller with the given resize floor.
func NewController(minSize float64) *Controller {
	return &Controller{MinSize: minSize}
}

// Begin starts a drag of kind on element index whose placement is box.
func (c *Controller) Begin(kind Kind, index int, box Box, at Point) {
	c.active = true
	c.kind = kind
	c.index = index
	c.box = box
	c.last = at
}

// Active reports whether a drag is in progress.
func (c *Controller) Active() bool { return c.active }

// Kind is the kind of the drag in progress.
func (c *Controller) Kind() Kind { return c.kind }

// Index is the element being dragged.
func (c *Controller) Index() int { return c.index }

// Box is the dragged element's current placement.
func (c *Controller) Box() Box { return c.box }

// Move applies the pointer delta since the previous event. container is
// measured now, so a resized window is honoured mid-drag.
func (c *Controller) Move(at Point, container Size) (Update, bool) {
	if !c.active || container.W <= 0 || container.H <= 0 {
		return Update{}, false
	}
	dx, dy := at.X-c.last.X, at.Y-c.last.Y
	c.last = at

	u := Update{Kind: c.kind, Index: c.index}
	switch c.kind {
	case Move:
		c.box.X = clamp(c.box.X+dx, 0, container.W-c.box.W)
		c.box.Y = clamp(c.box.Y+dy, 0, container.H-c.box.H)
		u.Rect = c.box.Rect(container)
	case Resize:
		c.box.W = clamp(c.box.W+dx, c.MinSize, container.W-c.box.X)
		c.box.H = clamp(c.box.H+dy, c.MinSize, container.H-c.box.Y)
		u.Rect = c.box.Rect(container)
	case Rotate:
		center := c.box.Center()
		u.Rotation = math.Atan2(at.Y-center.Y, at.X-center.X)
		u.Rect = c.box.Rect(container)
	default:
		return Update{}, false
	}
	return u, true
}

// End finishes the drag and returns the element it affected.
func (c *Controller) End() (int, bool) {
	if !c.active {
		return 0, false
	}
	c.active = false
	return c.index, true
}

// clamp bounds v to [lo, hi]. When hi < lo the upper bound wins so the
// element never leaves the container.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	return v
}
