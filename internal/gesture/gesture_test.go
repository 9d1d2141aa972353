package gesture

import (
	"math"
	"testing"

	"github.com/tonhe/meerkat/internal/dashboard"
)

var container = Size{W: 1000, H: 500}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestMoveConvertsToPercent(t *testing.T) {
	c := NewController(DefaultMinSize)
	c.Begin(Move, 2, Box{X: 100, Y: 100, W: 150, H: 60}, Point{X: 120, Y: 110})

	u, ok := c.Move(Point{X: 220, Y: 110}, container)
	if !ok {
		t.Fatal("Move() during drag should report an update")
	}
	if u.Index != 2 || !near(u.Rect.X, 20) || !near(u.Rect.Y, 20) {
		t.Errorf("expected x 20%% y 20%% for index 2, got %+v", u)
	}
	if !near(u.Rect.W, 15) || !near(u.Rect.H, 12) {
		t.Errorf("move should keep the size, got %+v", u.Rect)
	}
}

func TestMoveClampsToContainer(t *testing.T) {
	tests := []struct {
		name  string
		to    Point
		wantX float64
		wantY float64
	}{
		{"past left", Point{X: -500, Y: 0}, 0, 0},
		{"past right", Point{X: 5000, Y: 0}, 85, 0},
		{"past bottom", Point{X: 0, Y: 5000}, 0, 88},
	}
	for _, tt := range tests {
		c := NewController(DefaultMinSize)
		c.Begin(Move, 0, Box{W: 150, H: 60}, Point{})
		u, _ := c.Move(tt.to, container)
		if !near(u.Rect.X, tt.wantX) || !near(u.Rect.Y, tt.wantY) {
			t.Errorf("%s: got x=%v y=%v, want %v/%v", tt.name, u.Rect.X, u.Rect.Y, tt.wantX, tt.wantY)
		}
	}
}

func TestMoveUsesDeltaSinceLastEvent(t *testing.T) {
	c := NewController(DefaultMinSize)
	c.Begin(Move, 0, Box{X: 0, Y: 0, W: 100, H: 50}, Point{X: 10, Y: 10})
	c.Move(Point{X: 60, Y: 10}, container)
	u, _ := c.Move(Point{X: 110, Y: 10}, container)
	if !near(u.Rect.X, 10) {
		t.Errorf("two 50px steps should land at 10%%, got %v", u.Rect.X)
	}
}

func TestResizeFloorAndCeiling(t *testing.T) {
	c := NewController(DefaultMinSize)
	c.Begin(Resize, 0, Box{X: 800, Y: 0, W: 100, H: 100}, Point{X: 900, Y: 100})

	u, _ := c.Move(Point{X: 700, Y: 0}, container)
	if !near(u.Rect.W, 4) || !near(u.Rect.H, 8) {
		t.Errorf("expected floor of 40 units (4%% x 8%%), got %+v", u.Rect)
	}

	u, _ = c.Move(Point{X: 2000, Y: 0}, container)
	if !near(u.Rect.W, 20) {
		t.Errorf("width should stop at the container edge (20%%), got %v", u.Rect.W)
	}
}

func TestRotate(t *testing.T) {
	c := NewController(DefaultMinSize)
	c.Begin(Rotate, 1, Box{X: 0, Y: 0, W: 100, H: 100}, Point{X: 100, Y: 50})

	u, ok := c.Move(Point{X: 50, Y: 100}, container)
	if !ok || !near(u.Rotation, math.Pi/2) {
		t.Errorf("pointer below centre should give pi/2, got %v", u.Rotation)
	}
	if act, ok := u.Action().(dashboard.UpdateRotation); !ok || act.Index != 1 {
		t.Errorf("rotate should produce UpdateRotation for index 1, got %#v", u.Action())
	}
}

func TestEndDeactivates(t *testing.T) {
	c := NewController(DefaultMinSize)
	if _, ok := c.End(); ok {
		t.Error("End() without a drag should report false")
	}
	c.Begin(Move, 4, Box{W: 10, H: 10}, Point{})
	if idx, ok := c.End(); !ok || idx != 4 {
		t.Errorf("End() = %d, %v", idx, ok)
	}
	if c.Active() {
		t.Error("controller should be inactive after End()")
	}
	if _, ok := c.Move(Point{X: 50}, container); ok {
		t.Error("Move() after End() must be ignored")
	}
}

func TestBoxRectRoundTrip(t *testing.T) {
	r := dashboard.Rect{X: 10, Y: 20, W: 30, H: 40}
	got := BoxFromRect(r, container).Rect(container)
	if !near(got.X, r.X) || !near(got.Y, r.Y) || !near(got.W, r.W) || !near(got.H, r.H) {
		t.Errorf("round trip changed rect: %+v", got)
	}
}
