package views

import (
	"regexp"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/engine"
	"github.com/tonhe/meerkat/tui/components"
	"github.com/tonhe/meerkat/tui/elements"
	"github.com/tonhe/meerkat/tui/styles"
)

// Snapshots is where element states are read from. *engine.Manager
// satisfies it.
type Snapshots interface {
	GetSnapshot(key string) (engine.Snapshot, error)
}

var backgroundColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// snapshotFor returns the poller snapshot behind element i. Elements that
// do not watch anything, or whose poller has not started, report false.
func snapshotFor(doc dashboard.Dashboard, i int, snaps Snapshots) (engine.Snapshot, bool) {
	sel := doc.Selector(i)
	if sel.Idle() || snaps == nil {
		return engine.Snapshot{}, false
	}
	snap, err := snaps.GetSnapshot(sel.Key())
	if err != nil {
		return engine.Snapshot{}, false
	}
	return snap, true
}

// paintDashboard draws every element of doc onto a w by h canvas in
// document order.
func paintDashboard(theme styles.Theme, doc dashboard.Dashboard, w, h int, snaps Snapshots, now time.Time) *components.Canvas {
	base := lipgloss.NewStyle().Background(theme.Base00).Foreground(theme.Base05)
	if backgroundColor.MatchString(doc.Background) {
		base = base.Background(lipgloss.Color(doc.Background))
	}
	canvas := components.NewCanvas(w, h, base)
	size := canvas.Size()

	for i, el := range doc.Elements {
		cells := components.Place(el.Rect, size)
		ctx := elements.Context{
			Theme:  theme,
			Width:  cells.W,
			Height: cells.H,
			Now:    now,
		}
		if snap, ok := snapshotFor(doc, i, snaps); ok {
			ctx.State = snap.DisplayState()
			ctx.Acknowledged = snap.Result.Acknowledged
			ctx.Result = snap.Result
		}
		canvas.Draw(cells.X, cells.Y, elements.Render(el, ctx))
	}
	return canvas
}
