package elements

import (
	"math"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/tui/styles"
)

// stateKey is the option prefix for a state: hosts share the service keys.
func stateKey(s icinga.State) string {
	switch s {
	case icinga.StateOK, icinga.StateUp:
		return "ok"
	case icinga.StateWarning:
		return "warning"
	case icinga.StateCritical, icinga.StateDown:
		return "critical"
	case icinga.StateUnknown:
		return "unknown"
	}
	return ""
}

func checkData(opts dashboard.Options, ctx Context) string {
	if ctx.Result.Worst == nil {
		return ""
	}
	return icinga.CheckData(
		ctx.Result.Worst.Attrs.LastCheckResult,
		opts.String("checkDataSelection"),
		opts.String("checkDataPattern"),
		opts.String("checkDataDefault"),
	)
}

func checkDataFields() []Field {
	return []Field{
		{Key: "checkDataSelection", Label: "Check Data", Kind: FieldText},
		{Key: "checkDataPattern", Label: "Output Pattern", Kind: FieldText},
		{Key: "checkDataDefault", Label: "No Match Default", Kind: FieldText},
	}
}

type card struct{}

func (card) Render(el dashboard.Element, ctx Context) Tile {
	status := strings.ToUpper(ctx.State.Label(ctx.Acknowledged))
	if v := checkData(el.Options, ctx); v != "" {
		status = v
	}
	st := bold(stateTile(ctx), el.Options, "fontSize", 60)
	if ctx.Height < 3 {
		return Tile{Lines: []string{align(el.Title+" "+status, ctx.Width, "center")}, Style: st}
	}
	lines := []string{align(el.Title, ctx.Width, "center"), ""}
	for _, l := range wrap(status, ctx.Width) {
		lines = append(lines, align(l, ctx.Width, "center"))
	}
	return Tile{Lines: middle(lines, ctx.Height), Style: st}
}

func (card) Fields() []Field {
	return join(objectFields(), checkDataFields(),
		[]Field{{Key: "fontSize", Label: "Font Size", Kind: FieldNumber}},
		soundFields())
}

var glyphs = map[string]string{
	"check-circle":   "✔",
	"check":          "✓",
	"alert-triangle": "▲",
	"alert-octagon":  "✖",
	"alert-circle":   "!",
	"help-circle":    "?",
	"x-circle":       "✕",
	"cloud":          "☁",
	"server":         "▤",
	"database":       "◫",
	"wifi":           "≋",
	"heart":          "♥",
	"star":           "★",
	"zap":            "ϟ",
	"circle":         "●",
}

// GlyphNames lists the icon names the icon elements understand.
func GlyphNames() []string {
	names := make([]string, 0, len(glyphs))
	for n := range glyphs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func glyph(name string) string {
	if g, ok := glyphs[name]; ok {
		return g
	}
	return "●"
}

type icon struct{}

func (icon) Render(el dashboard.Element, ctx Context) Tile {
	key := stateKey(ctx.State)
	color := styles.StateColor(ctx.Theme, ctx.State, ctx.Acknowledged)
	name := "help-circle"
	if key != "" {
		name = el.Options.String(key + "Svg")
		colorKey := key + "StrokeColor"
		if ctx.Acknowledged && key != "ok" {
			colorKey = key + "AcknowledgedStrokeColor"
		}
		color = optColor(el.Options, colorKey, color)
	}
	lines := []string{align(glyph(name), ctx.Width, "center")}
	if ctx.Height >= 3 {
		lines = append(lines, "", align(el.Title, ctx.Width, "center"))
	}
	st := lipgloss.NewStyle().Foreground(color).Background(ctx.Theme.Base00).Bold(true)
	return Tile{Lines: middle(lines, ctx.Height), Style: st}
}

func (icon) Fields() []Field {
	names := GlyphNames()
	var fs []Field
	for _, key := range []string{"ok", "warning", "critical", "unknown"} {
		label := strings.ToUpper(key[:1]) + key[1:]
		fs = append(fs,
			Field{Key: key + "Svg", Label: label + " Icon", Kind: FieldChoice, Choices: names},
			Field{Key: key + "StrokeColor", Label: label + " Color", Kind: FieldColor},
		)
		if key != "ok" {
			fs = append(fs, Field{Key: key + "AcknowledgedStrokeColor", Label: label + " ACK Color", Kind: FieldColor})
		}
	}
	return join(objectFields(), fs, soundFields())
}

type stateImage struct{}

func (stateImage) Render(el dashboard.Element, ctx Context) Tile {
	src := ""
	if key := stateKey(ctx.State); key != "" {
		src = el.Options.String(key + "Image")
	}
	label := "▣ " + el.Title
	if src != "" {
		label = "▣ " + path.Base(src)
	}
	lines := []string{align(label, ctx.Width, "center")}
	if ctx.Height >= 3 {
		lines = append(lines, "", align(strings.ToUpper(ctx.State.Label(ctx.Acknowledged)), ctx.Width, "center"))
	}
	return Tile{Lines: middle(lines, ctx.Height), Style: stateTile(ctx)}
}

func (stateImage) Fields() []Field {
	return join(objectFields(), []Field{
		{Key: "okImage", Label: "OK Image", Kind: FieldUpload},
		{Key: "warningImage", Label: "Warning Image", Kind: FieldUpload},
		{Key: "unknownImage", Label: "Unknown Image", Kind: FieldUpload},
		{Key: "criticalImage", Label: "Critical Image", Kind: FieldUpload},
	}, soundFields())
}

// Orientation is the direction a line element is drawn in.
type Orientation int

const (
	Horizontal Orientation = iota
	Falling                // top left to bottom right
	Vertical
	Rising // bottom left to top right
)

// OrientationOf snaps a rotation in radians to the nearest of the four
// directions a character grid can draw.
func OrientationOf(rad float64) Orientation {
	a := math.Mod(rad, math.Pi)
	if a < 0 {
		a += math.Pi
	}
	step := int(math.Round(a/(math.Pi/4))) % 4
	return Orientation(step)
}

type line struct{}

func (line) Render(el dashboard.Element, ctx Context) Tile {
	w, h := ctx.Width, ctx.Height
	grid := make([][]rune, h)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", w))
	}
	heavy := el.Options.Float("strokeWidth", 4) >= 4
	left, right := el.Options.Bool("leftArrow"), el.Options.Bool("rightArrow")

	switch OrientationOf(el.Rotation) {
	case Horizontal:
		y, stroke := h/2, '─'
		if heavy {
			stroke = '━'
		}
		for x := 0; x < w; x++ {
			grid[y][x] = stroke
		}
		if left {
			grid[y][0] = '◀'
		}
		if right {
			grid[y][w-1] = '▶'
		}
	case Vertical:
		x, stroke := w/2, '│'
		if heavy {
			stroke = '┃'
		}
		for y := 0; y < h; y++ {
			grid[y][x] = stroke
		}
		if left {
			grid[0][x] = '▲'
		}
		if right {
			grid[h-1][x] = '▼'
		}
	case Falling, Rising:
		rising := OrientationOf(el.Rotation) == Rising
		n := w
		if h > n {
			n = h
		}
		for i := 0; i < n; i++ {
			x := i * (w - 1) / max(n-1, 1)
			y := i * (h - 1) / max(n-1, 1)
			stroke := '╲'
			if rising {
				y = h - 1 - y
				stroke = '╱'
			}
			grid[y][x] = stroke
		}
	}

	lines := make([]string, h)
	for y := range grid {
		lines[y] = string(grid[y])
	}
	color := styles.StateColor(ctx.Theme, ctx.State, ctx.Acknowledged)
	st := lipgloss.NewStyle().Foreground(color).Background(ctx.Theme.Base00)
	return Tile{Lines: lines, Style: st}
}

func (line) Fields() []Field {
	return join(objectFields(), []Field{
		{Key: "strokeWidth", Label: "Stroke Width", Kind: FieldNumber},
		{Key: "leftArrow", Label: "Left Arrow", Kind: FieldBool},
		{Key: "rightArrow", Label: "Right Arrow", Kind: FieldBool},
	}, soundFields())
}

// attribute reads a named attribute of the worst matched object. Names
// that are not attributes are looked up in the performance data.
func attribute(o *icinga.Object, name string) string {
	if o == nil {
		return ""
	}
	a := o.Attrs
	switch name {
	case "", "name":
		return o.Name
	case "display_name":
		return a.DisplayName
	case "host_name":
		return a.HostName
	case "state":
		return strconv.Itoa(a.Code())
	case "output", "last_check_result":
		return a.LastCheckResult.Output
	case "groups":
		return strings.Join(a.Groups, ", ")
	case "last_check":
		return formatStamp(a.LastCheckTime())
	case "next_check":
		return formatStamp(a.NextCheckTime())
	case "acknowledgement":
		return strconv.FormatBool(a.Acknowledged())
	}
	return icinga.ParsePerformance(a.LastCheckResult.PerformanceData)[name]
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// textStyle applies the font and background colour options.
func textStyle(opts dashboard.Options, theme styles.Theme) lipgloss.Style {
	st := lipgloss.NewStyle().
		Foreground(optColor(opts, "fontColor", theme.Base05)).
		Background(optColor(opts, "backgroundColor", theme.Base01))
	return bold(st, opts, "fontSize", 22)
}

func textLines(s string, opts dashboard.Options, w, h int) []string {
	how := opts.String("textAlign")
	var lines []string
	for _, l := range wrap(s, w) {
		lines = append(lines, align(l, w, how))
	}
	return middle(lines, h)
}

type dynamicText struct{}

func (dynamicText) Render(el dashboard.Element, ctx Context) Tile {
	text := attribute(ctx.Result.Worst, el.Options.String("dynamicText"))
	if text == "" && !ctx.State.Observed() {
		text = el.Title
	}
	return Tile{Lines: textLines(text, el.Options, ctx.Width, ctx.Height), Style: textStyle(el.Options, ctx.Theme)}
}

func (dynamicText) Fields() []Field {
	return join(objectFields(),
		[]Field{{Key: "dynamicText", Label: "Attribute", Kind: FieldText}},
		textFields())
}

type clock struct{}

// location resolves a time zone option; unknown names fall back to local.
func location(name string) *time.Location {
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

func (clock) Render(el dashboard.Element, ctx Context) Tile {
	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	lines := []string{align(now.In(location(el.Options.String("timeZone"))).Format("15:04:05"), ctx.Width, "center")}
	st := lipgloss.NewStyle().
		Foreground(optColor(el.Options, "fontColor", ctx.Theme.Base05)).
		Background(ctx.Theme.Base00)
	if ctx.State.Observed() {
		st = st.Background(styles.StateColor(ctx.Theme, ctx.State, ctx.Acknowledged)).Foreground(ctx.Theme.Base00)
	}
	if ctx.Height >= 3 && el.Title != "" {
		lines = append([]string{align(el.Title, ctx.Width, "center"), ""}, lines...)
	}
	return Tile{Lines: middle(lines, ctx.Height), Style: bold(st, el.Options, "statusFontSize", 60)}
}

func (clock) Fields() []Field {
	return join([]Field{
		{Key: "timeZone", Label: "Time Zone", Kind: FieldText},
		{Key: "fontColor", Label: "Font Color", Kind: FieldColor},
		{Key: "statusFontSize", Label: "Font Size", Kind: FieldNumber},
	}, objectFields(), soundFields())
}
