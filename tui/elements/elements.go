// Package elements renders dashboard elements as terminal tiles and
// describes the option fields the editor offers for each element type.
package elements

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/tui/styles"
)

// Context is everything a renderer may draw from besides the element.
type Context struct {
	Theme  styles.Theme
	Width  int
	Height int
	// State is StateNone until the element's poller has a result.
	State        icinga.State
	Acknowledged bool
	Result       icinga.Result
	Now          time.Time
}

// Tile is a rendered element: plain text lines and the style painted
// over the whole tile. Lines never contain escape sequences, so the
// canvas can clip and overlap tiles cell by cell.
type Tile struct {
	Lines []string
	Style lipgloss.Style
}

// Renderer draws one element type and lists its editable options.
type Renderer interface {
	Render(el dashboard.Element, ctx Context) Tile
	Fields() []Field
}

var registry = map[dashboard.ElementType]Renderer{
	dashboard.CheckCard:    card{},
	dashboard.CheckSVG:     icon{},
	dashboard.CheckImage:   stateImage{},
	dashboard.CheckLine:    line{},
	dashboard.DynamicText:  dynamicText{},
	dashboard.Clock:        clock{},
	dashboard.StaticText:   staticText{},
	dashboard.StaticSVG:    staticIcon{},
	dashboard.StaticImage:  staticImage{},
	dashboard.StaticTicker: ticker{},
	dashboard.IframeVideo:  video{},
	dashboard.AudioStream:  audio{},
}

// Lookup returns the renderer for t.
func Lookup(t dashboard.ElementType) (Renderer, bool) {
	r, ok := registry[t]
	return r, ok
}

// Render draws el, or returns an empty tile for an unknown type.
func Render(el dashboard.Element, ctx Context) Tile {
	r, ok := Lookup(el.Type)
	if !ok || ctx.Width <= 0 || ctx.Height <= 0 {
		return Tile{}
	}
	t := r.Render(el, ctx)
	t.Lines = fit(t.Lines, ctx.Width, ctx.Height)
	return t
}

// Fields returns the editor fields of type t, or nil for an unknown type.
func Fields(t dashboard.ElementType) []Field {
	r, ok := Lookup(t)
	if !ok {
		return nil
	}
	return r.Fields()
}

// FieldKind selects how raw editor input is parsed.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
	FieldBool
	FieldChoice
	FieldColor
	// FieldUpload holds a URL; the editor uploads a local file to get one.
	FieldUpload
)

// Field is one editable option of an element.
type Field struct {
	Key     string
	Label   string
	Kind    FieldKind
	Choices []string
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Patch parses raw editor input into an options patch for the field. An
// empty value clears the option.
func (f Field) Patch(raw string) (dashboard.Options, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return dashboard.Options{f.Key: nil}, nil
	}
	var v any
	switch f.Kind {
	case FieldNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", f.Label)
		}
		v = n
	case FieldBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", f.Label)
		}
		v = b
	case FieldChoice:
		found := false
		for _, c := range f.Choices {
			if c == raw {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s must be one of %s", f.Label, strings.Join(f.Choices, ", "))
		}
		v = raw
	case FieldColor:
		if !hexColor.MatchString(raw) {
			return nil, fmt.Errorf("%s must look like #rrggbb", f.Label)
		}
		v = raw
	default:
		v = raw
	}
	return dashboard.Options{f.Key: v}, nil
}

// Value formats the current option for display in the editor.
func (f Field) Value(opts dashboard.Options) string {
	if f.Kind == FieldBool {
		return strconv.FormatBool(opts.Bool(f.Key))
	}
	return opts.String(f.Key)
}

func objectFields() []Field {
	types := make([]string, 0, 4)
	for _, t := range icinga.ObjectTypes() {
		types = append(types, string(t))
	}
	return []Field{
		{Key: "objectType", Label: "Object Type", Kind: FieldChoice, Choices: types},
		{Key: "objectName", Label: "Object Name", Kind: FieldText},
		{Key: "filter", Label: "Filter", Kind: FieldText},
	}
}

func soundFields() []Field {
	return []Field{
		{Key: "muteAlerts", Label: "Mute Alerts", Kind: FieldBool},
		{Key: "okSound", Label: "OK Sound", Kind: FieldUpload},
		{Key: "warningSound", Label: "Warning Sound", Kind: FieldUpload},
		{Key: "criticalSound", Label: "Critical Sound", Kind: FieldUpload},
		{Key: "unknownSound", Label: "Unknown Sound", Kind: FieldUpload},
		{Key: "upSound", Label: "Up Sound", Kind: FieldUpload},
		{Key: "downSound", Label: "Down Sound", Kind: FieldUpload},
	}
}

func textFields() []Field {
	return []Field{
		{Key: "fontSize", Label: "Font Size", Kind: FieldNumber},
		{Key: "fontColor", Label: "Font Color", Kind: FieldColor},
		{Key: "backgroundColor", Label: "Background Color", Kind: FieldColor},
		{Key: "textAlign", Label: "Alignment", Kind: FieldChoice, Choices: []string{"left", "center", "right"}},
	}
}

func join(groups ...[]Field) []Field {
	var out []Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// optColor returns the colour stored under key, or def.
func optColor(opts dashboard.Options, key string, def lipgloss.Color) lipgloss.Color {
	if c := opts.String(key); hexColor.MatchString(c) {
		return lipgloss.Color(c)
	}
	return def
}

// stateTile is the base style of an element coloured by its state.
func stateTile(ctx Context) lipgloss.Style {
	if !ctx.State.Observed() {
		return lipgloss.NewStyle().Foreground(ctx.Theme.Base05).Background(ctx.Theme.Base02)
	}
	return lipgloss.NewStyle().
		Foreground(ctx.Theme.Base00).
		Background(styles.StateColor(ctx.Theme, ctx.State, ctx.Acknowledged))
}

// bold marks large font sizes, the nearest a terminal gets to them.
func bold(st lipgloss.Style, opts dashboard.Options, key string, def float64) lipgloss.Style {
	return st.Bold(opts.Float(key, def) >= 40)
}

// fit pads or clips lines to exactly h lines of w cells.
func fit(lines []string, w, h int) []string {
	out := make([]string, h)
	for i := range out {
		s := ""
		if i < len(lines) {
			s = lines[i]
		}
		out[i] = pad(s, w)
	}
	return out
}

func pad(s string, w int) string {
	r := []rune(s)
	if len(r) >= w {
		return string(r[:w])
	}
	return s + strings.Repeat(" ", w-len(r))
}

// align places s in a line of w cells.
func align(s string, w int, how string) string {
	r := []rune(s)
	if len(r) >= w {
		return string(r[:w])
	}
	gap := w - len(r)
	switch how {
	case "left":
		return s + strings.Repeat(" ", gap)
	case "right":
		return strings.Repeat(" ", gap) + s
	}
	return strings.Repeat(" ", gap/2) + s + strings.Repeat(" ", gap-gap/2)
}

// middle centres content lines vertically in h lines.
func middle(content []string, h int) []string {
	if len(content) >= h {
		return content[:h]
	}
	top := (h - len(content)) / 2
	out := make([]string, top, h)
	out = append(out, content...)
	return out
}

// wrap breaks s into lines of at most w cells on spaces.
func wrap(s string, w int) []string {
	if w <= 0 {
		return nil
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		cur := ""
		for _, word := range strings.Fields(para) {
			for len([]rune(word)) > w {
				if cur != "" {
					out = append(out, cur)
					cur = ""
				}
				r := []rune(word)
				out = append(out, string(r[:w]))
				word = string(r[w:])
			}
			switch {
			case cur == "":
				cur = word
			case len([]rune(cur))+1+len([]rune(word)) <= w:
				cur += " " + word
			default:
				out = append(out, cur)
				cur = word
			}
		}
		out = append(out, cur)
	}
	return out
}
