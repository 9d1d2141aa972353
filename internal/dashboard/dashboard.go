package dashboard

import (
	"regexp"
	"strings"

	"github.com/tonhe/meerkat/internal/icinga"
)

// Dashboard is a single status-wall document as stored by the Meerkat server.
type Dashboard struct {
	Title         string            `json:"title" toml:"title" validate:"required"`
	Slug          string            `json:"slug" toml:"slug"`
	Tags          []string          `json:"tags,omitempty" toml:"tags,omitempty"`
	Background    string            `json:"background,omitempty" toml:"background,omitempty"`
	Width         string            `json:"width,omitempty" toml:"width,omitempty"`
	Height        string            `json:"height,omitempty" toml:"height,omitempty"`
	GlobalMute    bool              `json:"globalMute" toml:"global_mute"`
	OkSound       string            `json:"okSound,omitempty" toml:"ok_sound,omitempty"`
	WarningSound  string            `json:"warningSound,omitempty" toml:"warning_sound,omitempty"`
	CriticalSound string            `json:"criticalSound,omitempty" toml:"critical_sound,omitempty"`
	UnknownSound  string            `json:"unknownSound,omitempty" toml:"unknown_sound,omitempty"`
	UpSound       string            `json:"upSound,omitempty" toml:"up_sound,omitempty"`
	DownSound     string            `json:"downSound,omitempty" toml:"down_sound,omitempty"`
	Variables     map[string]string `json:"variables,omitempty" toml:"variables,omitempty"`
	Elements      []Element         `json:"elements" toml:"elements" validate:"dive"`
}

// Element is one positioned widget on a dashboard. Elements are identified
// by their index in Dashboard.Elements.
type Element struct {
	Type     ElementType `json:"type" toml:"type" validate:"required,elementtype"`
	Title    string      `json:"title" toml:"title"`
	Rect     Rect        `json:"rect" toml:"rect"`
	Rotation float64     `json:"rotation" toml:"rotation"`
	Options  Options     `json:"options" toml:"options"`
}

// Rect is a position and size expressed in percent of the canvas.
type Rect struct {
	X float64 `json:"x" toml:"x" validate:"gte=0,lte=100"`
	Y float64 `json:"y" toml:"y" validate:"gte=0,lte=100"`
	W float64 `json:"w" toml:"w" validate:"gte=0,lte=100"`
	H float64 `json:"h" toml:"h" validate:"gte=0,lte=100"`
}

// DefaultRect is where new elements are placed.
var DefaultRect = Rect{X: 0, Y: 0, W: 15, H: 12}

// ElementType is the closed set of element kinds a dashboard can hold.
type ElementType string

const (
	CheckCard    ElementType = "check-card"
	CheckSVG     ElementType = "check-svg"
	CheckImage   ElementType = "check-image"
	CheckLine    ElementType = "check-line"
	DynamicText  ElementType = "dynamic-text"
	StaticText   ElementType = "static-text"
	StaticSVG    ElementType = "static-svg"
	StaticImage  ElementType = "static-image"
	StaticTicker ElementType = "static-ticker"
	IframeVideo  ElementType = "iframe-video"
	AudioStream  ElementType = "audio-stream"
	Clock        ElementType = "clock"
)

var elementTypes = []ElementType{
	CheckCard, CheckSVG, CheckImage, CheckLine, DynamicText,
	StaticText, StaticSVG, StaticImage, StaticTicker,
	IframeVideo, AudioStream, Clock,
}

// ElementTypes returns every known element type in display order.
func ElementTypes() []ElementType {
	out := make([]ElementType, len(elementTypes))
	copy(out, elementTypes)
	return out
}

// Known reports whether t is one of the defined element types.
func (t ElementType) Known() bool {
	for _, k := range elementTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Monitored reports whether elements of this type poll Icinga.
func (t ElementType) Monitored() bool {
	switch t {
	case CheckCard, CheckSVG, CheckImage, CheckLine, DynamicText, Clock:
		return true
	case StaticText, StaticSVG, StaticImage, StaticTicker, IframeVideo, AudioStream:
		return false
	}
	return false
}

// Label is a human readable name for the type.
func (t ElementType) Label() string {
	switch t {
	case CheckCard:
		return "Card"
	case CheckSVG:
		return "SVG"
	case CheckImage:
		return "Image"
	case CheckLine:
		return "Line"
	case DynamicText:
		return "Dynamic Text"
	case StaticText:
		return "Static Text"
	case StaticSVG:
		return "Static SVG"
	case StaticImage:
		return "Static Image"
	case StaticTicker:
		return "Static Ticker"
	case IframeVideo:
		return "Video"
	case AudioStream:
		return "Audio Stream"
	case Clock:
		return "Clock"
	}
	return string(t)
}

// DefaultOptions returns a fresh options bag for a newly created or
// re-typed element.
func DefaultOptions(t ElementType) Options {
	switch t {
	case CheckCard:
		return Options{"checkDataSelection": "", "fontSize": float64(60)}
	case CheckSVG:
		return Options{
			"okSvg":                           "check-circle",
			"okStrokeColor":                   "#0ee16a",
			"warningSvg":                      "alert-triangle",
			"warningStrokeColor":              "#ff9000",
			"warningAcknowledgedStrokeColor":  "#ffca39",
			"unknownSvg":                      "help-circle",
			"unknownStrokeColor":              "#970ee1",
			"unknownAcknowledgedStrokeColor":  "#b594b5",
			"criticalSvg":                     "alert-octagon",
			"criticalStrokeColor":             "#ff0019",
			"criticalAcknowledgedStrokeColor": "#de5e84",
		}
	case CheckImage:
		return Options{}
	case CheckLine:
		return Options{"strokeWidth": float64(4), "leftArrow": false, "rightArrow": true}
	case DynamicText:
		return Options{
			"fontSize":        float64(22),
			"fontColor":       "#ffffff",
			"textAlign":       "center",
			"backgroundColor": "#007bff",
			"dynamicText":     "",
		}
	case StaticText:
		return Options{
			"text":            "sample message",
			"fontSize":        float64(22),
			"fontColor":       "#ffffff",
			"textAlign":       "center",
			"backgroundColor": "#007bff",
		}
	case StaticSVG:
		return Options{"svg": "cloud", "strokeColor": "#00b6ff", "strokeWidth": float64(1)}
	case StaticImage:
		return Options{}
	case StaticTicker:
		return Options{
			"text":            "sample message",
			"fontSize":        float64(22),
			"fontColor":       "#ffffff",
			"backgroundColor": "#007bff",
			"scrollPeriod":    float64(15),
		}
	case IframeVideo:
		return Options{"source": ""}
	case AudioStream:
		return Options{"source": ""}
	case Clock:
		return Options{"timeZone": "Local", "fontColor": "#ffffff", "statusFontSize": float64(60)}
	}
	return Options{}
}

var (
	slugSeparators = regexp.MustCompile(`[_\s]`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9-]`)
)

// TitleToSlug derives the URL identifier of a dashboard from its title.
func TitleToSlug(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = slugSeparators.ReplaceAllString(s, "-")
	return slugInvalid.ReplaceAllString(s, "")
}

// Clone returns a deep copy of d.
func (d Dashboard) Clone() Dashboard {
	out := d
	if d.Tags != nil {
		out.Tags = append([]string(nil), d.Tags...)
	}
	if d.Variables != nil {
		out.Variables = make(map[string]string, len(d.Variables))
		for k, v := range d.Variables {
			out.Variables[k] = v
		}
	}
	if d.Elements != nil {
		out.Elements = make([]Element, len(d.Elements))
		for i, el := range d.Elements {
			out.Elements[i] = el.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	out := e
	out.Options = e.Options.Clone()
	return out
}

// Sounds returns the dashboard-level default alert sounds.
func (d Dashboard) Sounds() Sounds {
	return Sounds{
		OK:       d.OkSound,
		Warning:  d.WarningSound,
		Critical: d.CriticalSound,
		Unknown:  d.UnknownSound,
		Up:       d.UpSound,
		Down:     d.DownSound,
	}
}

// ExpandFilter substitutes ~name~ placeholders with dashboard variables.
// Unknown placeholders are left as they are.
func (d Dashboard) ExpandFilter(filter string) string {
	if len(d.Variables) == 0 || !strings.Contains(filter, "~") {
		return filter
	}
	for name, value := range d.Variables {
		filter = strings.ReplaceAll(filter, "~"+name+"~", value)
	}
	return filter
}

// Selector returns what element i watches in Icinga, with dashboard
// variables applied. Non-monitoring elements yield an idle selector.
func (d Dashboard) Selector(i int) icinga.Selector {
	if i < 0 || i >= len(d.Elements) {
		return icinga.Selector{}
	}
	el := d.Elements[i]
	if !el.Type.Monitored() {
		return icinga.Selector{}
	}
	sel := el.Options.Selector()
	sel.Filter = d.ExpandFilter(sel.Filter)
	return sel
}

// Selectors returns the distinct non-idle selectors used by the document.
func (d Dashboard) Selectors() []icinga.Selector {
	seen := make(map[string]bool)
	var out []icinga.Selector
	for i := range d.Elements {
		sel := d.Selector(i)
		if sel.Idle() || seen[sel.Key()] {
			continue
		}
		seen[sel.Key()] = true
		out = append(out, sel)
	}
	return out
}

// Sounds is a set of alert sound references, one per state.
type Sounds struct {
	OK       string
	Warning  string
	Critical string
	Unknown  string
	Up       string
	Down     string
}

// For returns the sound configured for state s.
func (s Sounds) For(state icinga.State) string {
	switch state {
	case icinga.StateOK:
		return s.OK
	case icinga.StateWarning:
		return s.Warning
	case icinga.StateCritical:
		return s.Critical
	case icinga.StateUnknown:
		return s.Unknown
	case icinga.StateUp:
		return s.Up
	case icinga.StateDown:
		return s.Down
	}
	return ""
}
