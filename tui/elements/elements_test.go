package elements

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/tui/styles"
)

func testContext(w, h int) Context {
	return Context{
		Theme:  styles.Themes["solarized-dark"],
		Width:  w,
		Height: h,
		Now:    time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC),
	}
}

func element(t dashboard.ElementType) dashboard.Element {
	return dashboard.Element{Type: t, Title: "web01", Rect: dashboard.DefaultRect, Options: dashboard.DefaultOptions(t)}
}

func TestEveryTypeHasRenderer(t *testing.T) {
	for _, typ := range dashboard.ElementTypes() {
		r, ok := Lookup(typ)
		if !ok {
			t.Errorf("no renderer for %s", typ)
			continue
		}
		if len(r.Fields()) == 0 {
			t.Errorf("%s has no editor fields", typ)
		}
	}
	if len(registry) != len(dashboard.ElementTypes()) {
		t.Errorf("registry has %d renderers for %d types", len(registry), len(dashboard.ElementTypes()))
	}
}

func TestRenderFillsTile(t *testing.T) {
	for _, typ := range dashboard.ElementTypes() {
		for _, size := range [][2]int{{1, 1}, {12, 5}, {30, 2}} {
			tile := Render(element(typ), testContext(size[0], size[1]))
			if len(tile.Lines) != size[1] {
				t.Errorf("%s %v: %d lines, want %d", typ, size, len(tile.Lines), size[1])
				continue
			}
			for _, l := range tile.Lines {
				if n := len([]rune(l)); n != size[0] {
					t.Errorf("%s %v: line %q is %d cells, want %d", typ, size, l, n, size[0])
				}
			}
		}
	}
}

func TestRenderUnknownType(t *testing.T) {
	tile := Render(dashboard.Element{Type: "marquee"}, testContext(10, 3))
	if len(tile.Lines) != 0 {
		t.Errorf("expected empty tile, got %q", tile.Lines)
	}
	if Fields("marquee") != nil {
		t.Error("expected no fields for unknown type")
	}
}

func TestCardShowsState(t *testing.T) {
	ctx := testContext(20, 3)
	ctx.State = icinga.StateCritical
	ctx.Acknowledged = true
	tile := Render(element(dashboard.CheckCard), ctx)
	body := strings.Join(tile.Lines, "\n")
	if !strings.Contains(body, "CRITICAL (ACK)") {
		t.Errorf("expected acknowledged critical label, got %q", body)
	}
	if got := tile.Style.GetBackground(); got != ctx.Theme.Base0F {
		t.Errorf("background = %v, want acknowledged critical colour", got)
	}
}

func TestCardUnconfigured(t *testing.T) {
	tile := Render(element(dashboard.CheckCard), testContext(20, 3))
	if !strings.Contains(strings.Join(tile.Lines, ""), "UNCONFIGURED") {
		t.Errorf("expected unconfigured label, got %q", tile.Lines)
	}
}

func TestCardCheckData(t *testing.T) {
	el := element(dashboard.CheckCard)
	el.Options = dashboard.UpdateOptions(el.Options, dashboard.Options{
		"checkDataSelection": icinga.PluginOutputSelection,
		"checkDataPattern":   `load average: ([\d.]+)`,
	})
	worst := icinga.Object{Name: "web01", Attrs: icinga.Attributes{
		LastCheckResult: icinga.CheckResult{Output: "OK - load average: 0.42, 0.30"},
	}}
	ctx := testContext(20, 3)
	ctx.State = icinga.StateOK
	ctx.Result = icinga.Result{State: icinga.StateOK, Worst: &worst}

	tile := Render(el, ctx)
	if !strings.Contains(strings.Join(tile.Lines, ""), "0.42") {
		t.Errorf("expected extracted check data, got %q", tile.Lines)
	}
}

func TestOrientationOf(t *testing.T) {
	tests := []struct {
		rad  float64
		want Orientation
	}{
		{0, Horizontal},
		{math.Pi, Horizontal},
		{math.Pi / 4, Falling},
		{math.Pi / 2, Vertical},
		{-math.Pi / 2, Vertical},
		{3 * math.Pi / 4, Rising},
		{-math.Pi / 4, Rising},
		{0.1, Horizontal},
	}
	for _, tt := range tests {
		if got := OrientationOf(tt.rad); got != tt.want {
			t.Errorf("OrientationOf(%v) = %d, want %d", tt.rad, got, tt.want)
		}
	}
}

func TestLineArrows(t *testing.T) {
	el := element(dashboard.CheckLine)
	el.Options["leftArrow"] = true
	tile := Render(el, testContext(8, 3))
	if tile.Lines[1] != "◀━━━━━━▶" {
		t.Errorf("horizontal line = %q", tile.Lines[1])
	}

	el.Rotation = math.Pi / 2
	tile = Render(el, testContext(3, 4))
	col := ""
	for _, l := range tile.Lines {
		col += string([]rune(l)[1])
	}
	if col != "▲┃┃▼" {
		t.Errorf("vertical line = %q", col)
	}
}

func TestDynamicTextAttribute(t *testing.T) {
	el := element(dashboard.DynamicText)
	el.Options["dynamicText"] = "display_name"
	worst := icinga.Object{Name: "web01", Attrs: icinga.Attributes{DisplayName: "Web Frontend"}}
	ctx := testContext(20, 1)
	ctx.State = icinga.StateUp
	ctx.Result = icinga.Result{Worst: &worst}

	tile := Render(el, ctx)
	if strings.TrimSpace(tile.Lines[0]) != "Web Frontend" {
		t.Errorf("got %q", tile.Lines[0])
	}
}

func TestClockTimeZone(t *testing.T) {
	el := element(dashboard.Clock)
	el.Title = ""
	el.Options["timeZone"] = "UTC"
	tile := Render(el, testContext(10, 1))
	if strings.TrimSpace(tile.Lines[0]) != "12:30:45" {
		t.Errorf("got %q", tile.Lines[0])
	}
	el.Options["timeZone"] = "Not/AZone"
	if tile := Render(el, testContext(10, 1)); strings.TrimSpace(tile.Lines[0]) == "" {
		t.Error("unknown zone should fall back to local time")
	}
}

func TestTickerOffset(t *testing.T) {
	base := time.Unix(0, 0)
	period := 10 * time.Second
	if got := TickerOffset(base, period, 10, 10); got != 0 {
		t.Errorf("offset at start = %d", got)
	}
	if got := TickerOffset(base.Add(5*time.Second), period, 10, 10); got != 10 {
		t.Errorf("offset half way = %d, want 10", got)
	}
	if got := TickerOffset(base.Add(10*time.Second), period, 10, 10); got != 0 {
		t.Errorf("offset should wrap, got %d", got)
	}
	if got := TickerOffset(base, 0, 10, 10); got != 0 {
		t.Errorf("zero period = %d", got)
	}
}

func TestFieldPatch(t *testing.T) {
	tests := []struct {
		field   Field
		raw     string
		want    any
		wantErr bool
	}{
		{Field{Key: "fontSize", Label: "Font Size", Kind: FieldNumber}, "32", float64(32), false},
		{Field{Key: "fontSize", Label: "Font Size", Kind: FieldNumber}, "big", nil, true},
		{Field{Key: "muteAlerts", Label: "Mute", Kind: FieldBool}, "true", true, false},
		{Field{Key: "fontColor", Label: "Color", Kind: FieldColor}, "#00ff00", "#00ff00", false},
		{Field{Key: "fontColor", Label: "Color", Kind: FieldColor}, "green", nil, true},
		{Field{Key: "objectType", Label: "Type", Kind: FieldChoice, Choices: []string{"host", "service"}}, "service", "service", false},
		{Field{Key: "objectType", Label: "Type", Kind: FieldChoice, Choices: []string{"host", "service"}}, "zone", nil, true},
		{Field{Key: "text", Label: "Text", Kind: FieldText}, "  hello ", "hello", false},
		{Field{Key: "text", Label: "Text", Kind: FieldText}, "", nil, false},
	}
	for _, tt := range tests {
		patch, err := tt.field.Patch(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Patch(%q) on %s: expected error", tt.raw, tt.field.Key)
			}
			continue
		}
		if err != nil {
			t.Errorf("Patch(%q) on %s: %v", tt.raw, tt.field.Key, err)
			continue
		}
		v, ok := patch[tt.field.Key]
		if !ok || v != tt.want {
			t.Errorf("Patch(%q) on %s = %v, want %v", tt.raw, tt.field.Key, v, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	got := wrap("the quick brown fox", 9)
	want := []string{"the quick", "brown fox"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("wrap = %q, want %q", got, want)
	}
	if got := wrap("abcdefghij", 4); strings.Join(got, "|") != "abcd|efgh|ij" {
		t.Errorf("long word wrap = %q", got)
	}
}
