package dashboard

import (
	"regexp"
	"testing"

	"github.com/tonhe/meerkat/internal/icinga"
)

func TestTitleToSlug(t *testing.T) {
	tests := []struct {
		title, want string
	}{
		{"Home LAN", "home-lan"},
		{"ABC News", "abc-news"},
		{"  Core_Network  ", "core-network"},
		{"Prod: DB (EU)", "prod-db-eu"},
		{"über", "ber"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TitleToSlug(tt.title); got != tt.want {
			t.Errorf("TitleToSlug(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestTitleToSlugIdempotent(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9-]*$`)
	for _, title := range []string{"Home LAN", "a_b c", "!!!", "Mixed-Case_42 x", "\ttabs\t"} {
		once := TitleToSlug(title)
		if TitleToSlug(once) != once {
			t.Errorf("slug of %q not idempotent: %q", title, once)
		}
		if !valid.MatchString(once) {
			t.Errorf("slug %q outside the allowed alphabet", once)
		}
	}
}

func TestElementTypesClosed(t *testing.T) {
	for _, et := range ElementTypes() {
		if !et.Known() {
			t.Errorf("%q listed but not known", et)
		}
		if et.Label() == string(et) {
			t.Errorf("%q has no label", et)
		}
	}
	if ElementType("marquee").Known() {
		t.Error("unexpected type reported as known")
	}
}

func TestSelectorsExpandVariables(t *testing.T) {
	d := Dashboard{
		Variables: map[string]string{"site": "ams"},
		Elements: []Element{
			{Type: CheckCard, Options: Options{"objectType": "host", "filter": `match("~site~-*", host.name)`}},
			{Type: CheckSVG, Options: Options{"objectType": "host", "filter": `match("~site~-*", host.name)`}},
			{Type: StaticText, Options: Options{"objectType": "host", "objectName": "ignored"}},
			{Type: CheckLine, Options: Options{"objectType": "service"}},
			{Type: DynamicText, Options: Options{"objectType": "service", "objectName": "db01!pgsql"}},
		},
	}
	sels := d.Selectors()
	if len(sels) != 2 {
		t.Fatalf("expected 2 distinct selectors, got %+v", sels)
	}
	if sels[0].Filter != `match("ams-*", host.name)` {
		t.Errorf("variable not expanded: %q", sels[0].Filter)
	}
	if sels[1] != (icinga.Selector{Type: icinga.Service, Name: "db01!pgsql"}) {
		t.Errorf("unexpected second selector %+v", sels[1])
	}
	if !d.Selector(2).Idle() || !d.Selector(9).Idle() {
		t.Error("static and missing elements should have idle selectors")
	}
}

func TestExpandFilterLeavesUnknown(t *testing.T) {
	d := Dashboard{Variables: map[string]string{"a": "1"}}
	if got := d.ExpandFilter("~a~ ~b~"); got != "1 ~b~" {
		t.Errorf("ExpandFilter() = %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := sample()
	d.Tags = []string{"x"}
	d.Variables = map[string]string{"k": "v"}
	c := d.Clone()
	c.Tags[0] = "y"
	c.Variables["k"] = "w"
	c.Elements[0].Options["objectName"] = "z"
	if d.Tags[0] != "x" || d.Variables["k"] != "v" || d.Elements[0].Options.String("objectName") != "web01" {
		t.Error("Clone shares state with the original")
	}
}

func TestOptionsAccessors(t *testing.T) {
	o := Options{
		"fontSize":   "22",
		"width":      12.5,
		"muteAlerts": true,
		"okSound":    "/ok.mp3",
		"bad":        "abc",
	}
	if o.Float("fontSize", 0) != 22 || o.Float("width", 0) != 12.5 || o.Float("bad", 7) != 7 || o.Float("missing", 3) != 3 {
		t.Error("Float() accessor mismatch")
	}
	if o.String("width") != "12.5" || o.String("missing") != "" {
		t.Error("String() accessor mismatch")
	}
	if !o.MuteAlerts() || o.Sounds().OK != "/ok.mp3" {
		t.Error("alert accessors mismatch")
	}
}
