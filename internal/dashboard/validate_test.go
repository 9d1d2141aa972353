package dashboard

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	if err := Validate(sample()); err != nil {
		t.Errorf("sample should validate, got %v", err)
	}

	tests := []struct {
		name string
		edit func(*Dashboard)
		want string
	}{
		{"missing title", func(d *Dashboard) { d.Title = "" }, "Title"},
		{"unknown type", func(d *Dashboard) { d.Elements[1].Type = "marquee" }, "elementtype"},
		{"rect off canvas", func(d *Dashboard) { d.Elements[0].Rect.X = 120 }, "lte"},
		{"negative size", func(d *Dashboard) { d.Elements[2].Rect.W = -1 }, "gte"},
	}
	for _, tt := range tests {
		d := sample()
		tt.edit(&d)
		err := Validate(d)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.want)
		}
	}
}
