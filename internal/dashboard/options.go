package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tonhe/meerkat/internal/icinga"
)

// Options is the type-specific configuration bag of an element. Values are
// whatever the JSON or TOML decoder produced, so accessors are lenient.
type Options map[string]any

// UpdateOptions returns current with patch shallowly merged over it. Keys
// in patch win; a nil value in patch removes the key. Neither argument is
// modified.
func UpdateOptions(current, patch Options) Options {
	out := make(Options, len(current)+len(patch))
	for k, v := range current {
		out[k] = cloneValue(v)
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Clone returns a deep copy of o.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Options:
		return t.Clone()
	case map[string]any:
		return map[string]any(Options(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = cloneValue(x)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, x := range t {
			out[k] = x
		}
		return out
	default:
		return v
	}
}

// String returns the value under key as a string.
func (o Options) String(key string) string {
	switch v := o[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the value under key as a number, parsing strings such as
// "22" that older dashboards store.
func (o Options) Float(key string, def float64) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return def
		}
		return f
	}
	return def
}

// Bool returns the value under key as a boolean.
func (o Options) Bool(key string) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Selector extracts the Icinga object selection of a monitoring element.
func (o Options) Selector() icinga.Selector {
	return icinga.Selector{
		Type:   icinga.ObjectType(o.String("objectType")),
		Name:   o.String("objectName"),
		Filter: o.String("filter"),
	}
}

// Sounds returns the per-element alert sound overrides.
func (o Options) Sounds() Sounds {
	return Sounds{
		OK:       o.String("okSound"),
		Warning:  o.String("warningSound"),
		Critical: o.String("criticalSound"),
		Unknown:  o.String("unknownSound"),
		Up:       o.String("upSound"),
		Down:     o.String("downSound"),
	}
}

// MuteAlerts reports whether the element silences its own alerts.
func (o Options) MuteAlerts() bool {
	return o.Bool("muteAlerts")
}
