package icinga

import (
	"regexp"
	"strconv"
	"strings"
)

// PluginOutputSelection selects the plugin output instead of a performance
// data label in a CheckData request.
const PluginOutputSelection = "pluginOutput"

// ParsePerformance splits Icinga performance data entries such as
// "'load1'=0.52;1;2;0" into label and value. Thresholds are discarded.
func ParsePerformance(entries []string) map[string]string {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		for _, field := range strings.Fields(entry) {
			label, rest, ok := strings.Cut(field, "=")
			if !ok {
				continue
			}
			label = strings.Trim(label, "'")
			value, _, _ := strings.Cut(rest, ";")
			out[label] = value
		}
	}
	return out
}

var nonNumeric = regexp.MustCompile(`[^\d.-]`)

// CheckData picks the value an element shows instead of the bare state.
//
// With selection PluginOutputSelection the plugin output is used; a pattern
// extracts its last capture group (or whole match), falling back to def
// when nothing matches. Any other non-empty selection names a performance
// data label whose numeric part is returned. An empty result means "show
// the check state".
func CheckData(res CheckResult, selection, pattern, def string) string {
	value := def
	switch {
	case selection == PluginOutputSelection && res.Output != "":
		if pattern != "" {
			re, err := regexp.Compile("(?im)" + pattern)
			if err != nil {
				return value
			}
			if m := re.FindStringSubmatch(res.Output); m != nil {
				value = m[len(m)-1]
			}
		} else if def == "" {
			value = res.Output
		}
	case selection != "":
		perf := ParsePerformance(res.PerformanceData)
		if raw, ok := perf[selection]; ok && raw != "" {
			n, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(raw, ""), 64)
			if err == nil {
				value = strconv.FormatFloat(n, 'f', -1, 64)
			}
		}
	}
	return value
}
