package styles

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultThemeName is the theme used when none is configured or the
// configured one is unknown.
const DefaultThemeName = "solarized-dark"

// Theme is a Base16 palette. Status tiles draw from the accent slots
// (08 red through 0E magenta); chrome uses the greys 00 through 07.
type Theme struct {
	Slug   string
	Name   string
	Base00 lipgloss.Color // background
	Base01 lipgloss.Color
	Base02 lipgloss.Color // selection
	Base03 lipgloss.Color // dim
	Base04 lipgloss.Color
	Base05 lipgloss.Color // foreground
	Base06 lipgloss.Color
	Base07 lipgloss.Color
	Base08 lipgloss.Color // critical, down
	Base09 lipgloss.Color // acknowledged warning
	Base0A lipgloss.Color // warning
	Base0B lipgloss.Color // ok, up
	Base0C lipgloss.Color
	Base0D lipgloss.Color // accent
	Base0E lipgloss.Color // unknown
	Base0F lipgloss.Color // acknowledged critical
}

var (
	// DefaultTheme is the palette for DefaultThemeName.
	DefaultTheme Theme
	themeNames   []string
)

func init() {
	themeNames = make([]string, 0, len(Themes))
	for slug, t := range Themes {
		t.Slug = slug
		Themes[slug] = t
		themeNames = append(themeNames, slug)
	}
	sort.Strings(themeNames)
	DefaultTheme = Themes[DefaultThemeName]
}

// normalizeTheme lets "Solarized Dark" and "solarized_dark" name the
// solarized-dark theme.
func normalizeTheme(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(name)
}

// Lookup returns the theme called name.
func Lookup(name string) (Theme, bool) {
	t, ok := Themes[normalizeTheme(name)]
	return t, ok
}

// Resolve is Lookup falling back to DefaultTheme.
func Resolve(name string) Theme {
	if t, ok := Lookup(name); ok {
		return t
	}
	return DefaultTheme
}

// Names returns the theme slugs in sorted order.
func Names() []string {
	return append([]string(nil), themeNames...)
}

// IndexOf returns the position of name in Names, or -1.
func IndexOf(name string) int {
	slug := normalizeTheme(name)
	i := sort.SearchStrings(themeNames, slug)
	if i < len(themeNames) && themeNames[i] == slug {
		return i
	}
	return -1
}

// At returns the theme at position i of Names, wrapping in both
// directions so callers can cycle with i+1 and i-1.
func At(i int) Theme {
	n := len(themeNames)
	return Themes[themeNames[((i%n)+n)%n]]
}
