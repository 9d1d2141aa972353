package styles

import "github.com/charmbracelet/lipgloss"

func base16(name string, c [16]string) Theme {
	return Theme{
		Name:   name,
		Base00: lipgloss.Color(c[0]),
		Base01: lipgloss.Color(c[1]),
		Base02: lipgloss.Color(c[2]),
		Base03: lipgloss.Color(c[3]),
		Base04: lipgloss.Color(c[4]),
		Base05: lipgloss.Color(c[5]),
		Base06: lipgloss.Color(c[6]),
		Base07: lipgloss.Color(c[7]),
		Base08: lipgloss.Color(c[8]),
		Base09: lipgloss.Color(c[9]),
		Base0A: lipgloss.Color(c[10]),
		Base0B: lipgloss.Color(c[11]),
		Base0C: lipgloss.Color(c[12]),
		Base0D: lipgloss.Color(c[13]),
		Base0E: lipgloss.Color(c[14]),
		Base0F: lipgloss.Color(c[15]),
	}
}

// Themes maps theme slugs to Base16 palettes.
var Themes = map[string]Theme{
	"solarized-dark": base16("Solarized Dark", [16]string{
		"#002b36", "#073642", "#586e75", "#657b83", "#839496", "#93a1a1", "#eee8d5", "#fdf6e3",
		"#dc322f", "#cb4b16", "#b58900", "#859900", "#2aa198", "#268bd2", "#6c71c4", "#d33682"}),
	"solarized-light": base16("Solarized Light", [16]string{
		"#fdf6e3", "#eee8d5", "#93a1a1", "#839496", "#657b83", "#586e75", "#073642", "#002b36",
		"#dc322f", "#cb4b16", "#b58900", "#859900", "#2aa198", "#268bd2", "#6c71c4", "#d33682"}),
	"dracula": base16("Dracula", [16]string{
		"#282936", "#3a3c4e", "#4d4f68", "#626483", "#62d6e8", "#e9e9f4", "#f1f2f8", "#f7f7fb",
		"#ea51b2", "#b45bcf", "#00f769", "#ebff87", "#a1efe4", "#62d6e8", "#b45bcf", "#00f769"}),
	"monokai": base16("Monokai", [16]string{
		"#272822", "#383830", "#49483e", "#75715e", "#a59f85", "#f8f8f2", "#f5f4f1", "#f9f8f5",
		"#f92672", "#fd971f", "#f4bf75", "#a6e22e", "#a1efe4", "#66d9ef", "#ae81ff", "#cc6633"}),
	"nord": base16("Nord", [16]string{
		"#2e3440", "#3b4252", "#434c5e", "#4c566a", "#d8dee9", "#e5e9f0", "#eceff4", "#8fbcbb",
		"#bf616a", "#d08770", "#ebcb8b", "#a3be8c", "#88c0d0", "#81a1c1", "#b48ead", "#5e81ac"}),
	"gruvbox-dark": base16("Gruvbox Dark", [16]string{
		"#282828", "#3c3836", "#504945", "#665c54", "#bdae93", "#d5c4a1", "#ebdbb2", "#fbf1c7",
		"#fb4934", "#fe8019", "#fabd2f", "#b8bb26", "#8ec07c", "#83a598", "#d3869b", "#d65d0e"}),
	"gruvbox-light": base16("Gruvbox Light", [16]string{
		"#fbf1c7", "#ebdbb2", "#d5c4a1", "#bdae93", "#665c54", "#504945", "#3c3836", "#282828",
		"#9d0006", "#af3a03", "#b57614", "#79740e", "#427b58", "#076678", "#8f3f71", "#d65d0e"}),
	"tomorrow-night": base16("Tomorrow Night", [16]string{
		"#1d1f21", "#282a2e", "#373b41", "#969896", "#b4b7b4", "#c5c8c6", "#e0e0e0", "#ffffff",
		"#cc6666", "#de935f", "#f0c674", "#b5bd68", "#8abeb7", "#81a2be", "#b294bb", "#a3685a"}),
	"tomorrow": base16("Tomorrow", [16]string{
		"#ffffff", "#e0e0e0", "#d6d6d6", "#8e908c", "#969896", "#4d4d4c", "#282a2e", "#1d1f21",
		"#c82829", "#f5871f", "#eab700", "#718c00", "#3e999f", "#4271ae", "#8959a8", "#a3685a"}),
	"onedark": base16("One Dark", [16]string{
		"#282c34", "#353b45", "#3e4451", "#545862", "#565c64", "#abb2bf", "#b6bdca", "#c8ccd4",
		"#e06c75", "#d19a66", "#e5c07b", "#98c379", "#56b6c2", "#61afef", "#c678dd", "#be5046"}),
	"ocean": base16("Ocean", [16]string{
		"#2b303b", "#343d46", "#4f5b66", "#65737e", "#a7adba", "#c0c5ce", "#dfe1e8", "#eff1f5",
		"#bf616a", "#d08770", "#ebcb8b", "#a3be8c", "#96b5b4", "#8fa1b3", "#b48ead", "#ab7967"}),
	"eighties": base16("Eighties", [16]string{
		"#2d2d2d", "#393939", "#515151", "#747369", "#a09f93", "#d3d0c8", "#e8e6df", "#f2f0ec",
		"#f2777a", "#f99157", "#ffcc66", "#99cc99", "#66cccc", "#6699cc", "#cc99cc", "#d27b53"}),
	"material": base16("Material", [16]string{
		"#263238", "#2e3c43", "#314549", "#546e7a", "#b2ccd6", "#eeffff", "#eeffff", "#ffffff",
		"#f07178", "#f78c6c", "#ffcb6b", "#c3e88d", "#89ddff", "#82aaff", "#c792ea", "#ff5370"}),
	"material-darker": base16("Material Darker", [16]string{
		"#212121", "#303030", "#353535", "#4a4a4a", "#b2ccd6", "#eeffff", "#eeffff", "#ffffff",
		"#f07178", "#f78c6c", "#ffcb6b", "#c3e88d", "#89ddff", "#82aaff", "#c792ea", "#ff5370"}),
	"tokyo-night": base16("Tokyo Night", [16]string{
		"#1a1b26", "#16161e", "#2f3549", "#444b6a", "#787c99", "#a9b1d6", "#cbccd1", "#d5d6db",
		"#c0caf5", "#a9b1d6", "#0db9d7", "#9ece6a", "#b4f9f8", "#2ac3de", "#bb9af7", "#f7768e"}),
	"catppuccin-mocha": base16("Catppuccin Mocha", [16]string{
		"#1e1e2e", "#181825", "#313244", "#45475a", "#585b70", "#cdd6f4", "#f5e0dc", "#b4befe",
		"#f38ba8", "#fab387", "#f9e2af", "#a6e3a1", "#94e2d5", "#89b4fa", "#cba6f7", "#f2cdcd"}),
	"everforest": base16("Everforest", [16]string{
		"#2f383e", "#374247", "#4a555b", "#859289", "#9da9a0", "#d3c6aa", "#e4e1cd", "#fdf6e3",
		"#7fbbb3", "#d699b6", "#dbbc7f", "#83c092", "#e69875", "#a7c080", "#e67e80", "#eaedc8"}),
	"github": base16("GitHub", [16]string{
		"#ffffff", "#f5f5f5", "#c8c8fa", "#969896", "#e8e8e8", "#333333", "#ffffff", "#ffffff",
		"#ed6a43", "#0086b3", "#795da3", "#183691", "#183691", "#795da3", "#a71d5d", "#333333"}),
	"zenburn": base16("Zenburn", [16]string{
		"#383838", "#404040", "#606060", "#6f6f6f", "#808080", "#dcdccc", "#c0c0c0", "#ffffff",
		"#dca3a3", "#dfaf8f", "#e0cf9f", "#5f7f5f", "#93e0e3", "#7cb8bb", "#dc8cc3", "#000000"}),
	"twilight": base16("Twilight", [16]string{
		"#1e1e1e", "#323537", "#464b50", "#5f5a60", "#838184", "#a7a7a7", "#c3c3c3", "#ffffff",
		"#cf6a4c", "#cda869", "#f9ee98", "#8f9d6a", "#afc4db", "#7587a6", "#9b859d", "#9b703f"}),
	"mocha": base16("Mocha", [16]string{
		"#3b3228", "#534636", "#645240", "#7e705a", "#b8afad", "#d0c8c6", "#e9e1dd", "#f5eeeb",
		"#cb6077", "#d28b71", "#f4bc87", "#beb55b", "#7bbda4", "#8ab3b5", "#a89bb9", "#bb9584"}),
	"rose-pine": base16("Rosé Pine", [16]string{
		"#191724", "#1f1d2e", "#26233a", "#6e6a86", "#908caa", "#e0def4", "#e0def4", "#524f67",
		"#eb6f92", "#f6c177", "#ebbcba", "#31748f", "#9ccfd8", "#c4a7e7", "#f6c177", "#524f67"}),
	"kanagawa": base16("Kanagawa", [16]string{
		"#1f1f28", "#16161d", "#223249", "#54546d", "#727169", "#dcd7ba", "#c8c093", "#717c7c",
		"#c34043", "#ffa066", "#c0a36e", "#76946a", "#6a9589", "#7e9cd8", "#957fb8", "#d27e99"}),
}
