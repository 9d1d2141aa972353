package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Enter     key.Binding
	Escape    key.Binding
	Quit      key.Binding
	Tab       key.Binding
	ShiftTab  key.Binding
	Help      key.Binding
	Dashboard key.Binding
	Edit      key.Binding
	New       key.Binding
	Settings  key.Binding
	Refresh   key.Binding
	Mute      key.Binding

	// Editor
	Save      key.Binding
	Add       key.Binding
	Delete    key.Binding
	Duplicate key.Binding
	CycleType key.Binding
	Raise     key.Binding
	Lower     key.Binding
	Grow      key.Binding
	Shrink    key.Binding
	RotateCW  key.Binding
	RotateCCW key.Binding
	Fields    key.Binding
	Document  key.Binding
}

// DefaultKeyMap provides the default set of key bindings.
var DefaultKeyMap = KeyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("left/h", "left")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("right/l", "right")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	ShiftTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Dashboard: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboards")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Settings:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Mute:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),

	Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add element")),
	Delete:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
	Duplicate: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "duplicate")),
	CycleType: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "change type")),
	Raise:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "bring forward")),
	Lower:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "send back")),
	Grow:      key.NewBinding(key.WithKeys("shift+right", "shift+down"), key.WithHelp("shift+arrows", "resize")),
	Shrink:    key.NewBinding(key.WithKeys("shift+left", "shift+up"), key.WithHelp("shift+arrows", "resize")),
	RotateCW:  key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "rotate")),
	RotateCCW: key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "rotate back")),
	Fields:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "element options")),
	Document:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "dashboard options")),
}
