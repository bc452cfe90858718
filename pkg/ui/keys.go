package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the console key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding // collapse or go to parent
	Right    key.Binding // expand or enter first child
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	Toggle      key.Binding
	Activate    key.Binding
	ContextMenu key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Search      key.Binding
	NextMatch   key.Binding

	ModeInfrastructure key.Binding
	ModeObjects        key.Binding
	ModeOrganization   key.Binding
	ModePicker         key.Binding

	Focus  key.Binding
	Copy   key.Binding
	Reload key.Binding
	Help   key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Left:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "collapse")),
	Right:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "expand")),
	PageUp:   key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("C-u", "page up")),
	PageDown: key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("C-d", "page down")),
	Home:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	End:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),

	Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	Activate:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	ContextMenu: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
	ExpandAll:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "expand all")),
	CollapseAll: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "collapse all")),
	Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "jump to")),
	NextMatch:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),

	ModeInfrastructure: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "infrastructure")),
	ModeObjects:        key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "objects")),
	ModeOrganization:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "organization")),
	ModePicker:         key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "views")),

	Focus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
	Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy ref")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rebuild")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
