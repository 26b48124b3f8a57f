package search

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit   key.Binding
	Focus    key.Binding
	Engine   key.Binding
	Time     key.Binding
	FileType key.Binding
	Exact    key.Binding
	Reset    key.Binding
	Remove   key.Binding
	Clear    key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding

	// Active only while the history list has focus.
	VimUp     key.Binding
	VimDown   key.Binding
	VimRemove key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		Focus:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "history")),
		Engine:    key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("^E", "engine")),
		Time:      key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("^T", "time")),
		FileType:  key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("^F", "type")),
		Exact:     key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("^X", "exact")),
		Reset:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^R", "reset")),
		Remove:    key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("^D", "remove")),
		Clear:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("^L", "clear history")),
		Up:        key.NewBinding(key.WithKeys("up")),
		Down:      key.NewBinding(key.WithKeys("down")),
		Quit:      key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
		VimUp:     key.NewBinding(key.WithKeys("k")),
		VimDown:   key.NewBinding(key.WithKeys("j")),
		VimRemove: key.NewBinding(key.WithKeys("x")),
	}
}
