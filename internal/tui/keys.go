package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up      key.Binding
	down    key.Binding
	sync    key.Binding
	retry   key.Binding
	cleanup key.Binding
	copy    key.Binding
	quit    key.Binding
}

var keys = keyMap{
	up:      key.NewBinding(key.WithKeys("up", "k")),
	down:    key.NewBinding(key.WithKeys("down", "j")),
	sync:    key.NewBinding(key.WithKeys("s")),
	retry:   key.NewBinding(key.WithKeys("r")),
	cleanup: key.NewBinding(key.WithKeys("c")),
	copy:    key.NewBinding(key.WithKeys("y")),
	quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
}
