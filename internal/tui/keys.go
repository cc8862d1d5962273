package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next    key.Binding
	Action  key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Pick    key.Binding
	Restart key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Next:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next")),
	Action:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "act")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "right")),
	Pick:    key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "pick")),
	Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "play again")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

// helpLine renders the bindings as "key action · key action".
func helpLine(bindings ...key.Binding) string {
	var out string
	for i, b := range bindings {
		if i > 0 {
			out += " · "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
