package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	submit    key.Binding
	focus     key.Binding
	back      key.Binding
	excellent key.Binding
	mediocre  key.Binding
	terrible  key.Binding
	signIn    key.Binding
	signOut   key.Binding
	quit      key.Binding
	forceQuit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "get recommendations")),
		focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "rate results")),
		back:      key.NewBinding(key.WithKeys("esc", "tab"), key.WithHelp("esc", "edit query")),
		excellent: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "excellent")),
		mediocre:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "mediocre")),
		terrible:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "terrible")),
		// ctrl+s is XOFF under terminal flow control.
		signIn:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "sign in")),
		signOut:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "sign out")),
		quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		forceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.forceQuit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.submit, k.focus, k.back},
		{k.excellent, k.mediocre, k.terrible},
		{k.signIn, k.signOut, k.quit, k.forceQuit},
	}
}
