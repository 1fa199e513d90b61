package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next         key.Binding
	Prev         key.Binding
	Submit       key.Binding
	Up           key.Binding
	Down         key.Binding
	Delete       key.Binding
	Dismiss      key.Binding
	SignOut      key.Binding
	ToggleSignUp key.Binding
	Forgot       key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:         key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:         key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Submit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Delete:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "done")),
		Dismiss:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		SignOut:      key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "sign out")),
		ToggleSignUp: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "sign in/sign up")),
		Forgot:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "forgot password")),
		Quit:         key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp はTodo画面のヘルプです。
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Up, k.Down, k.Delete, k.SignOut, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Dismiss}}
}

// authKeys はサインイン画面のヘルプです。
type authKeys struct{ keyMap }

func (k authKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.ToggleSignUp, k.Forgot, k.Quit}
}

func (k authKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
