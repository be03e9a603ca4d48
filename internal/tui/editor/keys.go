package editor

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	open       key.Binding
	save       key.Binding
	toggleMode key.Binding
	newDoc     key.Binding
	copyHTML   key.Binding
	quit       key.Binding
	help       key.Binding
}

type promptKeyMap struct {
	confirm key.Binding
	decline key.Binding
	cancel  key.Binding
	submit  key.Binding
}

func newKeyMap() *keyMap {
	return &keyMap{
		open: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("^o", "open"),
		),
		save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("^s", "save"),
		),
		toggleMode: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("^e", "edit/render"),
		),
		newDoc: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("^n", "new"),
		),
		copyHTML: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("^y", "copy html"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("^q", "quit"),
		),
		help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
	}
}

func newPromptKeyMap() *promptKeyMap {
	return &promptKeyMap{
		confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		decline: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "no"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "submit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.open, k.save, k.toggleMode, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.open, k.save, k.newDoc},
		{k.toggleMode, k.copyHTML},
		{k.help, k.quit},
	}
}
