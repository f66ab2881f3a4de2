package app

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"
)

// Raw key strings checked outside of bindings.
const (
	KeyCtrlC   = "ctrl+c"
	KeyConfirm = "y"
	KeyEnter   = "enter"
	KeyEsc     = "esc"
	KeyTab     = "tab"
)

// keyMap holds the bindings for the call view. Help text follows the UI
// language, so the map is rebuilt on every language toggle.
type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Focus    key.Binding
	Back     key.Binding
	Map      key.Binding
	History  key.Binding
	NewCall  key.Binding
	Language key.Binding
	Send     key.Binding
	Jump     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap(lang script.Locale) keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "n"),
			key.WithHelp("→/n", tr(lang, "key.next")),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "p"),
			key.WithHelp("←/p", tr(lang, "key.prev")),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", tr(lang, "key.move")),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", tr(lang, "key.move")),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", tr(lang, "key.toggle")),
		),
		Focus: key.NewBinding(
			key.WithKeys(KeyTab),
			key.WithHelp("tab", tr(lang, "key.focus")),
		),
		Back: key.NewBinding(
			key.WithKeys(KeyEsc),
			key.WithHelp("esc", tr(lang, "key.back")),
		),
		Map: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", tr(lang, "key.map")),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", tr(lang, "key.history")),
		),
		NewCall: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", tr(lang, "key.newCall")),
		),
		Language: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", tr(lang, "key.language")),
		),
		Send: key.NewBinding(
			key.WithKeys(KeyEnter),
			key.WithHelp("enter", tr(lang, "key.send")),
		),
		Jump: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", KeyEnter),
			key.WithHelp("1-9", tr(lang, "key.jump")),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", tr(lang, "key.help")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", KeyCtrlC),
			key.WithHelp("q", tr(lang, "key.quit")),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Toggle, k.Focus, k.NewCall, k.Language, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Up, k.Down, k.Toggle},
		{k.Focus, k.Back, k.Send},
		{k.Map, k.Jump, k.History},
		{k.NewCall, k.Language, k.Help, k.Quit},
	}
}
