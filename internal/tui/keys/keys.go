package keys

import "github.com/charmbracelet/bubbles/key"

// MonitorKeys are the bindings of the monitor TUI. Normal mode bindings act
// on the log and the port; insert mode ones edit and send the input line.
type MonitorKeys struct {
	Quit       key.Binding
	Help       key.Binding
	InsertMode key.Binding
	Escape     key.Binding

	Clear       key.Binding
	ToggleHex   key.Binding
	ToggleASCII key.Binding
	Flush       key.Binding
	ToggleRTS   key.Binding
	ToggleDTR   key.Binding

	Enter          key.Binding
	ToggleSendMode key.Binding
	Up             key.Binding
	Down           key.Binding
}

func NewMonitorKeys() MonitorKeys {
	return MonitorKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		InsertMode: key.NewBinding(
			key.WithKeys("i", "I"),
			key.WithHelp("i", "insert mode"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "normal mode"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear log"),
		),
		ToggleHex: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle hex"),
		),
		ToggleASCII: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle ascii"),
		),
		Flush: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "flush port"),
		),
		ToggleRTS: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "toggle RTS"),
		),
		ToggleDTR: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle DTR"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		ToggleSendMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "ascii/hex"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
	}
}

func (k MonitorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.InsertMode, k.Clear, k.Quit}
}

func (k MonitorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InsertMode, k.Escape, k.Enter, k.ToggleSendMode},
		{k.Clear, k.ToggleHex, k.ToggleASCII},
		{k.Flush, k.ToggleRTS, k.ToggleDTR},
		{k.Up, k.Down, k.Help, k.Quit},
	}
}
