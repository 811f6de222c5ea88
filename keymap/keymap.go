package keymap

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type Mapping struct {
	Sharp      key.Binding
	Flat       key.Binding
	NextTimbre key.Binding
	PrevTimbre key.Binding
	NextKey    key.Binding
	PrevKey    key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	CycleLabel key.Binding
	Silence    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var DefaultMapping = Mapping{
	Sharp: key.NewBinding(
		key.WithKeys("="),
		key.WithHelp("=", "hold sharp"),
	),
	Flat: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "hold flat"),
	),
	NextTimbre: key.NewBinding(
		key.WithKeys(tea.KeyRight.String()),
		key.WithHelp("→", "next timbre"),
	),
	PrevTimbre: key.NewBinding(
		key.WithKeys(tea.KeyLeft.String()),
		key.WithHelp("←", "prev timbre"),
	),
	NextKey: key.NewBinding(
		key.WithKeys(tea.KeyUp.String()),
		key.WithHelp("↑", "next key"),
	),
	PrevKey: key.NewBinding(
		key.WithKeys(tea.KeyDown.String()),
		key.WithHelp("↓", "prev key"),
	),
	VolumeUp: key.NewBinding(
		key.WithKeys(tea.KeyPgUp.String(), tea.KeyShiftUp.String()),
		key.WithHelp("pgup", "volume up"),
	),
	VolumeDown: key.NewBinding(
		key.WithKeys(tea.KeyPgDown.String(), tea.KeyShiftDown.String()),
		key.WithHelp("pgdn", "volume down"),
	),
	CycleLabel: key.NewBinding(
		key.WithKeys(tea.KeyTab.String()),
		key.WithHelp("tab", "labels"),
	),
	Silence: key.NewBinding(
		key.WithKeys(tea.KeySpace.String()),
		key.WithHelp("space", "silence all"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys(tea.KeyCtrlC.String(), tea.KeyEsc.String()),
		key.WithHelp("esc", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (m Mapping) ShortHelp() []key.Binding {
	return []key.Binding{m.Sharp, m.Flat, m.NextTimbre, m.NextKey, m.Help, m.Quit}
}

// FullHelp implements help.KeyMap.
func (m Mapping) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.Sharp, m.Flat, m.Silence},
		{m.NextTimbre, m.PrevTimbre, m.NextKey, m.PrevKey},
		{m.VolumeUp, m.VolumeDown, m.CycleLabel},
		{m.Help, m.Quit},
	}
}

// LobbyMapping holds the bindings of the jam session list. Moving through the
// list uses the table's own bindings.
type LobbyMapping struct {
	Join    key.Binding
	Create  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

var DefaultLobbyMapping = LobbyMapping{
	Join: key.NewBinding(
		key.WithKeys(tea.KeyEnter.String()),
		key.WithHelp("enter", "join"),
	),
	Create: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new jam"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: DefaultMapping.Quit,
}

func (m LobbyMapping) ShortHelp() []key.Binding {
	return []key.Binding{m.Join, m.Create, m.Refresh, m.Quit}
}

func (m LobbyMapping) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp()}
}
