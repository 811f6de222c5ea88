package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rapidmidiex/solfege/accidental"
)

const (
	// Width of one grid cell, borders included.
	CellWidth = 11
	// Height of one grid cell, borders included.
	CellHeight = 4
)

// https://github.com/inngest/inngest/blob/main/pkg/cli/styles.go
var (
	Color    = lipgloss.AdaptiveColor{Light: "#111222", Dark: "#FAFAFA"}
	Primary  = lipgloss.Color("#4636f5")
	Red      = lipgloss.Color("#ff0000")
	White    = lipgloss.Color("#ffffff")
	Black    = lipgloss.Color("#000000")
	DarkRed  = lipgloss.Color("#990000")
	DarkBlue = lipgloss.Color("#000099")
	Idle     = lipgloss.Color("240")

	TextStyle = lipgloss.NewStyle().Foreground(Color)
	BoldStyle = TextStyle.Copy().Bold(true)

	// Grid cells. Content is two lines: label and key hint.
	CellStyle = lipgloss.NewStyle().
			Width(CellWidth-2).
			Height(CellHeight-2).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Idle)
	ActiveCellStyle = CellStyle.Copy().
			Border(lipgloss.ThickBorder()).
			BorderForeground(White).
			Bold(true)

	// Status Bar.
	StatusNugget = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Padding(0, 1)
	PingStyle = StatusNugget.Copy().
			Background(lipgloss.Color("#e783f2")).
			Align(lipgloss.Right)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#343433", Dark: "#C1C6B2"}).
			Background(lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#353533"})

	StatusStyle = lipgloss.NewStyle().
			Inherit(StatusBarStyle).
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#FF5F87")).
			Padding(0, 1).
			MarginRight(1)

	StatusText = lipgloss.NewStyle().Inherit(StatusBarStyle)

	// Lobby
	BaseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(Idle)
	MessageText = lipgloss.NewStyle().Foreground(Idle)

	HelpMenu = lipgloss.NewStyle().Align(lipgloss.Center).PaddingTop(1)
	// Page
	DocStyle = lipgloss.NewStyle().Padding(1, 2, 1, 2)
)

// Cell returns the style for a note button with the given background. The
// label is tinted by the spelling of its letter name.
func Cell(bg string, spelling accidental.Offset, active bool) lipgloss.Style {
	s := CellStyle
	if active {
		s = ActiveCellStyle
	}
	return s.Copy().Background(lipgloss.Color(bg)).Foreground(labelColor(spelling))
}

// Pad returns the style for the sharp and flat pads.
func Pad(active bool) lipgloss.Style {
	if active {
		return ActiveCellStyle.Copy().Background(Primary).Foreground(White)
	}
	return CellStyle.Copy().Foreground(Color)
}

func labelColor(spelling accidental.Offset) lipgloss.TerminalColor {
	switch spelling {
	case accidental.Sharp:
		return DarkRed
	case accidental.Flat:
		return DarkBlue
	}
	return White
}

// RenderError returns a formatted error string.
func RenderError(msg string) string {
	// Error applies styles to an error message
	err := lipgloss.NewStyle().Background(Red).Foreground(White).Bold(true).Padding(0, 1).Render("Error")
	content := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render(msg)
	return err + content
}
