// Package feed shows what is happening in a jam session: who joined, chat
// messages and the notes other players are sending.
package feed

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rapidmidiex/solfege/jam"
	"github.com/rapidmidiex/solfege/wsmsg"
)

// Reference:
// https://github.com/charmbracelet/bubbletea/blob/master/examples/chat/main.go

// Lines kept in the feed.
const maxLines = 100

type Model struct {
	viewport    viewport.Model
	lines       []string
	selfStyle   lipgloss.Style
	othersStyle lipgloss.Style
	noteStyle   lipgloss.Style
}

func New(width, height int) Model {
	vp := viewport.New(width, height)
	vp.SetContent("Jam session\nWaiting for the server...")

	return Model{
		viewport:    vp,
		lines:       []string{},
		selfStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		othersStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		noteStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case jam.ConnectedMsg:
		m.add(m.selfStyle.Render(fmt.Sprintf("Joined as %s", msg.UserName)))
	case jam.ChatMsg:
		m.add(m.othersStyle.Render(fmt.Sprintf("%s: %s", msg.DisplayName, msg.Body)))
	case jam.NoteMsg:
		m.add(m.noteStyle.Render(fmt.Sprintf("%s %s %d", short(msg.UserID.String()), state(msg.Note.State), msg.Note.Number)))
	case jam.ClosedMsg:
		m.add(m.selfStyle.Render("Session closed"))
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

// Len returns the number of lines in the feed.
func (m Model) Len() int {
	return len(m.lines)
}

func (m *Model) add(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func state(s wsmsg.NoteState) string {
	if s == wsmsg.NOTE_ON {
		return "on"
	}
	return "off"
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
