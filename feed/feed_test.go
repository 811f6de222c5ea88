package feed_test

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rapidmidiex/solfege/feed"
	"github.com/rapidmidiex/solfege/jam"
	"github.com/rapidmidiex/solfege/wsmsg"
)

func TestFeed(t *testing.T) {
	t.Run("shows session activity", func(t *testing.T) {
		m := feed.New(40, 5)
		require.Contains(t, m.View(), "Waiting for the server")

		id := uuid.MustParse("7b0f33ba-8a50-446d-aaa4-4de4aa96fc6c")
		for _, msg := range []tea.Msg{
			jam.ConnectedMsg{UserName: "solfa"},
			jam.ChatMsg{DisplayName: "Ana", Body: "hi"},
			jam.NoteMsg{UserID: id, Note: wsmsg.MIDIMsg{State: wsmsg.NOTE_ON, Number: 67}},
		} {
			m, _ = m.Update(msg)
		}

		require.Equal(t, 3, m.Len())
		view := m.View()
		require.Contains(t, view, "Joined as solfa")
		require.Contains(t, view, "Ana: hi")
		require.Contains(t, view, "7b0f33ba on 67")
	})

	t.Run("keeps the latest lines", func(t *testing.T) {
		m := feed.New(40, 5)
		for i := 0; i < 150; i++ {
			m, _ = m.Update(jam.ChatMsg{DisplayName: "Ana", Body: fmt.Sprint(i)})
		}
		require.Equal(t, 100, m.Len())
		require.Contains(t, m.View(), "Ana: 149")
	})
}
