package gridui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/rapidmidiex/solfege/accidental"
	"github.com/rapidmidiex/solfege/engine"
	"github.com/rapidmidiex/solfege/styles"
	"github.com/rapidmidiex/solfege/synth"
	"github.com/rapidmidiex/solfege/tuning"
	"github.com/rapidmidiex/solfege/vpiano"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newModel(t *testing.T) (Model, *engine.Engine) {
	t.Helper()
	e := engine.New(engine.Options{Backend: engine.SynthBackend{Ctx: synth.NewContext(44100)}})
	m := New(Options{
		Engine:      e,
		HoldInitial: 500 * time.Millisecond,
		HoldRepeat:  100 * time.Millisecond,
	})
	m.now = func() time.Time { return t0 }
	return m, e
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

// cellOrigin is the terminal position of the top left corner of a cell.
func cellOrigin(row, col int) (x, y int) {
	return 2 + col*styles.CellWidth, 1 + headerHeight + row*styles.CellHeight
}

func TestHolds(t *testing.T) {
	h := newHolds(500*time.Millisecond, 100*time.Millisecond)

	require.True(t, h.touch("a", t0))
	require.False(t, h.touch("a", t0.Add(10*time.Millisecond)), "repeat is not a new press")
	require.True(t, h.touch("s", t0))

	// "s" never repeated so it gets the initial delay.
	require.Equal(t, []vpiano.LogicalKey{"a"}, h.expired(t0.Add(200*time.Millisecond)))
	require.False(t, h.held("a"))
	require.True(t, h.held("s"))
	require.Equal(t, []vpiano.LogicalKey{"s"}, h.expired(t0.Add(600*time.Millisecond)))
	require.Empty(t, h.expired(t0.Add(time.Hour)))

	h.touch("d", t0)
	h.clear()
	require.False(t, h.held("d"))
}

func TestCellAt(t *testing.T) {
	x, y := cellOrigin(0, 0)
	row, col, ok := cellAt(x, y)
	require.True(t, ok)
	require.Equal(t, 0, row)
	require.Equal(t, 0, col)

	x, y = cellOrigin(1, 3)
	row, col, ok = cellAt(x+10, y+3)
	require.True(t, ok)
	require.Equal(t, sharpPad, grid[row][col])

	_, _, ok = cellAt(0, 0)
	require.False(t, ok)
	x, y = cellOrigin(4, 0)
	_, _, ok = cellAt(x, y)
	require.False(t, ok)
}

func TestGridMatchesLayout(t *testing.T) {
	seen := make(map[int]bool)
	for _, r := range grid {
		for _, i := range r {
			if i >= 0 {
				seen[i] = true
			}
		}
	}
	require.Len(t, seen, len(vpiano.DefaultLayout))
	require.Equal(t, tuning.C5, vpiano.DefaultLayout[grid[0][0]].Note)
	require.Equal(t, tuning.G3, vpiano.DefaultLayout[grid[3][0]].Note)
}

func TestKeyboard(t *testing.T) {
	t.Run("auto-repeat keeps a key held", func(t *testing.T) {
		m, e := newModel(t)
		m = update(m, runes("a"))
		require.True(t, e.IsHeld("a"))

		m.now = func() time.Time { return t0.Add(400 * time.Millisecond) }
		m = update(m, runes("a"))
		m = update(m, tickMsg(t0.Add(450*time.Millisecond)))
		require.True(t, e.IsHeld("a"))

		update(m, tickMsg(t0.Add(600*time.Millisecond)))
		require.False(t, e.IsHeld("a"))
		require.Empty(t, e.Sounding())
	})

	t.Run("unbound keys are ignored", func(t *testing.T) {
		m, e := newModel(t)
		m = update(m, runes("v"))
		require.Empty(t, e.Held())
		require.False(t, m.holds.held("v"))
	})

	t.Run("held sharp retriggers", func(t *testing.T) {
		m, e := newModel(t)
		m = update(m, runes("="))
		m = update(m, runes("a"))
		require.Equal(t, []engine.Identity{{Key: "a", Offset: accidental.Sharp}}, e.Sounding())

		// The sharp expires first and "a" falls back to natural before it
		// is released too.
		update(m, tickMsg(t0.Add(time.Second)))
		require.Equal(t, accidental.Natural, e.Offset())
		require.Empty(t, e.Sounding())
	})

	t.Run("settings", func(t *testing.T) {
		m, e := newModel(t)
		m = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
		m = update(m, tea.KeyMsg{Type: tea.KeyUp})
		m = update(m, tea.KeyMsg{Type: tea.KeyUp})
		m = update(m, tea.KeyMsg{Type: tea.KeyRight})
		m = update(m, tea.KeyMsg{Type: tea.KeyPgDown})
		m = update(m, tea.KeyMsg{Type: tea.KeyTab})

		require.Equal(t, tuning.D, e.Key())
		require.Equal(t, synth.Triangle, e.Timbre())
		require.InDelta(t, engine.DefaultVolume-volumeStep, e.Volume(), 1e-9)
		require.Equal(t, letterLabels, m.labels)

		view := m.View()
		require.Contains(t, view, "D Major")
		require.Contains(t, view, "F#")
	})

	t.Run("space silences everything", func(t *testing.T) {
		m, e := newModel(t)
		m = update(m, runes("a"))
		m = update(m, runes("s"))
		m = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		require.Empty(t, e.Held())
		require.False(t, m.holds.held("a"))
	})

	t.Run("quit", func(t *testing.T) {
		m, e := newModel(t)
		m = update(m, runes("a"))
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		require.NotNil(t, cmd)
		require.Equal(t, tea.QuitMsg{}, cmd())
		require.Empty(t, e.Held())
	})
}

func TestPointer(t *testing.T) {
	t.Run("press and release", func(t *testing.T) {
		m, e := newModel(t)
		x, y := cellOrigin(2, 0)
		m = update(m, tea.MouseMsg{X: x + 1, Y: y + 1, Type: tea.MouseLeft})
		require.Equal(t, []vpiano.LogicalKey{m.layout.PointerKey(3)}, e.Held())

		update(m, tea.MouseMsg{X: 0, Y: 0, Type: tea.MouseRelease})
		require.Empty(t, e.Held())
	})

	t.Run("pads", func(t *testing.T) {
		m, e := newModel(t)
		x, y := cellOrigin(3, 3)
		m = update(m, tea.MouseMsg{X: x, Y: y, Type: tea.MouseLeft})
		require.Equal(t, accidental.Flat, e.Offset())
		require.True(t, e.Modifiers().Pointer().Flat)

		// Sharp wins across channels.
		m = update(m, runes("="))
		require.Equal(t, accidental.Sharp, e.Offset())

		update(m, tea.MouseMsg{Type: tea.MouseRelease})
		require.Equal(t, accidental.Natural, e.Offset())
		require.False(t, e.Modifiers().Keyboard().Sharp)
	})

	t.Run("focus loss stops everything", func(t *testing.T) {
		m, e := newModel(t)
		m = update(m, runes("a"))
		x, y := cellOrigin(1, 3)
		m = update(m, tea.MouseMsg{X: x, Y: y, Type: tea.MouseLeft})
		require.Len(t, e.Sounding(), 1)

		update(m, tea.BlurMsg{})
		require.Empty(t, e.Sounding())
		require.Equal(t, accidental.Natural, e.Offset())
	})
}

func TestView(t *testing.T) {
	m, _ := newModel(t)
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	for _, want := range []string{"C Major", "sine", "vol 40%", "Do", "(a)", "♯", "♭"} {
		require.True(t, strings.Contains(view, want), "view is missing %q", want)
	}
}

type fixedTuner float64

func (f fixedTuner) Pitch() (float64, error) { return float64(f), nil }

func TestTunerReadout(t *testing.T) {
	m, e := newModel(t)
	m.tuner = fixedTuner(261.6)
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.NotContains(t, m.View(), "Hz")

	m = update(m, runes("a"))
	require.Len(t, e.Sounding(), 1)
	require.Contains(t, m.View(), "♪ 261.6 Hz")

	m = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.Empty(t, e.Sounding())
	require.NotContains(t, m.View(), "Hz")
}
