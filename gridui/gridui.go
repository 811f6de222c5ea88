// Package gridui is the terminal face of the instrument: a grid of solfège
// buttons played from the keyboard or the mouse.
package gridui

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/rapidmidiex/solfege/accidental"
	"github.com/rapidmidiex/solfege/engine"
	"github.com/rapidmidiex/solfege/feed"
	"github.com/rapidmidiex/solfege/jam"
	"github.com/rapidmidiex/solfege/keymap"
	"github.com/rapidmidiex/solfege/rmxerr"
	"github.com/rapidmidiex/solfege/rtt"
	"github.com/rapidmidiex/solfege/styles"
	"github.com/rapidmidiex/solfege/vpiano"
)

const (
	DefaultHoldInitial = 550 * time.Millisecond
	DefaultHoldRepeat  = 150 * time.Millisecond

	tickEvery  = 20 * time.Millisecond
	volumeStep = .05

	// Lines above the grid: the status bar and a blank line.
	headerHeight = 2

	gridRows = 4
	gridCols = 4

	// Grid cells that are accidental pads rather than buttons.
	sharpPad = -1
	flatPad  = -2
)

const (
	solfegeLabels labelMode = iota
	letterLabels
	keyLabels

	numLabelModes = 3
)

// Button indexes into vpiano.DefaultLayout, highest register on top.
var grid = [gridRows][gridCols]int{
	{10, 11, 12, 13},
	{7, 8, 9, sharpPad},
	{3, 4, 5, 6},
	{0, 1, 2, flatPad},
}

var labelModeNames = [numLabelModes]string{"solfège", "letters", "keys"}

type (
	labelMode int

	tickMsg time.Time

	// Tuner reports the pitch currently heard.
	Tuner interface {
		Pitch() (float64, error)
	}

	Options struct {
		Engine *engine.Engine
		// Optional jam session the engine is mirrored to.
		Jam *jam.Client
		// Optional pitch readout shown while notes sound.
		Tuner Tuner
		// Hold inference timeouts. Zero means the defaults.
		HoldInitial time.Duration
		HoldRepeat  time.Duration
		Logger      *log.Logger
	}

	Model struct {
		engine   *engine.Engine
		layout   vpiano.Layout
		bindings vpiano.BindingMap
		keys     keymap.Mapping
		help     help.Model
		holds    *holds
		labels   labelMode
		tuner    Tuner

		// Jam session and its activity.
		jam   *jam.Client
		feed  feed.Model
		stats rtt.CalcMsg

		err   error
		width int
		now   func() time.Time
		log   *log.Logger
	}
)

func (l labelMode) String() string {
	return labelModeNames[l]
}

func New(o Options) Model {
	if o.HoldInitial == 0 {
		o.HoldInitial = DefaultHoldInitial
	}
	if o.HoldRepeat == 0 {
		o.HoldRepeat = DefaultHoldRepeat
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	return Model{
		engine:   o.Engine,
		layout:   vpiano.DefaultLayout,
		bindings: vpiano.DefaultLayout.ToBindingMap(),
		keys:     keymap.DefaultMapping,
		help:     help.New(),
		holds:    newHolds(o.HoldInitial, o.HoldRepeat),
		jam:      o.Jam,
		tuner:    o.Tuner,
		feed:     feed.New(styles.CellWidth*gridCols, 4),
		now:      time.Now,
		log:      o.Logger,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.jam != nil {
		cmds = append(cmds, m.jam.Listen())
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.releaseExpired(time.Time(msg))
		return m, tick()

	case tea.MouseMsg:
		m.handleMouse(msg)

	// Input stops arriving once the terminal loses focus.
	case tea.BlurMsg:
		m.silence()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	// Jam session
	case jam.EchoMsg:
		m.stats = msg.Stats
		return m, m.jam.Listen()
	case jam.ConnectedMsg, jam.NoteMsg, jam.ChatMsg:
		m.feed, cmd = m.feed.Update(msg)
		return m, tea.Batch(cmd, m.jam.Listen())
	case jam.ClosedMsg:
		m.feed, cmd = m.feed.Update(msg)

	case rmxerr.ErrMsg:
		m.log.Printf("error: %v", msg)
		m.err = msg
	}

	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mods := m.engine.Modifiers()
	now := m.now()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.silence()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Sharp):
		m.holds.touch(vpiano.LogicalKey(msg.String()), now)
		mods.SetKeyboardSharp(true)
	case key.Matches(msg, m.keys.Flat):
		m.holds.touch(vpiano.LogicalKey(msg.String()), now)
		mods.SetKeyboardFlat(true)

	case key.Matches(msg, m.keys.NextTimbre):
		m.engine.SetTimbre(m.engine.Timbre().Next())
	case key.Matches(msg, m.keys.PrevTimbre):
		m.engine.SetTimbre(m.engine.Timbre().Prev())
	case key.Matches(msg, m.keys.NextKey):
		m.engine.SetKey(m.engine.Key().Next())
	case key.Matches(msg, m.keys.PrevKey):
		m.engine.SetKey(m.engine.Key().Prev())
	case key.Matches(msg, m.keys.VolumeUp):
		m.engine.SetVolume(m.engine.Volume() + volumeStep)
	case key.Matches(msg, m.keys.VolumeDown):
		m.engine.SetVolume(m.engine.Volume() - volumeStep)

	case key.Matches(msg, m.keys.CycleLabel):
		m.labels = (m.labels + 1) % numLabelModes
	case key.Matches(msg, m.keys.Silence):
		m.silence()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	default:
		k := vpiano.LogicalKey(msg.String())
		if _, ok := m.bindings[k]; !ok {
			return m, nil
		}
		// Auto-repeat only keeps the key held.
		if m.holds.touch(k, now) {
			m.engine.Press(k)
		}
	}
	return m, nil
}

// releaseExpired releases every key whose auto-repeat has stopped.
func (m Model) releaseExpired(now time.Time) {
	mods := m.engine.Modifiers()
	for _, k := range m.holds.expired(now) {
		switch {
		case bound(m.keys.Sharp, k):
			mods.SetKeyboardSharp(false)
		case bound(m.keys.Flat, k):
			mods.SetKeyboardFlat(false)
		default:
			m.engine.Release(k)
		}
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Type {
	case tea.MouseLeft:
		row, col, ok := cellAt(msg.X, msg.Y)
		if !ok {
			return
		}
		mods := m.engine.Modifiers()
		switch i := grid[row][col]; i {
		case sharpPad:
			mods.SetPointerSharp(true)
		case flatPad:
			mods.SetPointerFlat(true)
		default:
			m.engine.Press(m.layout.PointerKey(i))
		}
	// A release anywhere ends everything the pointer started.
	case tea.MouseRelease:
		m.silence()
	}
}

// silence stops every voice and forgets every held key.
func (m Model) silence() {
	m.holds.clear()
	m.engine.StopAll()
}

// cellAt returns the grid cell under the terminal position x, y.
func cellAt(x, y int) (row, col int, ok bool) {
	x -= styles.DocStyle.GetPaddingLeft()
	y -= styles.DocStyle.GetPaddingTop() + headerHeight
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	row, col = y/styles.CellHeight, x/styles.CellWidth
	return row, col, row < gridRows && col < gridCols
}

func (m Model) View() string {
	width := m.width
	if width == 0 {
		width, _, _ = term.GetSize(int(os.Stdout.Fd()))
	}
	docStyle := styles.DocStyle
	if width > 0 {
		docStyle = docStyle.MaxWidth(width)
	}

	doc := strings.Builder{}
	doc.WriteString(m.statusView() + "\n\n")
	doc.WriteString(m.gridView() + "\n\n")
	if m.jam != nil {
		doc.WriteString(m.pingView() + "\n")
		doc.WriteString(m.feed.View() + "\n")
	}
	if m.err != nil {
		doc.WriteString(styles.RenderError(m.err.Error()) + "\n")
	}
	doc.WriteString(styles.HelpMenu.Render(m.help.View(m.keys)))
	return docStyle.Render(doc.String())
}

func (m Model) statusView() string {
	status := styles.StatusStyle.Render("Solfège")
	info := styles.StatusText.Render(fmt.Sprintf("%s Major · %s · vol %d%% · %s",
		m.engine.Key(),
		m.engine.Timbre(),
		int(m.engine.Volume()*100+.5),
		m.labels,
	))
	if tuned := m.tunerView(); tuned != "" {
		info = lipgloss.JoinHorizontal(lipgloss.Top, info, styles.StatusText.Render(tuned))
	}
	return styles.StatusBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, status, info))
}

func (m Model) tunerView() string {
	if m.tuner == nil || len(m.engine.Sounding()) == 0 {
		return ""
	}
	hz, err := m.tuner.Pitch()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("♪ %.1f Hz", hz)
}

func (m Model) gridView() string {
	active := make(map[int]bool)
	for _, id := range m.engine.Sounding() {
		if b, ok := m.bindings[id.Key]; ok {
			active[b.Button] = true
		}
	}

	rows := make([]string, 0, gridRows)
	for _, r := range grid {
		cells := make([]string, 0, gridCols)
		for _, i := range r {
			switch i {
			case sharpPad:
				cells = append(cells, m.padView(accidental.Sharp))
			case flatPad:
				cells = append(cells, m.padView(accidental.Flat))
			default:
				cells = append(cells, m.buttonView(i, active[i]))
			}
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) buttonView(i int, active bool) string {
	b := m.layout[i]
	k := m.engine.Key()
	name := vpiano.LetterName(k, b.Degree)

	var label, hint string
	switch m.labels {
	case solfegeLabels:
		label = vpiano.Label(k, b.Degree, false, m.engine.Offset())
		hint = "(" + string(b.Keys[0]) + ")"
	case letterLabels:
		label = vpiano.Label(k, b.Degree, true, m.engine.Offset())
		hint = "(" + string(b.Keys[0]) + ")"
	case keyLabels:
		keys := make([]string, len(b.Keys))
		for j, lk := range b.Keys {
			keys[j] = string(lk)
		}
		label = strings.Join(keys, " ")
		hint = b.Degree.String()
	}
	return styles.Cell(vpiano.Color(k, b.Degree), vpiano.Spelling(name), active).Render(label + "\n" + hint)
}

func (m Model) padView(o accidental.Offset) string {
	mods := m.engine.Modifiers()
	kb, ptr := mods.Keyboard(), mods.Pointer()
	var active bool
	var hint string
	switch o {
	case accidental.Sharp:
		active = kb.Sharp || ptr.Sharp
		hint = m.keys.Sharp.Help().Key
	case accidental.Flat:
		active = kb.Flat || ptr.Flat
		hint = m.keys.Flat.Help().Key
	}
	return styles.Pad(active).Render(o.String() + "\n(" + hint + ")")
}

func (m Model) pingView() string {
	return styles.PingStyle.Render(fmt.Sprintf("ping %v avg %v min %v max %v · waiting %d",
		m.stats.Latest.Round(time.Millisecond),
		m.stats.Avg,
		m.stats.Min.Round(time.Millisecond),
		m.stats.Max.Round(time.Millisecond),
		m.jam.Pending(),
	))
}

func bound(b key.Binding, k vpiano.LogicalKey) bool {
	for _, bk := range b.Keys() {
		if bk == string(k) {
			return true
		}
	}
	return false
}
