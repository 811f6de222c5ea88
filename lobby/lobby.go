// Package lobby lists the jam sessions on a server and lets the user join
// or start one before playing.
package lobby

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/rapidmidiex/solfege/keymap"
	"github.com/rapidmidiex/solfege/rmxerr"
	"github.com/rapidmidiex/solfege/styles"
)

type (
	Jam struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		PlayerCount int    `json:"playerCount"`
	}

	jamsResp struct {
		Rooms []Jam `json:"rooms"`
	}

	jamCreated struct {
		ID string `json:"id"`
	}

	Model struct {
		apiURL   string // REST API base endpoint
		client   *http.Client
		jams     []Jam
		jamTable table.Model
		keys     keymap.LobbyMapping
		help     help.Model
		loading  bool
		selected string
		err      error
		log      *log.Logger
	}
)

// APIURL returns the REST endpoint of a server, ex: "https://rmx.fly.dev".
func APIURL(server string) string {
	return strings.TrimSuffix(server, "/") + "/api/v1"
}

// SessionURL returns the websocket URL of jam session id on server.
func SessionURL(server, id string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("session url: %w", err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("session url: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/jam/" + url.PathEscape(id)
	return u.String(), nil
}

func New(apiURL string, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return Model{
		apiURL:  apiURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		keys:    keymap.DefaultLobbyMapping,
		help:    help.New(),
		loading: true,
		log:     logger,
	}
}

// Selected returns the jam the user chose, if any.
func (m Model) Selected() (string, bool) {
	return m.selected, m.selected != ""
}

// Init is used to handle any initial I/O
func (m Model) Init() tea.Cmd {
	return m.listJams()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.jamTable.SetWidth(msg.Width - 10)
		m.help.Width = msg.Width
	case rmxerr.ErrMsg:
		m.log.Printf("lobby: %v", msg)
		m.err = msg
		m.loading = false
	case jamsResp:
		m.jams = msg.Rooms
		m.jamTable = makeJamsTable(m.jams)
		m.jamTable.Focus()
		m.loading = false
		m.err = nil
	case jamCreated:
		// Auto join the newly created Jam
		m.selected = msg.ID
		return m, tea.Quit
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Join):
			if row := m.jamTable.SelectedRow(); row != nil {
				m.selected = row[1]
				return m, tea.Quit
			}
		case key.Matches(msg, m.keys.Create):
			cmds = append(cmds, m.jamCreate())
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			cmds = append(cmds, m.listJams())
		}
	}

	var jtCmd tea.Cmd
	m.jamTable, jtCmd = m.jamTable.Update(msg)
	cmds = append(cmds, jtCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	physicalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	doc := strings.Builder{}

	// Jam Session Table
	switch {
	case len(m.jams) > 0:
		doc.WriteString(styles.BaseStyle.Render(m.jamTable.View()))
	case m.loading:
		doc.WriteString(styles.MessageText.Render("Loading jams..."))
	default:
		doc.WriteString(styles.MessageText.Render("No Jams Yet. Create one?"))
	}
	doc.WriteString("\n")

	if m.err != nil {
		doc.WriteString("\n" + styles.RenderError(m.err.Error()) + "\n")
	}

	// Help menu
	doc.WriteString("\n" + styles.HelpMenu.Render(m.help.View(m.keys)))

	docStyle := styles.DocStyle
	if physicalWidth > 0 {
		docStyle = docStyle.MaxWidth(physicalWidth)
	}
	return docStyle.Render(doc.String())
}

// https://github.com/rog-golang-buddies/rapidmidiex-research/issues/9#issuecomment-1204853876
func makeJamsTable(jams []Jam) table.Model {
	columns := []table.Column{
		{Title: "Name", Width: 15},
		{Title: "ID", Width: 36},
		{Title: "Players", Width: 10},
	}

	rows := make([]table.Row, 0, len(jams))
	for _, j := range jams {
		rows = append(rows, table.Row{j.Name, j.ID, fmt.Sprintf("%d", j.PlayerCount)})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(7),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// Commands
func (m Model) listJams() tea.Cmd {
	return func() tea.Msg {
		res, err := m.client.Get(m.apiURL + "/jam")
		if err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("listJams: %w", err)}
		}
		defer res.Body.Close()
		if res.StatusCode >= 400 {
			return rmxerr.ErrMsg{Err: fmt.Errorf("could not get sessions: %d", res.StatusCode)}
		}
		var resp jamsResp
		if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("decode: %w", err)}
		}
		return resp
	}
}

// For now the Jam Session is created without options.
func (m Model) jamCreate() tea.Cmd {
	return func() tea.Msg {
		res, err := m.client.Post(m.apiURL+"/jam", "application/json", strings.NewReader("{}"))
		if err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("jamCreate: %w", err)}
		}
		defer res.Body.Close()
		if res.StatusCode >= 400 {
			return rmxerr.ErrMsg{Err: fmt.Errorf("could not create session: %d", res.StatusCode)}
		}
		var body jamCreated
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("decode: %w", err)}
		}
		return body
	}
}
