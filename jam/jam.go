// Package jam mirrors the notes played on the instrument to a jam session
// server over a websocket.
package jam

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rapidmidiex/solfege/accidental"
	"github.com/rapidmidiex/solfege/engine"
	"github.com/rapidmidiex/solfege/rmxerr"
	"github.com/rapidmidiex/solfege/rtt"
	"github.com/rapidmidiex/solfege/tuning"
	"github.com/rapidmidiex/solfege/wsmsg"
)

const (
	// Velocity sent with every NOTE_ON.
	Velocity = 100
	// Number of roundtrip times kept for stats.
	pingWindow = 20
	// Envelopes queued for writing before new ones are dropped.
	outBuffer = 64
	// Sent notes waiting for an echo. Older ones are given up on.
	MaxPending = 256
)

type (
	// ConnectedMsg is sent when the server assigns us a user.
	ConnectedMsg struct {
		UserID   uuid.UUID
		UserName string
	}

	// EchoMsg is sent when the server echoes one of our own notes back.
	EchoMsg struct {
		Note  wsmsg.MIDIMsg
		Stats rtt.CalcMsg
	}

	// NoteMsg is a note played by another user in the session.
	NoteMsg struct {
		UserID uuid.UUID
		Note   wsmsg.MIDIMsg
	}

	// ChatMsg is a text message from the session.
	ChatMsg struct {
		DisplayName string
		Body        string
	}

	// ClosedMsg is sent when the server closes the session.
	ClosedMsg struct{}

	Client struct {
		conn *websocket.Conn
		out  chan wsmsg.Envelope
		done chan struct{}
		log  *log.Logger

		mu     sync.Mutex
		closed bool
		userID uuid.UUID
		// MIDI number each sounding identity was announced with.
		notes map[engine.Identity]int
		// { [messageID]: timeSentAt }
		sent map[uuid.UUID]time.Time
		// IDs in sent, oldest first. May hold IDs already echoed.
		sentOrder []uuid.UUID
		pings     *rtt.Window
	}
)

var _ engine.Listener = (*Client)(nil)

// Dial connects to the jam session at url.
func Dial(ctx context.Context, url string, logger *log.Logger) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("jam dial: %v\n%w", url, err)
	}
	return New(ws, logger), nil
}

// New starts a client on an open connection. Close it when done.
func New(conn *websocket.Conn, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c := &Client{
		conn:  conn,
		out:   make(chan wsmsg.Envelope, outBuffer),
		done:  make(chan struct{}),
		log:   logger,
		notes: make(map[engine.Identity]int),
		sent:  make(map[uuid.UUID]time.Time),
		pings: rtt.NewWindow(pingWindow),
	}
	go c.writeLoop()
	return c
}

func (c *Client) UserID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Client) VoiceStarted(id engine.Identity, freq float64) {
	n := tuning.MIDINumber(freq)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes[id] = n
	c.send(wsmsg.MIDIMsg{State: wsmsg.NOTE_ON, Number: n, Velocity: Velocity})
}

func (c *Client) VoiceStopped(id engine.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.notes[id]
	if !ok {
		return
	}
	delete(c.notes, id)
	c.send(wsmsg.MIDIMsg{State: wsmsg.NOTE_OFF, Number: n})
}

// OffsetChanged is a no-op. The retrigger that follows is announced as
// stopped and started voices.
func (c *Client) OffsetChanged(accidental.Offset) {}

// send queues a MIDI envelope. Callers hold c.mu.
func (c *Client) send(m wsmsg.MIDIMsg) {
	if c.closed {
		return
	}
	env, err := wsmsg.New(wsmsg.MIDI, c.userID, m)
	if err != nil {
		c.log.Printf("jam send: %v", err)
		return
	}
	select {
	case c.out <- env:
		c.track(env.ID)
	default:
		c.log.Printf("jam send: queue full, dropped note %d", m.Number)
	}
}

// track waits for the echo of id, forgetting the oldest sent notes past
// MaxPending. Callers hold c.mu.
func (c *Client) track(id uuid.UUID) {
	c.sent[id] = time.Now()
	c.sentOrder = append(c.sentOrder, id)
	for len(c.sentOrder) > MaxPending {
		delete(c.sent, c.sentOrder[0])
		c.sentOrder = c.sentOrder[1:]
	}
}

// Pending returns the number of sent notes still waiting for an echo.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func (c *Client) writeLoop() {
	defer close(c.done)
	for env := range c.out {
		if err := c.conn.WriteJSON(env); err != nil {
			c.log.Printf("jam writeJSON: %v", err)
		}
	}
}

// Listen reads the next message from the session. Run it again after each
// message it returns, except ClosedMsg and rmxerr.ErrMsg.
func (c *Client) Listen() tea.Cmd {
	// https://github.com/charmbracelet/bubbletea/issues/25#issuecomment-732339162
	return func() tea.Msg {
		var message wsmsg.Envelope
		err := c.conn.ReadJSON(&message)
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ClosedMsg{}
			}
			return rmxerr.ErrMsg{Err: fmt.Errorf("readJSON: %w", err)}
		}

		switch message.Typ {
		case wsmsg.CONNECT:
			var conMsg wsmsg.ConnectMsg
			if err := message.Unwrap(&conMsg); err != nil {
				return rmxerr.ErrMsg{Err: fmt.Errorf("unmarshal ConnectMsg: %+v\n%w", message, err)}
			}
			c.mu.Lock()
			c.userID = conMsg.UserID
			c.mu.Unlock()
			return ConnectedMsg{UserID: conMsg.UserID, UserName: conMsg.UserName}

		case wsmsg.MIDI:
			var midiMsg wsmsg.MIDIMsg
			if err := message.Unwrap(&midiMsg); err != nil {
				return rmxerr.ErrMsg{Err: fmt.Errorf("unmarshal MIDIMsg: %+v\n%w", message, err)}
			}
			if stats, ok := c.echo(message.ID); ok {
				return EchoMsg{Note: midiMsg, Stats: stats}
			}
			return NoteMsg{UserID: message.UserID, Note: midiMsg}

		case wsmsg.TEXT:
			var textMsg wsmsg.TextMsg
			if err := message.Unwrap(&textMsg); err != nil {
				return rmxerr.ErrMsg{Err: fmt.Errorf("unmarshal TextMsg: %+v\n%w", message, err)}
			}
			return ChatMsg{DisplayName: textMsg.DisplayName, Body: textMsg.Body}

		default:
			return rmxerr.ErrMsg{Err: fmt.Errorf("unknown message type: %+v", message)}
		}
	}
}

// echo looks up a message we sent and records its roundtrip time.
func (c *Client) echo(id uuid.UUID) (rtt.CalcMsg, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sentAt, ok := c.sent[id]
	if !ok {
		return rtt.CalcMsg{}, false
	}
	delete(c.sent, id)
	return c.pings.Add(time.Since(sentAt)), true
}

// Close flushes queued notes, says goodbye to the server and closes the
// connection.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.out)
	c.mu.Unlock()

	<-c.done
	err := c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	if cerr := c.conn.Close(); err == nil {
		err = cerr
	}
	return err
}
