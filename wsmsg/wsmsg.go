// Package wsmsg contains the message types exchanged with a jam session
// server.
package wsmsg

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type (
	MsgType   int
	NoteState int

	Envelope struct {
		// Message identifier
		ID uuid.UUID `json:"id"`
		// TextMsg | MIDIMsg | ConnectMsg
		Typ MsgType `json:"type"`
		// Sending client identifier
		UserID uuid.UUID `json:"userId"`
		// Actual message data.
		Payload json.RawMessage `json:"payload"`
	}

	TextMsg struct {
		DisplayName string `json:"displayName"`
		Body        string `json:"body"`
	}

	MIDIMsg struct {
		State NoteState `json:"state"`
		// MIDI Note # in "C3 Convention", C3 = 60. Available values: (0-127)
		Number int `json:"number"`
		// MIDI Velocity (0-127)
		Velocity int `json:"velocity"`
	}

	ConnectMsg struct {
		UserID   uuid.UUID `json:"userId"`
		UserName string    `json:"userName"`
	}
)

const (
	TEXT MsgType = iota
	MIDI
	CONNECT
)

const (
	NOTE_OFF NoteState = iota
	NOTE_ON
)

var msgTypeNames = map[MsgType]string{
	TEXT:    "text",
	MIDI:    "midi",
	CONNECT: "connect",
}

// New wraps payload in an envelope with a fresh ID.
func New(typ MsgType, userID uuid.UUID, payload any) (Envelope, error) {
	e := Envelope{
		ID:     uuid.New(),
		Typ:    typ,
		UserID: userID,
	}
	if err := e.SetPayload(payload); err != nil {
		return Envelope{}, fmt.Errorf("%s payload: %w", typ, err)
	}
	return e, nil
}

func (e *Envelope) SetPayload(payload any) error {
	p, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	e.Payload = p
	return nil
}

func (e *Envelope) Unwrap(msg any) error {
	return json.Unmarshal(e.Payload, msg)
}

func (t MsgType) String() string {
	if name, ok := msgTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MsgType(%d)", int(t))
}

func (t *MsgType) UnmarshalJSON(data []byte) error {
	var rawType string
	err := json.Unmarshal(data, &rawType)
	if err != nil {
		return err
	}

	for typ, name := range msgTypeNames {
		if name == rawType {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown type: %s", rawType)
}

func (t MsgType) MarshalJSON() ([]byte, error) {
	name, ok := msgTypeNames[t]
	if !ok {
		return []byte{}, fmt.Errorf("unknown MsgTyp value: %d", t)
	}
	return json.Marshal(name)
}
