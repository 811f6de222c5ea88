// Package solfege wires the instrument together: audio output, the playback
// engine, the optional jam session and the terminal interface.
package solfege

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/faiface/beep"

	"github.com/rapidmidiex/solfege/engine"
	"github.com/rapidmidiex/solfege/gridui"
	"github.com/rapidmidiex/solfege/jam"
	"github.com/rapidmidiex/solfege/lobby"
	"github.com/rapidmidiex/solfege/synth"
	"github.com/rapidmidiex/solfege/tuning"
)

type Config struct {
	Timbre synth.Timbre
	Key    tuning.Key
	// Master volume in [0, 1].
	Volume     float64
	SampleRate beep.SampleRate
	// Speaker buffer length. Shorter is more responsive but may crackle.
	BufferSize time.Duration
	// Jam session websocket URL, ex: "ws://localhost:8080/jam/1". Empty
	// plays alone.
	JamURL string
	// Jam server to pick a session from when JamURL is empty, ex:
	// "https://rmx.fly.dev".
	Server string
	// Key hold inference timeouts.
	HoldInitial time.Duration
	HoldRepeat  time.Duration
	// File the log is written to. Empty discards it.
	LogFile string
}

func DefaultConfig() Config {
	return Config{
		Timbre:      synth.Triangle,
		Key:         tuning.C,
		Volume:      engine.DefaultVolume,
		SampleRate:  44100,
		BufferSize:  20 * time.Millisecond,
		HoldInitial: gridui.DefaultHoldInitial,
		HoldRepeat:  gridui.DefaultHoldRepeat,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Timbre < 0 || c.Timbre >= synth.NumTimbres:
		return fmt.Errorf("timbre: unknown %d", int(c.Timbre))
	case c.Key < 0 || c.Key >= tuning.NumKeys:
		return fmt.Errorf("key: unknown %d", int(c.Key))
	case c.Volume < 0 || c.Volume > 1:
		return fmt.Errorf("volume: %v not in [0, 1]", c.Volume)
	case c.SampleRate <= 0:
		return fmt.Errorf("sample rate: %d must be positive", c.SampleRate)
	case c.BufferSize <= 0:
		return fmt.Errorf("buffer size: %v must be positive", c.BufferSize)
	case c.HoldRepeat <= 0 || c.HoldInitial < c.HoldRepeat:
		return fmt.Errorf("hold: initial %v must be at least repeat %v, and repeat positive", c.HoldInitial, c.HoldRepeat)
	}
	return nil
}

// Run plays the instrument until the user quits.
func Run(cfg Config) {
	if err := cfg.Validate(); err != nil {
		bail(fmt.Errorf("config: %w", err))
	}
	logger := log.Default()

	var err error
	if cfg.JamURL == "" && cfg.Server != "" {
		cfg.JamURL, err = pickJam(cfg.Server, logger)
		if err != nil {
			bail(err)
		}
	}

	ctx, err := synth.Open(cfg.SampleRate, cfg.BufferSize)
	if err != nil {
		bail(err)
	}
	defer ctx.Close()

	e := engine.New(engine.Options{
		Backend: engine.SynthBackend{Ctx: ctx},
		Key:     cfg.Key,
		Timbre:  cfg.Timbre,
		Logger:  logger,
	})
	// Zero is a valid volume here.
	e.SetVolume(cfg.Volume)

	var client *jam.Client
	if cfg.JamURL != "" {
		dialCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = jam.Dial(dialCtx, cfg.JamURL, logger)
		cancel()
		if err != nil {
			bail(err)
		}
		defer client.Close()
		e.AddListener(client)
	}

	m := gridui.New(gridui.Options{
		Engine:      e,
		Jam:         client,
		Tuner:       ctx,
		HoldInitial: cfg.HoldInitial,
		HoldRepeat:  cfg.HoldRepeat,
		Logger:      logger,
	})
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil {
		bail(err)
	}
	if err := ctx.Err(); err != nil {
		logger.Printf("audio: %v", err)
	}
}

// pickJam shows the server's lobby and returns the websocket URL of the jam
// the user chose. It is empty if they quit without choosing.
func pickJam(server string, logger *log.Logger) (string, error) {
	p := tea.NewProgram(lobby.New(lobby.APIURL(server), logger), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("lobby: %w", err)
	}
	id, ok := final.(lobby.Model).Selected()
	if !ok {
		return "", nil
	}
	return lobby.SessionURL(server, id)
}

func bail(err error) {
	if err != nil {
		fmt.Printf("Uh oh, there was an error: %v\n", err)
		os.Exit(1)
	}
}
