package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/faiface/beep"

	"github.com/rapidmidiex/solfege"
	"github.com/rapidmidiex/solfege/synth"
	"github.com/rapidmidiex/solfege/tuning"
)

var (
	cfg = solfege.DefaultConfig()

	timbreVar string
	keyVar    string
	rateVar   int
)

func init() {
	flag.StringVar(&timbreVar, "timbre", cfg.Timbre.String(), "Timbre: sine, triangle, square, sawtooth or voice")
	flag.StringVar(&keyVar, "key", cfg.Key.String(), "Major key, ex: D or Eb")
	flag.Float64Var(&cfg.Volume, "volume", cfg.Volume, "Master volume, 0 to 1")
	flag.IntVar(&rateVar, "rate", int(cfg.SampleRate), "Output sample rate")
	flag.DurationVar(&cfg.BufferSize, "buffer", cfg.BufferSize, "Speaker buffer length")
	flag.StringVar(&cfg.JamURL, "jam", "", "Jam session websocket URL, ex: ws://localhost:8080/ws/jam/1")
	flag.StringVar(&cfg.Server, "server", "", "Jam server to pick a session from, ex: https://rmx.fly.dev")
	flag.DurationVar(&cfg.HoldInitial, "hold-initial", cfg.HoldInitial, "Release a key not repeated within this long")
	flag.DurationVar(&cfg.HoldRepeat, "hold-repeat", cfg.HoldRepeat, "Release a repeating key after this long without a repeat")
	flag.StringVar(&cfg.LogFile, "log", "", "Write the debug log to this file")

	flag.Parse()
}

func main() {
	var err error
	if cfg.Timbre, err = synth.ParseTimbre(timbreVar); err != nil {
		exit(err)
	}
	if cfg.Key, err = tuning.ParseKey(keyVar); err != nil {
		exit(err)
	}
	cfg.SampleRate = beep.SampleRate(rateVar)

	// The interface owns the terminal.
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "solfege")
		if err != nil {
			exit(err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	solfege.Run(cfg)
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}
