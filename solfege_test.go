package solfege_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rapidmidiex/solfege"
	"github.com/rapidmidiex/solfege/synth"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, solfege.DefaultConfig().Validate())

	muted := solfege.DefaultConfig()
	muted.Volume = 0
	require.NoError(t, muted.Validate())

	tests := map[string]func(c *solfege.Config){
		"timbre":      func(c *solfege.Config) { c.Timbre = synth.NumTimbres },
		"key":         func(c *solfege.Config) { c.Key = -1 },
		"volume":      func(c *solfege.Config) { c.Volume = 1.5 },
		"sample rate": func(c *solfege.Config) { c.SampleRate = 0 },
		"buffer":      func(c *solfege.Config) { c.BufferSize = 0 },
		"hold":        func(c *solfege.Config) { c.HoldInitial = time.Millisecond },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := solfege.DefaultConfig()
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}
