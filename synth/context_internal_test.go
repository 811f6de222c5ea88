package synth

import (
	"errors"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/require"

	"github.com/rapidmidiex/solfege/rmxerr"
)

func TestOpenWithoutSpeaker(t *testing.T) {
	orig := speakerInit
	t.Cleanup(func() { speakerInit = orig })

	var gotBuffer int
	speakerInit = func(sr beep.SampleRate, bufferSize int) error {
		gotBuffer = bufferSize
		return errors.New("no audio device")
	}

	c, err := Open(44100, 100*time.Millisecond)
	require.ErrorIs(t, err, rmxerr.ErrBackendUnavailable)
	require.ErrorContains(t, err, "no audio device")
	require.Nil(t, c)
	require.Equal(t, 4410, gotBuffer)
}
