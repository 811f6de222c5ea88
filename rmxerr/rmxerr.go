package rmxerr

import "errors"

// ErrBackendUnavailable means no audio device could be opened. The
// instrument cannot make sound without one, so it is a startup failure.
var ErrBackendUnavailable = errors.New("audio backend unavailable")

type (
	// ErrMsg carries an error through the bubbletea update loop.
	ErrMsg struct {
		Err error
	}
)

func (m ErrMsg) Error() string {
	return m.Err.Error()
}

func (m ErrMsg) Unwrap() error {
	return m.Err
}
