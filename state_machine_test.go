package wfdsource

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdvanceThroughFullHandshake(t *testing.T) {
	path := []State{
		StateInit, StateM1Sent, StateM2Received, StateM3Sent, StateM3Received,
		StateM4Sent, StateM4Received, StateReady, StateSetup, StatePlaying,
	}

	cur := path[0]
	for _, next := range path[1:] {
		var err error
		cur, err = advance(cur, next)
		require.NoError(t, err)
		require.Equal(t, next, cur)
	}
}

func TestAdvanceRejectsSkippedState(t *testing.T) {
	_, err := advance(StateInit, StateReady)
	require.Error(t, err)
}

func TestAdvancePauseAndResume(t *testing.T) {
	cur, err := advance(StatePlaying, StatePaused)
	require.NoError(t, err)
	cur, err = advance(cur, StatePlaying)
	require.NoError(t, err)
	require.Equal(t, StatePlaying, cur)
}

func TestTeardownReachableFromReadySetupPlayingPaused(t *testing.T) {
	for _, s := range []State{StateReady, StateSetup, StatePlaying, StatePaused} {
		_, err := advance(s, StateTeardown)
		require.NoError(t, err)
	}
}

func TestTeardownIsTerminal(t *testing.T) {
	_, err := advance(StateTeardown, StateReady)
	require.Error(t, err)
}

func TestStateStringUnknown(t *testing.T) {
	require.Equal(t, "Unknown", State(999).String())
}
