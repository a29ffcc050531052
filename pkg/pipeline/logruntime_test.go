package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogRuntimeSatisfiesGraphRuntime(t *testing.T) {
	var rt GraphRuntime = NewLogRuntime(nil)

	el, err := rt.MakeElement("videotestsrc", nil)
	require.NoError(t, err)
	require.NoError(t, rt.SetState(el, StatePlaying))

	el2, err := rt.MakeElement("mpegtsmux", nil)
	require.NoError(t, err)
	require.NoError(t, rt.Link(el, el2))

	pad, err := rt.RequestPad(el2, "sink_%d")
	require.NoError(t, err)

	probe, err := rt.AddProbe(pad, func([]byte) bool { return true })
	require.NoError(t, err)
	require.NoError(t, rt.RemoveProbe(pad, probe))
}

func TestLogRuntimeIDsAreUnique(t *testing.T) {
	rt := NewLogRuntime(nil)

	a, err := rt.MakeElement("a", nil)
	require.NoError(t, err)
	b, err := rt.MakeElement("b", nil)
	require.NoError(t, err)

	require.NotEqual(t, describe(a), describe(b))
}
