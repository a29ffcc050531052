package hotswap

import (
	"context"
	"testing"
	"time"

	"github.com/go-wfd/wfdsource/pkg/liberrors"
	"github.com/go-wfd/wfdsource/pkg/pipeline"
	"github.com/stretchr/testify/require"
)

type fakeRuntime struct {
	linked []string
}

func (f *fakeRuntime) MakeElement(kind string, props map[string]any) (pipeline.Element, error) {
	return kind, nil
}

func (f *fakeRuntime) Link(src, dst pipeline.Element) error {
	f.linked = append(f.linked, src.(string))
	return nil
}

func (f *fakeRuntime) SetState(el pipeline.Element, state pipeline.State) error { return nil }

func (f *fakeRuntime) RequestPad(el pipeline.Element, name string) (pipeline.Pad, error) {
	return name, nil
}

func (f *fakeRuntime) AddProbe(pad pipeline.Pad, fn pipeline.ProbeFunc) (pipeline.Element, error) {
	return "probe", nil
}

func (f *fakeRuntime) RemoveProbe(pad pipeline.Pad, probe pipeline.Element) error { return nil }

func newTestGraph(rt pipeline.GraphRuntime) *pipeline.Graph {
	return &pipeline.Graph{
		Runtime: rt,
		Source:  "videotestsrc",
		Encoder: "x264enc",
	}
}

func TestSwapToFileRejectsUnknownURI(t *testing.T) {
	g := newTestGraph(&fakeRuntime{})
	c := New(g, "videotestsrc", nil)

	_, err := c.SwapToFile(context.Background(), "foo://bar")
	require.Error(t, err)
	require.IsType(t, liberrors.ErrTypeDetectionFailed{}, err)
}

func TestSwapToFileSucceeds(t *testing.T) {
	rt := &fakeRuntime{}
	g := newTestGraph(rt)
	c := New(g, "videotestsrc", nil)

	handle, err := c.SwapToFile(context.Background(), "file:///tmp/clip.ts")
	require.NoError(t, err)

	select {
	case <-handle.Done():
	case <-time.After(time.Second):
		t.Fatal("swap did not complete")
	}
	require.NoError(t, handle.Err())
	require.Equal(t, "filesrc", g.Source)
}

func TestConcurrentSwapAborted(t *testing.T) {
	rt := &fakeRuntime{}
	g := newTestGraph(rt)
	c := New(g, "videotestsrc", nil)

	c.inPadProbe.Store(true)
	_, err := c.SwapToFile(context.Background(), "file:///tmp/clip.ts")
	require.Error(t, err)
	require.IsType(t, liberrors.ErrSwapAborted{}, err)
}

func TestSwapToLiveRebuildsOriginalSource(t *testing.T) {
	rt := &fakeRuntime{}
	g := newTestGraph(rt)
	c := New(g, "videotestsrc", map[string]any{"pattern": 0})

	g.Source = "filesrc"
	handle, err := c.SwapToLive(context.Background())
	require.NoError(t, err)

	<-handle.Done()
	require.NoError(t, handle.Err())
	require.Equal(t, "videotestsrc", g.Source)
}
