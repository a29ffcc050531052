package pipeline

import (
	"errors"
	"testing"

	"github.com/go-wfd/wfdsource/pkg/capability"
	"github.com/go-wfd/wfdsource/pkg/liberrors"
	"github.com/go-wfd/wfdsource/pkg/wfdparam"
	"github.com/stretchr/testify/require"
)

type fakeRuntime struct {
	failKind   string
	elements   []string
	probedPads []Pad
}

func (f *fakeRuntime) MakeElement(kind string, props map[string]any) (Element, error) {
	if kind == f.failKind {
		return nil, errors.New("boom")
	}
	f.elements = append(f.elements, kind)
	return kind, nil
}

func (f *fakeRuntime) Link(src, dst Element) error { return nil }

func (f *fakeRuntime) SetState(el Element, state State) error { return nil }

func (f *fakeRuntime) RequestPad(el Element, name string) (Pad, error) { return name, nil }

func (f *fakeRuntime) AddProbe(pad Pad, fn ProbeFunc) (Element, error) {
	f.probedPads = append(f.probedPads, pad)
	return "probe", nil
}

func (f *fakeRuntime) RemoveProbe(pad Pad, probe Element) error { return nil }

func basicSpec() Spec {
	return Spec{
		VideoSourceVariant:  VideoSourceTestPattern,
		VideoEncoderName:    "x264enc",
		AudioEncoderAACName: "avenc_aac",
		Negotiated: capability.NegotiatedConfig{
			AudioFormat:     wfdparam.AudioAAC,
			VideoResolution: capability.Resolution{Width: 1280, Height: 720, FrameRate: 30},
		},
	}
}

func TestBuildSucceeds(t *testing.T) {
	rt := &fakeRuntime{}
	b := NewBuilder(rt)

	g, err := b.Build(basicSpec())
	require.NoError(t, err)
	require.NotNil(t, g)
	require.Contains(t, rt.elements, "videotestsrc")
	require.Contains(t, rt.elements, "x264enc")
	require.NotNil(t, g.Source)
	require.NotNil(t, g.Encoder)
}

func TestBuildConstructsAudioPathForAAC(t *testing.T) {
	rt := &fakeRuntime{}
	b := NewBuilder(rt)

	g, err := b.Build(basicSpec())
	require.NoError(t, err)
	require.Contains(t, rt.elements, "audiotestsrc")
	require.Contains(t, rt.elements, "avenc_aac")
	require.NotNil(t, g.AudioSource)
	require.NotNil(t, g.AudioEncoder)
}

func TestBuildSkipsAudioEncoderForLPCM(t *testing.T) {
	rt := &fakeRuntime{}
	b := NewBuilder(rt)

	spec := basicSpec()
	spec.Negotiated.AudioFormat = wfdparam.AudioLPCM

	g, err := b.Build(spec)
	require.NoError(t, err)
	require.NotNil(t, g.AudioSource)
	require.Nil(t, g.AudioEncoder)
}

func TestBuildRequestsSrcPadsForAccessUnits(t *testing.T) {
	rt := &fakeRuntime{}
	b := NewBuilder(rt)

	g, err := b.Build(basicSpec())
	require.NoError(t, err)
	require.Equal(t, "src", g.VideoEncoderSrcPad)
	require.Equal(t, "src", g.AudioSrcPad)
}

func TestBuildInstallsAccessUnitProbesWhenSet(t *testing.T) {
	rt := &fakeRuntime{}
	b := NewBuilder(rt)

	spec := basicSpec()
	spec.OnVideoAccessUnit = func(buf []byte) bool { return true }
	spec.OnAudioAccessUnit = func(buf []byte) bool { return true }

	g, err := b.Build(spec)
	require.NoError(t, err)
	require.NotNil(t, g)
	require.Len(t, rt.probedPads, 2)
}

func TestBuildSkipsProbeInstallationWhenUnset(t *testing.T) {
	rt := &fakeRuntime{}
	b := NewBuilder(rt)

	_, err := b.Build(basicSpec())
	require.NoError(t, err)
	require.Empty(t, rt.probedPads)
}

func TestBuildFailsOnElementCreation(t *testing.T) {
	rt := &fakeRuntime{failKind: "x264enc"}
	b := NewBuilder(rt)

	_, err := b.Build(basicSpec())
	require.Error(t, err)
	var buildErr liberrors.ErrBuildFailed
	require.ErrorAs(t, err, &buildErr)
	require.Equal(t, "video encoder", buildErr.Stage)
}
