// Package pipeline builds and hot-swaps the capture/encode graph a
// negotiated session streams through: a source element and an encoder,
// per elementary stream, wired together by a pluggable GraphRuntime so
// the package itself stays free of any particular media framework's
// bindings. Muxing the encoded access units into MPEG-TS and payloading
// them into RTP happens downstream of this package, fed by the probes
// Build installs on each encoder's output pad.
package pipeline

import (
	"github.com/go-wfd/wfdsource/pkg/capability"
	"github.com/go-wfd/wfdsource/pkg/liberrors"
	"github.com/go-wfd/wfdsource/pkg/wfdparam"
)

// Element is an opaque handle a GraphRuntime hands back from MakeElement;
// this package never inspects it, only passes it to later calls.
type Element any

// Pad is an opaque handle a GraphRuntime hands back from RequestPad.
type Pad any

// ProbeFunc is invoked by the runtime on every buffer that crosses a
// probed pad. Returning false drops the buffer.
type ProbeFunc func(buf []byte) bool

// GraphRuntime is the external collaborator a Builder drives to construct
// and mutate the actual media graph. Implementations adapt this package's
// vocabulary to a concrete media framework's bindings.
type GraphRuntime interface {
	// MakeElement instantiates a named element kind (e.g. "videosrc",
	// "x264enc") with the given properties.
	MakeElement(kind string, props map[string]any) (Element, error)

	// Link connects src's output to dst's input.
	Link(src, dst Element) error

	// SetState transitions an element (or the whole graph, when el is
	// nil) to one of the States below.
	SetState(el Element, state State) error

	// RequestPad requests a named pad from el (e.g. an encoder's "src").
	RequestPad(el Element, name string) (Pad, error)

	// AddProbe installs fn on pad and returns a handle AddProbe's caller
	// can pass to RemoveProbe.
	AddProbe(pad Pad, fn ProbeFunc) (Element, error)

	// RemoveProbe uninstalls a probe previously installed with AddProbe.
	RemoveProbe(pad Pad, probe Element) error
}

// State is a graph or element's playback state.
type State int

// Graph states.
const (
	StateNull State = iota
	StateReady
	StatePaused
	StatePlaying
)

// VideoSourceVariant selects what kind of video source element the
// pipeline builds from, per spec §6's video_src_variant configuration
// field.
type VideoSourceVariant string

// Video source variants.
const (
	VideoSourceTestPattern VideoSourceVariant = "videotestsrc"
	VideoSourceScreenCap   VideoSourceVariant = "screencap"
	VideoSourceCamera      VideoSourceVariant = "camera"
	VideoSourceFile        VideoSourceVariant = "file"
)

// Spec describes the concrete pipeline a Builder should construct for a
// negotiated session: the video source variant, audio device, encoder
// names and the negotiated audio/video configuration that constrains
// their properties.
type Spec struct {
	VideoSourceVariant VideoSourceVariant
	AudioDevice        string
	AudioLatencyTimeUs int
	AudioBufferTimeUs  int
	AudioDoTimestamp   bool

	VideoEncoderName    string
	AudioEncoderAACName string
	AudioEncoderAC3Name string

	MTUSize int

	Negotiated capability.NegotiatedConfig

	// OnVideoAccessUnit, when non-nil, is installed as a probe on the
	// video encoder's output pad - every encoded access unit it produces
	// is handed to this callback instead of being routed to another
	// GraphRuntime element, since muxing/payloading is owned outside this
	// package.
	OnVideoAccessUnit ProbeFunc

	// OnAudioAccessUnit is the audio equivalent of OnVideoAccessUnit,
	// installed on the audio encoder's output pad, or the audio source's
	// when the negotiated format carries no encode stage (LPCM).
	OnAudioAccessUnit ProbeFunc
}

// Graph is a built, running pipeline: the handles needed to tear it down
// or hot-swap its source.
type Graph struct {
	Runtime GraphRuntime

	Source  Element
	Encoder Element

	AudioSource  Element
	AudioEncoder Element

	VideoEncoderSrcPad Pad
	AudioSrcPad        Pad
}

// Builder constructs Graphs from a Spec using a GraphRuntime.
type Builder struct {
	Runtime GraphRuntime
}

// NewBuilder returns a Builder bound to runtime.
func NewBuilder(runtime GraphRuntime) *Builder {
	return &Builder{Runtime: runtime}
}

// Build constructs and starts a Graph for spec, returning
// liberrors.ErrBuildFailed wrapping the underlying failure on any error.
func (b *Builder) Build(spec Spec) (*Graph, error) {
	source, err := b.Runtime.MakeElement(string(spec.VideoSourceVariant), videoSourceProps(spec))
	if err != nil {
		return nil, liberrors.ErrBuildFailed{Stage: "video source", Err: err}
	}

	encoder, err := b.Runtime.MakeElement(spec.VideoEncoderName, encoderProps(spec))
	if err != nil {
		return nil, liberrors.ErrBuildFailed{Stage: "video encoder", Err: err}
	}

	if err := b.Runtime.Link(source, encoder); err != nil {
		return nil, liberrors.ErrBuildFailed{Stage: "link source->encoder", Err: err}
	}

	videoSrcPad, err := b.Runtime.RequestPad(encoder, "src")
	if err != nil {
		return nil, liberrors.ErrBuildFailed{Stage: "request video encoder src pad", Err: err}
	}

	if spec.OnVideoAccessUnit != nil {
		if _, err := b.Runtime.AddProbe(videoSrcPad, spec.OnVideoAccessUnit); err != nil {
			return nil, liberrors.ErrBuildFailed{Stage: "install video access-unit probe", Err: err}
		}
	}

	audioSource, audioEncoder, audioSrcPad, err := b.buildAudioPath(spec)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		Runtime:            b.Runtime,
		Source:             source,
		Encoder:            encoder,
		AudioSource:        audioSource,
		AudioEncoder:       audioEncoder,
		VideoEncoderSrcPad: videoSrcPad,
		AudioSrcPad:        audioSrcPad,
	}

	if err := b.Runtime.SetState(nil, StatePlaying); err != nil {
		return nil, liberrors.ErrBuildFailed{Stage: "set playing", Err: err}
	}

	return g, nil
}

// buildAudioPath constructs the audio source and, when the negotiated
// format needs one, an encoder, installing spec.OnAudioAccessUnit on
// whichever element produces the final access units. LPCM carries no
// encoder stage - the source's raw samples are the access units
// themselves, matching spec §4.2's treatment of LPCM as pass-through.
func (b *Builder) buildAudioPath(spec Spec) (Element, Element, Pad, error) {
	audioSource, err := b.Runtime.MakeElement(audioSourceKind(spec), audioSourceProps(spec))
	if err != nil {
		return nil, nil, nil, liberrors.ErrBuildFailed{Stage: "audio source", Err: err}
	}

	finalElement := audioSource
	var audioEncoder Element

	if encoderName := audioEncoderName(spec); encoderName != "" {
		audioEncoder, err = b.Runtime.MakeElement(encoderName, audioEncoderProps(spec))
		if err != nil {
			return nil, nil, nil, liberrors.ErrBuildFailed{Stage: "audio encoder", Err: err}
		}
		if err := b.Runtime.Link(audioSource, audioEncoder); err != nil {
			return nil, nil, nil, liberrors.ErrBuildFailed{Stage: "link audio source->encoder", Err: err}
		}
		finalElement = audioEncoder
	}

	audioSrcPad, err := b.Runtime.RequestPad(finalElement, "src")
	if err != nil {
		return nil, nil, nil, liberrors.ErrBuildFailed{Stage: "request audio src pad", Err: err}
	}

	if spec.OnAudioAccessUnit != nil {
		if _, err := b.Runtime.AddProbe(audioSrcPad, spec.OnAudioAccessUnit); err != nil {
			return nil, nil, nil, liberrors.ErrBuildFailed{Stage: "install audio access-unit probe", Err: err}
		}
	}

	return audioSource, audioEncoder, audioSrcPad, nil
}

// audioSourceKind picks the element kind for the audio capture stage,
// defaulting to a named device source when spec.AudioDevice is set.
func audioSourceKind(spec Spec) string {
	if spec.AudioDevice != "" {
		return "audiosrc"
	}
	return "audiotestsrc"
}

// audioEncoderName returns the encoder element to use for the negotiated
// audio format, or "" for formats that need no encode stage.
func audioEncoderName(spec Spec) string {
	switch spec.Negotiated.AudioFormat {
	case wfdparam.AudioAAC:
		return spec.AudioEncoderAACName
	case wfdparam.AudioAC3:
		return spec.AudioEncoderAC3Name
	default:
		return ""
	}
}

func videoSourceProps(spec Spec) map[string]any {
	return map[string]any{
		"width":     spec.Negotiated.VideoResolution.Width,
		"height":    spec.Negotiated.VideoResolution.Height,
		"framerate": spec.Negotiated.VideoResolution.FrameRate,
	}
}

func encoderProps(spec Spec) map[string]any {
	return map[string]any{
		"profile": spec.Negotiated.H264Profile,
		"level":   spec.Negotiated.H264Level,
	}
}

func audioSourceProps(spec Spec) map[string]any {
	return map[string]any{
		"device":       spec.AudioDevice,
		"latency-time": spec.AudioLatencyTimeUs,
		"buffer-time":  spec.AudioBufferTimeUs,
		"do-timestamp": spec.AudioDoTimestamp,
		"sample-rate":  spec.Negotiated.AudioFreqHz,
		"channels":     spec.Negotiated.AudioChannels,
	}
}

func audioEncoderProps(spec Spec) map[string]any {
	return map[string]any{
		"sample-rate": spec.Negotiated.AudioFreqHz,
		"channels":    spec.Negotiated.AudioChannels,
	}
}
