// Package capability models each side's WFD capability set and the
// negotiation rule that reduces a (source, sink) pair to one concrete
// NegotiatedConfig - the part of the handshake that has nothing to do
// with RTSP message framing and everything to do with bitmap arithmetic.
package capability

import "github.com/go-wfd/wfdsource/pkg/wfdparam"

// Capability is one side's advertised set of supported audio/video modes,
// derived directly from a parsed wfd_audio_codecs/wfd_video_formats pair.
type Capability struct {
	AudioCodecs  []wfdparam.AudioCodec
	VideoFamily  wfdparam.ResolutionFamily
	VideoBitmaps map[wfdparam.ResolutionFamily]uint32
	H264Profile  uint8
	H264Level    uint8
}

// NegotiatedConfig is the single concrete audio/video mode both sides
// agreed on - what the pipeline builder (C4) is configured from.
type NegotiatedConfig struct {
	AudioFormat  wfdparam.AudioFormat
	AudioFreqHz  int
	AudioChannels int

	VideoFamily          wfdparam.ResolutionFamily
	VideoResolution      Resolution
	VideoResolutionIndex uint8
	H264Profile          uint8
	H264Level            uint8
}

// audio mode bit meanings, fixed by the WFD dialect (spec §4.2).
const (
	lpcmFreq48000 = 1 << 1
	lpcmFreq44100 = 1 << 0

	aacChannels2 = 1 << 0

	ac3Channels2 = 1 << 0
)

var audioPriority = []wfdparam.AudioFormat{
	wfdparam.AudioLPCM,
	wfdparam.AudioAAC,
	wfdparam.AudioAC3,
}
