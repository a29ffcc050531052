package capability

import (
	"github.com/go-wfd/wfdsource/pkg/liberrors"
	"github.com/go-wfd/wfdsource/pkg/wfdparam"
)

// H.264 is fixed to baseline profile, level 3.1 regardless of what either
// side advertises - the negotiation simplification this module always
// applies (capability intersection still runs over audio/video modes and
// resolution, but never over profile/level).
const (
	H264ProfileBaseline uint8 = 0x01
	H264Level31         uint8 = 0x02
)

// videoFamilyPriority is the order families are tried in when looking for
// a common resolution: CEA first, then VESA, then handheld.
var videoFamilyPriority = []wfdparam.ResolutionFamily{
	wfdparam.FamilyCEA,
	wfdparam.FamilyVESA,
	wfdparam.FamilyHH,
}

// Intersect reduces a source and sink capability pair to the single
// concrete configuration both sides can run, per spec §4.2. It returns
// liberrors.ErrNegotiationFailed when no audio format or no video
// resolution is common to both sides.
func Intersect(source, sink Capability) (NegotiatedConfig, error) {
	audioFormat, freq, channels, err := intersectAudio(source.AudioCodecs, sink.AudioCodecs)
	if err != nil {
		return NegotiatedConfig{}, err
	}

	family, res, idx, err := intersectVideo(source.VideoBitmaps, sink.VideoBitmaps)
	if err != nil {
		return NegotiatedConfig{}, err
	}

	return NegotiatedConfig{
		AudioFormat:          audioFormat,
		AudioFreqHz:          freq,
		AudioChannels:        channels,
		VideoFamily:          family,
		VideoResolution:      res,
		VideoResolutionIndex: idx,
		H264Profile:          H264ProfileBaseline,
		H264Level:            H264Level31,
	}, nil
}

func intersectAudio(source, sink []wfdparam.AudioCodec) (wfdparam.AudioFormat, int, int, error) {
	sinkByFormat := make(map[wfdparam.AudioFormat]wfdparam.AudioCodec, len(sink))
	for _, c := range sink {
		sinkByFormat[c.Format] = c
	}

	for _, format := range audioPriority {
		var srcCodec wfdparam.AudioCodec
		found := false
		for _, c := range source {
			if c.Format == format {
				srcCodec = c
				found = true
				break
			}
		}
		if !found {
			continue
		}
		sinkCodec, ok := sinkByFormat[format]
		if !ok {
			continue
		}

		modes := srcCodec.Modes & sinkCodec.Modes
		if modes == 0 {
			continue
		}

		freq, channels := resolveAudioModes(format, modes)
		return format, freq, channels, nil
	}

	return "", 0, 0, liberrors.ErrNegotiationFailed{Reason: "no common audio codec"}
}

// resolveAudioModes turns a negotiated modes bitmap into a concrete
// frequency/channel pair. LPCM's bitmap is a frequency selector (48000
// preferred over 44100); AAC/AC3's bitmap is a channel-count selector, but
// this module always clamps the negotiated channel count to 2 (spec §9
// Open Questions: multichannel passthrough is not implemented).
func resolveAudioModes(format wfdparam.AudioFormat, modes uint32) (int, int) {
	if format == wfdparam.AudioLPCM {
		if modes&lpcmFreq48000 != 0 {
			return 48000, 2
		}
		return 44100, 2
	}
	return 48000, 2
}

func intersectVideo(source, sink map[wfdparam.ResolutionFamily]uint32) (wfdparam.ResolutionFamily, Resolution, uint8, error) {
	for _, family := range videoFamilyPriority {
		common := source[family] & sink[family]
		if common == 0 {
			continue
		}
		idx := highestSetBit(common)
		if idx < 0 {
			continue
		}
		res, ok := LookupResolution(family, uint8(idx))
		if !ok {
			continue
		}
		return family, res, uint8(idx), nil
	}

	return 0, Resolution{}, 0, liberrors.ErrNegotiationFailed{Reason: "no common video resolution"}
}
