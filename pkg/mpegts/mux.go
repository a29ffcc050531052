// Package mpegts multiplexes a negotiated audio/video pipeline's encoded
// access units into MPEG-TS, using go-astits, with the fixed elementary
// PIDs WFD requires: video on 0x1011, audio on 0x1100.
package mpegts

import (
	"context"
	"time"

	"github.com/asticode/go-astits"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"
)

// Fixed elementary PIDs, WFD dialect.
const (
	VideoPID = 0x1011
	AudioPID = 0x1100
)

// AudioStreamType selects the PMT stream type for the negotiated audio
// codec.
type AudioStreamType int

// Audio stream types the muxer can carry.
const (
	AudioStreamTypeAAC AudioStreamType = iota
	AudioStreamTypeAC3
	AudioStreamTypeLPCM
)

// streamTypeLPCMAudio is the private MPEG-TS stream type WFD uses for
// raw LPCM audio; go-astits has no named constant for it.
const streamTypeLPCMAudio astits.StreamType = 0x83

func (t AudioStreamType) astits() astits.StreamType {
	switch t {
	case AudioStreamTypeAC3:
		return astits.StreamTypeAC3Audio
	case AudioStreamTypeLPCM:
		return streamTypeLPCMAudio
	default:
		return astits.StreamTypeAACAudio
	}
}

// Muxer wraps an astits.Muxer configured with WFD's fixed PIDs, writing
// complete 188-byte TS packets to a packetSink as they are produced so a
// caller can hand them straight to the RTP payloader.
type Muxer struct {
	astitsMux *astits.Muxer
	sink      *packetSink

	sps, pps     []byte
	dtsExtractor *h264.DTSExtractor

	audioConfig *mpeg4audio.Config
}

// NewMuxer allocates a Muxer. audioType selects the PMT audio stream type;
// pass it after negotiation decides the audio codec. audioConfig is only
// consulted when audioType is AudioStreamTypeAAC, to wrap access units in
// ADTS headers before muxing.
func NewMuxer(ctx context.Context, audioType AudioStreamType, audioConfig *mpeg4audio.Config) *Muxer {
	sink := &packetSink{}

	mux := astits.NewMuxer(ctx, sink)
	mux.AddElementaryStream(astits.PMTElementaryStream{
		ElementaryPID: VideoPID,
		StreamType:    astits.StreamTypeH264Video,
	})
	mux.AddElementaryStream(astits.PMTElementaryStream{
		ElementaryPID: AudioPID,
		StreamType:    audioType.astits(),
	})
	mux.SetPCRPID(VideoPID)

	return &Muxer{astitsMux: mux, sink: sink, audioConfig: audioConfig}
}

// WriteVideo splits an Annex-B H.264 access unit into NALUs, caches SPS/PPS,
// prepends them ahead of every IDR, extracts the DTS and muxes the result
// as a PES packet on the video PID. Non-IDR access units with no cached
// SPS/PPS yet are dropped, mirroring the teacher's save-to-disk encoders.
func (m *Muxer) WriteVideo(annexB []byte, pts time.Duration) ([][]byte, error) {
	var nalus h264.AnnexB
	if err := nalus.Unmarshal(annexB); err != nil {
		return nil, err
	}

	filtered := make([][]byte, 0, len(nalus)+2)
	idrPresent := false
	nonIDRPresent := false

	for _, nalu := range nalus {
		switch h264.NALUType(nalu[0] & 0x1F) {
		case h264.NALUTypeSPS:
			m.sps = nalu
			continue
		case h264.NALUTypePPS:
			m.pps = nalu
			continue
		case h264.NALUTypeIDR:
			idrPresent = true
		case h264.NALUTypeNonIDR:
			nonIDRPresent = true
		}
		filtered = append(filtered, nalu)
	}

	if len(filtered) == 0 || (!idrPresent && !nonIDRPresent) {
		return nil, nil
	}

	if idrPresent {
		if m.sps == nil || m.pps == nil {
			return nil, nil
		}
		filtered = append([][]byte{m.sps, m.pps}, filtered...)
	}

	if m.dtsExtractor == nil {
		if !idrPresent {
			return nil, nil
		}
		m.dtsExtractor = h264.NewDTSExtractor()
	}

	ptsTicks := int64(pts.Seconds() * 90000)

	dts, err := m.dtsExtractor.Extract(filtered, ptsTicks)
	if err != nil {
		return nil, err
	}

	var au h264.AnnexB = filtered
	enc, err := au.Marshal()
	if err != nil {
		return nil, err
	}

	_, err = m.astitsMux.WriteData(&astits.MuxerData{
		PID: VideoPID,
		AdaptationField: &astits.PacketAdaptationField{
			RandomAccessIndicator: idrPresent,
		},
		PES: &astits.PESData{
			Header: &astits.PESHeader{
				OptionalHeader: &astits.PESOptionalHeader{
					MarkerBits:      2,
					PTSDTSIndicator: astits.PTSDTSIndicatorBothPresent,
					PTS:             &astits.ClockReference{Base: ptsTicks},
					DTS:             &astits.ClockReference{Base: dts},
				},
				StreamID: 224, // video
			},
			Data: enc,
		},
	})
	if err != nil {
		return nil, err
	}
	return m.sink.drain(), nil
}

// WriteAudio muxes one encoded audio access unit as a PES packet on the
// audio PID, wrapping it in an ADTS header first when the muxer was built
// for AAC.
func (m *Muxer) WriteAudio(au []byte, pts time.Duration) ([][]byte, error) {
	data := au

	if m.audioConfig != nil {
		pkts := mpeg4audio.ADTSPackets{
			{
				Type:         m.audioConfig.Type,
				SampleRate:   m.audioConfig.SampleRate,
				ChannelCount: m.audioConfig.ChannelCount,
				AU:           au,
			},
		}
		enc, err := pkts.Marshal()
		if err != nil {
			return nil, err
		}
		data = enc
	}

	_, err := m.astitsMux.WriteData(&astits.MuxerData{
		PID: AudioPID,
		AdaptationField: &astits.PacketAdaptationField{
			RandomAccessIndicator: true,
		},
		PES: &astits.PESData{
			Header: &astits.PESHeader{
				OptionalHeader: &astits.PESOptionalHeader{
					MarkerBits:      2,
					PTSDTSIndicator: astits.PTSDTSIndicatorOnlyPTS,
					PTS:             &astits.ClockReference{Base: int64(pts.Seconds() * 90000)},
				},
				StreamID: 192, // audio
			},
			Data: data,
		},
	})
	if err != nil {
		return nil, err
	}
	return m.sink.drain(), nil
}

// WritePAT writes the program association/map tables. It is called once
// at stream start; a hot-swap does not write them again.
func (m *Muxer) WritePAT() ([][]byte, error) {
	if _, err := m.astitsMux.WriteTables(); err != nil {
		return nil, err
	}
	return m.sink.drain(), nil
}

// packetSink is an io.Writer that buffers whole 188-byte TS packets as
// astits writes them, so they can be handed directly to the RTP
// payloader instead of round-tripping through a file.
type packetSink struct {
	pending []byte
	packets [][]byte
}

func (s *packetSink) Write(p []byte) (int, error) {
	s.pending = append(s.pending, p...)
	for len(s.pending) >= packetSize {
		pkt := make([]byte, packetSize)
		copy(pkt, s.pending[:packetSize])
		s.packets = append(s.packets, pkt)
		s.pending = s.pending[packetSize:]
	}
	return len(p), nil
}

func (s *packetSink) drain() [][]byte {
	out := s.packets
	s.packets = nil
	return out
}

const packetSize = 188
