package mpegts

import (
	"context"
	"testing"
	"time"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"
	"github.com/stretchr/testify/require"
)

func TestPacketSinkBuffersCompletePackets(t *testing.T) {
	s := &packetSink{}

	n, err := s.Write(make([]byte, 100))
	require.NoError(t, err)
	require.Equal(t, 100, n)
	require.Empty(t, s.drain())

	_, err = s.Write(make([]byte, 300))
	require.NoError(t, err)
	pkts := s.drain()
	require.Len(t, pkts, 2)
	require.Len(t, pkts[0], packetSize)

	require.Empty(t, s.drain())
}

func TestAudioStreamTypeMapping(t *testing.T) {
	require.Equal(t, streamTypeLPCMAudio, AudioStreamTypeLPCM.astits())
}

func nalu(typ h264.NALUType, rest ...byte) []byte {
	return append([]byte{byte(typ)}, rest...)
}

func annexB(nalus ...[]byte) []byte {
	var au h264.AnnexB = nalus
	enc, err := au.Marshal()
	if err != nil {
		panic(err)
	}
	return enc
}

func TestWriteVideoDropsNonIDRBeforeFirstKeyframe(t *testing.T) {
	m := NewMuxer(context.Background(), AudioStreamTypeAAC, nil)

	pkts, err := m.WriteVideo(annexB(nalu(h264.NALUTypeNonIDR, 1, 2, 3)), 0)
	require.NoError(t, err)
	require.Empty(t, pkts)
}

func TestWriteVideoProducesPacketsAfterSPSPPSAndIDR(t *testing.T) {
	m := NewMuxer(context.Background(), AudioStreamTypeAAC, nil)

	sps := nalu(h264.NALUTypeSPS,
		0x42, 0xc0, 0x28, 0xd9, 0x00, 0x78, 0x02, 0x27,
		0xe5, 0x84, 0x00, 0x00, 0x03, 0x00, 0x04, 0x00,
		0x00, 0x03, 0x00, 0xf0, 0x3c, 0x60, 0xc9, 0x20)
	pps := nalu(h264.NALUTypePPS, 0xce)
	idr := nalu(h264.NALUTypeIDR, 1, 2, 3, 4, 5)

	pkts, err := m.WriteVideo(annexB(sps, pps, idr), 0)
	require.NoError(t, err)
	require.NotEmpty(t, pkts)
	require.Len(t, pkts[0], packetSize)
}

func TestWriteAudioWrapsAACInADTS(t *testing.T) {
	cfg := &mpeg4audio.Config{
		Type:         mpeg4audio.ObjectTypeAACLC,
		SampleRate:   48000,
		ChannelCount: 2,
	}
	m := NewMuxer(context.Background(), AudioStreamTypeAAC, cfg)

	pkts, err := m.WriteAudio([]byte{1, 2, 3, 4}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, pkts)
}

func TestWriteAudioPassesThroughLPCMUnwrapped(t *testing.T) {
	m := NewMuxer(context.Background(), AudioStreamTypeLPCM, nil)

	pkts, err := m.WriteAudio(make([]byte, 64), time.Millisecond)
	require.NoError(t, err)
	require.NotEmpty(t, pkts)
}
