package wfdparam

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAudioCodecs(t *testing.T) {
	msg, err := Parse([]byte("wfd_audio_codecs: AAC 00000002 00\r\n"))
	require.NoError(t, err)
	require.Len(t, msg.AudioCodecs, 1)
	require.Equal(t, AudioAAC, msg.AudioCodecs[0].Format)
	require.Equal(t, uint32(2), msg.AudioCodecs[0].Modes)
	require.Equal(t, uint8(0), msg.AudioCodecs[0].Latency)
}

func TestParseAudioCodecsMultipleEntries(t *testing.T) {
	msg, err := Parse([]byte("wfd_audio_codecs: LPCM 00000002 00, AAC 00000001 00\r\n"))
	require.NoError(t, err)
	require.Len(t, msg.AudioCodecs, 2)
	require.Equal(t, AudioLPCM, msg.AudioCodecs[0].Format)
	require.Equal(t, AudioAAC, msg.AudioCodecs[1].Format)
}

func TestParseVideoFormatsNativeSplit(t *testing.T) {
	// native=0x08 -> index 1, family 0 (CEA): 1<<3 | 0
	line := "wfd_video_formats: 08 00 02 03 00000020 00000000 00000000 00 0000 0000 00 none none\r\n"
	msg, err := Parse([]byte(line))
	require.NoError(t, err)
	require.NotNil(t, msg.VideoFormats)
	require.Equal(t, FamilyCEA, msg.VideoFormats.NativeFamily)
	require.Equal(t, uint8(1), msg.VideoFormats.NativeIndex)
	require.Equal(t, uint32(0x20), msg.VideoFormats.CEAResolutions)
	require.Nil(t, msg.VideoFormats.MaxHRes)
	require.Nil(t, msg.VideoFormats.MaxVRes)
}

func TestParseVideoFormatsVESAFamily(t *testing.T) {
	// native=0x09 -> index 1, family 1 (VESA): (1<<3)|1 = 9
	line := "wfd_video_formats: 09 00 02 03 00000000 00000004 00000000 00 0000 0000 00 0500 02d0\r\n"
	msg, err := Parse([]byte(line))
	require.NoError(t, err)
	require.Equal(t, FamilyVESA, msg.VideoFormats.NativeFamily)
	require.Equal(t, uint8(1), msg.VideoFormats.NativeIndex)
	require.NotNil(t, msg.VideoFormats.MaxHRes)
	require.Equal(t, uint16(0x0500), *msg.VideoFormats.MaxHRes)
	require.NotNil(t, msg.VideoFormats.MaxVRes)
	require.Equal(t, uint16(0x02d0), *msg.VideoFormats.MaxVRes)
}

func TestParseVideoFormatsWrongTokenCountElided(t *testing.T) {
	msg, err := Parse([]byte("wfd_video_formats: 08 00\r\n"))
	require.NoError(t, err)
	require.Nil(t, msg.VideoFormats)
}

func TestParseContentProtectionNone(t *testing.T) {
	msg, err := Parse([]byte("wfd_content_protection: none\r\n"))
	require.NoError(t, err)
	require.NotNil(t, msg.ContentProtection)
	require.Equal(t, HDCPNone, msg.ContentProtection.HDCPVersion)
}

func TestParseContentProtectionHDCP(t *testing.T) {
	msg, err := Parse([]byte("wfd_content_protection: HDCP2.1 port=1234\r\n"))
	require.NoError(t, err)
	require.Equal(t, HDCP21, msg.ContentProtection.HDCPVersion)
	require.Equal(t, uint16(1234), msg.ContentProtection.TCPPort)
}

func TestParseDisplayEDIDNone(t *testing.T) {
	msg, err := Parse([]byte("wfd_display_edid: none\r\n"))
	require.NoError(t, err)
	require.NotNil(t, msg.DisplayEDID)
	require.False(t, msg.DisplayEDID.Supported)
}

func TestParseDisplayEDIDPayload(t *testing.T) {
	msg, err := Parse([]byte("wfd_display_edid: 0001 deadbeef\r\n"))
	require.NoError(t, err)
	require.True(t, msg.DisplayEDID.Supported)
	require.Equal(t, 1, msg.DisplayEDID.BlockCount)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, msg.DisplayEDID.Payload)
}

func TestParseDisplayEDIDLenientNibble(t *testing.T) {
	msg, err := Parse([]byte("wfd_display_edid: 0001 zzyy\r\n"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x00}, msg.DisplayEDID.Payload)
}

func TestParseClientRTPPorts(t *testing.T) {
	msg, err := Parse([]byte("wfd_client_rtp_ports: RTP/AVP/UDP;unicast 19000 0 mode=play\r\n"))
	require.NoError(t, err)
	require.NotNil(t, msg.ClientRTPPorts)
	require.Equal(t, "RTP/AVP/UDP;unicast", msg.ClientRTPPorts.Profile)
	require.Equal(t, 19000, msg.ClientRTPPorts.Port0)
	require.Equal(t, 0, msg.ClientRTPPorts.Port1)
	require.Equal(t, "mode=play", msg.ClientRTPPorts.Mode)
}

func TestParsePresentationURL(t *testing.T) {
	msg, err := Parse([]byte("wfd_presentation_URL: rtsp://192.168.1.1/wfd1.0/streamid=0 none\r\n"))
	require.NoError(t, err)
	require.Equal(t, "rtsp://192.168.1.1/wfd1.0/streamid=0", msg.PresentationURL.URL0)
	require.Equal(t, "", msg.PresentationURL.URL1)
}

func TestParseStandbyAndIDRFlagLines(t *testing.T) {
	msg, err := Parse([]byte("wfd_standby\r\nwfd_idr_request\r\n"))
	require.NoError(t, err)
	require.True(t, msg.Standby)
	require.True(t, msg.IDRRequest)
}

func TestParseMalformedLineNoColonNoKnownFlag(t *testing.T) {
	_, err := Parse([]byte("this is garbage\r\n"))
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestParseUnknownKeyIgnored(t *testing.T) {
	msg, err := Parse([]byte("wfd_some_future_field: whatever\r\n"))
	require.NoError(t, err)
	require.Nil(t, msg.AudioCodecs)
}

func TestParseBlankLinesSkipped(t *testing.T) {
	msg, err := Parse([]byte("\r\n\r\nwfd_standby\r\n\r\n"))
	require.NoError(t, err)
	require.True(t, msg.Standby)
}
