package wfdsource

import (
	"io"

	"github.com/go-wfd/wfdsource/pkg/pipeline"
	"github.com/go-wfd/wfdsource/pkg/wfdparam"
)

// Config is the full set of knobs a Server is built from - the CLI/YAML
// surface spec §6 names, plus the idle-session reap timeout supplemented
// from original_source (SPEC_FULL §7).
type Config struct {
	// ListenAddr is the TCP address the source's RTSP listener binds to.
	ListenAddr string `mapstructure:"listen_addr"`

	VideoSrcVariant pipeline.VideoSourceVariant `mapstructure:"video_src_variant"`
	AudioDevice     string                      `mapstructure:"audio_device"`

	AudioLatencyTimeUs int  `mapstructure:"audio_latency_time"`
	AudioBufferTimeUs  int  `mapstructure:"audio_buffer_time"`
	AudioDoTimestamp   bool `mapstructure:"audio_do_timestamp"`

	MTUSize int `mapstructure:"mtu_size"`

	VideoEncoderName    string `mapstructure:"video_encoder_name"`
	AudioEncoderAACName string `mapstructure:"audio_encoder_aac_name"`
	AudioEncoderAC3Name string `mapstructure:"audio_encoder_ac3_name"`

	// DumpTS, when set, receives a copy of every muxed MPEG-TS packet -
	// the supplemented dump_ts debug hook (SPEC_FULL §7), an io.Writer in
	// place of the hardcoded probe file path it replaces.
	DumpTS io.Writer `mapstructure:"-"`

	NegotiatedResolution   string                     `mapstructure:"negotiated_resolution"`
	AudioCodec             wfdparam.AudioFormat        `mapstructure:"audio_codec"`
	HostAddress            string                     `mapstructure:"host_address"`
	VideoResolutionSupported map[wfdparam.ResolutionFamily]uint32 `mapstructure:"-"`
	VideoNativeResolution  uint8                      `mapstructure:"video_native_resolution"`

	RTPPortLow  int `mapstructure:"rtp_port_low"`
	RTPPortHigh int `mapstructure:"rtp_port_high"`

	IdleSessionTimeout int `mapstructure:"idle_session_timeout_seconds"`
}

// withDefaults fills in zero-valued fields with the package defaults.
func (c Config) withDefaults() Config {
	if c.MTUSize == 0 {
		c.MTUSize = 1316
	}
	if c.RTPPortLow == 0 {
		c.RTPPortLow = DefaultRTPPortLow
	}
	if c.RTPPortHigh == 0 {
		c.RTPPortHigh = DefaultRTPPortHigh
	}
	if c.VideoSrcVariant == "" {
		c.VideoSrcVariant = pipeline.VideoSourceTestPattern
	}
	if c.IdleSessionTimeout == 0 {
		c.IdleSessionTimeout = int(SessionIdleTimeout.Seconds())
	}
	return c
}
