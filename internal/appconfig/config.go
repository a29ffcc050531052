// Package appconfig loads the source daemon's YAML configuration using
// viper, the way firestige-Otus's internal/config package does for its
// own capture-agent.* root key.
package appconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/go-wfd/wfdsource"
	"github.com/go-wfd/wfdsource/internal/wfdlog"
	"github.com/go-wfd/wfdsource/pkg/capability"
	"github.com/go-wfd/wfdsource/pkg/wfdparam"
)

// AppConfig is the top-level wfdsourced.yaml document: the source's own
// advertised capability set plus the Server/Log configuration it is
// built from.
type AppConfig struct {
	Server wfdsource.Config `mapstructure:"server"`
	Log    wfdlog.Config    `mapstructure:"log"`
	Source SourceCapability `mapstructure:"source"`
}

// SourceCapability is the source's own wfd_audio_codecs/wfd_video_formats
// advertisement, the half of the negotiation that isn't learned from the
// sink - expressed as YAML-friendly scalars rather than the wire bitmaps
// directly.
type SourceCapability struct {
	AudioCodecs []AudioCodecEntry `mapstructure:"audio_codecs"`

	VideoFamily         wfdparam.ResolutionFamily `mapstructure:"video_family"`
	VideoCEABitmap      uint32                    `mapstructure:"video_cea_bitmap"`
	VideoVESABitmap     uint32                    `mapstructure:"video_vesa_bitmap"`
	VideoHandheldBitmap uint32                    `mapstructure:"video_handheld_bitmap"`
}

// AudioCodecEntry is one entry of SourceCapability.AudioCodecs.
type AudioCodecEntry struct {
	Format  wfdparam.AudioFormat `mapstructure:"format"`
	Modes   uint32               `mapstructure:"modes"`
	Latency uint8                `mapstructure:"latency"`
}

// ToCapability renders SourceCapability as the capability.Capability the
// root Server is constructed with.
func (sc SourceCapability) ToCapability() capability.Capability {
	codecs := make([]wfdparam.AudioCodec, 0, len(sc.AudioCodecs))
	for _, e := range sc.AudioCodecs {
		codecs = append(codecs, wfdparam.AudioCodec{
			Format:  e.Format,
			Modes:   e.Modes,
			Latency: e.Latency,
		})
	}

	return capability.Capability{
		AudioCodecs: codecs,
		VideoFamily: sc.VideoFamily,
		VideoBitmaps: map[wfdparam.ResolutionFamily]uint32{
			wfdparam.FamilyCEA:  sc.VideoCEABitmap,
			wfdparam.FamilyVESA: sc.VideoVESABitmap,
			wfdparam.FamilyHH:   sc.VideoHandheldBitmap,
		},
		H264Profile: capability.H264ProfileBaseline,
		H264Level:   capability.H264Level31,
	}
}

// Load reads the YAML file at path, applying defaults and environment
// variable overrides under the WFDSOURCED_ prefix.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("appconfig: read config file: %w", err)
	}

	v.SetEnvPrefix("wfdsourced")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("appconfig: unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", "0.0.0.0:7236")
	v.SetDefault("server.mtu_size", 1316)
	v.SetDefault("server.video_src_variant", "videotestsrc")
	v.SetDefault("server.rtp_port_low", wfdsource.DefaultRTPPortLow)
	v.SetDefault("server.rtp_port_high", wfdsource.DefaultRTPPortHigh)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("source.video_family", wfdparam.FamilyCEA)
	v.SetDefault("source.video_cea_bitmap", 1)
}
