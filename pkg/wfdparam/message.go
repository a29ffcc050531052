// Package wfdparam implements the Wi-Fi Display "wfd_*" parameter-line
// dialect: the non-SDP capability/control document exchanged during the
// M1-M5 handshake. It is a dedicated codec in the same spirit as
// gortsplib's pkg/sdp, except the wire format here is a flat set of
// "key: value" lines rather than SDP attribute records.
package wfdparam

// HDCPVersion enumerates the content-protection versions WFD negotiates.
type HDCPVersion int

// HDCP versions.
const (
	HDCPNone HDCPVersion = iota
	HDCP20
	HDCP21
)

// TriggerMethod is the control verb a SET_PARAMETER trigger requests from
// the sink.
type TriggerMethod string

// Trigger methods.
const (
	TriggerSetup    TriggerMethod = "SETUP"
	TriggerPause    TriggerMethod = "PAUSE"
	TriggerPlay     TriggerMethod = "PLAY"
	TriggerTeardown TriggerMethod = "TEARDOWN"
)

// AudioFormat is the audio codec family.
type AudioFormat string

// Audio formats.
const (
	AudioLPCM AudioFormat = "LPCM"
	AudioAAC  AudioFormat = "AAC"
	AudioAC3  AudioFormat = "AC3"
)

// AudioCodec is one entry of a wfd_audio_codecs line. Modes is a bitmap
// whose meaning depends on Format: a frequency bitmap for LPCM, a channel
// bitmap for AAC/AC3.
type AudioCodec struct {
	Format  AudioFormat
	Modes   uint32
	Latency uint8
}

// VideoFormats is the (always singular, per the WFD spec) H.264 video
// descriptor carried by wfd_video_formats.
type VideoFormats struct {
	// NativeFamily/NativeIndex split the wire "native" byte: 3-bit family
	// tag {CEA=0, VESA=1, HH=2} and 5-bit index meaning 1<<index within
	// that family's resolution bitmap.
	NativeFamily ResolutionFamily
	NativeIndex  uint8

	PreferredDisplayMode uint8
	Profile              uint8
	Level                uint8

	CEAResolutions      uint32
	VESAResolutions     uint32
	HandheldResolutions uint32

	Latency        uint8
	MinSliceSize   uint16
	SliceEncParams uint16
	FrameRateCtrl  uint8

	// MaxHRes/MaxVRes are nil when the wire value is the literal "none".
	MaxHRes *uint16
	MaxVRes *uint16
}

// ResolutionFamily is one of the three disjoint WFD resolution tables.
type ResolutionFamily uint8

// Resolution families.
const (
	FamilyCEA ResolutionFamily = 0
	FamilyVESA ResolutionFamily = 1
	FamilyHH   ResolutionFamily = 2
)

// ContentProtection carries the negotiated HDCP version and TCP sideband
// port; the HDCP handshake itself is out of scope (spec §1).
type ContentProtection struct {
	HDCPVersion HDCPVersion
	TCPPort     uint16
}

// DisplayEDID carries the sink's optional EDID block payload.
type DisplayEDID struct {
	Supported  bool
	BlockCount int
	Payload    []byte // len == 128*BlockCount
}

// CoupledSink describes a secondary sink paired with the primary one.
type CoupledSink struct {
	Status  uint8
	Address string
}

// ClientRTPPorts is the sink's requested RTP port pair.
type ClientRTPPorts struct {
	Profile string // e.g. "RTP/AVP/UDP;unicast"
	Port0   int
	Port1   int
	Mode    string // e.g. "mode=play"
}

// PresentationURL carries the two optional stream presentation URLs.
type PresentationURL struct {
	URL0 string
	URL1 string
}

// AVFormatChangeTiming carries the PTS/DTS of an upcoming format switch.
type AVFormatChangeTiming struct {
	PTS uint64
	DTS uint64
}

// Message is a parsed WFD capability/control document: an ordered bag of
// optional fields, each present-or-absent rather than a fixed record, as
// required by spec §3.
type Message struct {
	AudioCodecs         []AudioCodec
	VideoFormats        *VideoFormats
	ContentProtection   *ContentProtection
	DisplayEDID         *DisplayEDID
	CoupledSink         *CoupledSink
	TriggerMethod       *TriggerMethod
	PresentationURL     *PresentationURL
	ClientRTPPorts      *ClientRTPPorts
	Route               *string
	I2C                 *uint16
	AVFormatChangeTiming *AVFormatChangeTiming
	PreferredDisplayMode *uint32
	StandbyResumeCapability *bool
	Standby             bool
	ConnectorType       *uint8
	IDRRequest          bool

	// UIBCCapability and ThreeDFormats are supplemented fields (SPEC_FULL
	// §7): parsed and round-tripped, never acted upon.
	UIBCCapability *string
	ThreeDFormats  *string
}

// FieldKey names one wfd_* parameter line, used both to drive the
// parameter-names-only (M3 probe) emitter and to look keys up in Parse.
type FieldKey string

// Field keys, exact wire spelling per spec §6.
const (
	FieldAudioCodecs         FieldKey = "wfd_audio_codecs"
	FieldVideoFormats        FieldKey = "wfd_video_formats"
	FieldContentProtection   FieldKey = "wfd_content_protection"
	FieldDisplayEDID         FieldKey = "wfd_display_edid"
	FieldCoupledSink         FieldKey = "wfd_coupled_sink"
	FieldTriggerMethod       FieldKey = "wfd_trigger_method"
	FieldPresentationURL    FieldKey = "wfd_presentation_URL"
	FieldClientRTPPorts      FieldKey = "wfd_client_rtp_ports"
	FieldRoute               FieldKey = "wfd_route"
	FieldI2C                 FieldKey = "wfd_I2C"
	FieldAVFormatChangeTiming FieldKey = "wfd_av_format_change_timing"
	FieldPreferredDisplayMode FieldKey = "wfd_preferred_display_mode"
	FieldStandbyResumeCapability FieldKey = "wfd_standby_resume_capability"
	FieldStandby             FieldKey = "wfd_standby"
	FieldConnectorType       FieldKey = "wfd_connector_type"
	FieldIDRRequest          FieldKey = "wfd_idr_request"
	FieldUIBCCapability      FieldKey = "wfd_uibc_capability"
	Field3DFormats           FieldKey = "wfd_3d_formats"
)
