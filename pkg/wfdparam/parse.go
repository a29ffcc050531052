package wfdparam

import (
	"errors"
	"strconv"
	"strings"
)

// ErrMalformedHeader is returned when a line cannot be split into
// "key: value" at all - the only parse failure spec §4.1 treats as fatal
// to the whole message. Every other ambiguity (a bad token inside an
// otherwise-recognized field) is silently elided: the field is left unset.
var ErrMalformedHeader = errors.New("wfdparam: malformed header line")

func parseHexUint(tok string, bits int) (uint64, bool) {
	v, err := strconv.ParseUint(tok, 16, bits)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseDecUint(tok string, bits int) (uint64, bool) {
	v, err := strconv.ParseUint(tok, 10, bits)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Parse decodes a WFD parameter document from raw bytes. Lines are split
// on LF or CRLF (a lone CR does not end a line); each non-empty line must
// contain a top-level "key:
// value" (or bare "key" for flag-only lines). Unknown keys are ignored.
func Parse(data []byte) (*Message, error) {
	msg := &Message{}

	for _, rawLine := range splitLines(data) {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		key, value, hasColon := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if !hasColon {
			// flag-only lines (wfd_standby, wfd_idr_request) have no colon.
			switch FieldKey(key) {
			case FieldStandby:
				msg.Standby = true
				continue
			case FieldIDRRequest:
				msg.IDRRequest = true
				continue
			default:
				return nil, ErrMalformedHeader
			}
		}

		applyField(msg, FieldKey(key), value)
	}

	return msg, nil
}

func splitLines(data []byte) []string {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(s, "\n")
}

func fields(value string) []string {
	return strings.Fields(value)
}

func applyField(msg *Message, key FieldKey, value string) { //nolint:gocyclo
	switch key {
	case FieldAudioCodecs:
		msg.AudioCodecs = parseAudioCodecs(value)

	case FieldVideoFormats:
		if vf := parseVideoFormats(value); vf != nil {
			msg.VideoFormats = vf
		}

	case FieldContentProtection:
		if cp := parseContentProtection(value); cp != nil {
			msg.ContentProtection = cp
		}

	case FieldDisplayEDID:
		if edid := parseDisplayEDID(value); edid != nil {
			msg.DisplayEDID = edid
		}

	case FieldCoupledSink:
		if cs := parseCoupledSink(value); cs != nil {
			msg.CoupledSink = cs
		}

	case FieldTriggerMethod:
		tm := TriggerMethod(strings.TrimSpace(value))
		msg.TriggerMethod = &tm

	case FieldPresentationURL:
		toks := fields(value)
		if len(toks) >= 2 {
			p := &PresentationURL{URL0: noneAsEmpty(toks[0]), URL1: noneAsEmpty(toks[1])}
			msg.PresentationURL = p
		}

	case FieldClientRTPPorts:
		if rp := parseClientRTPPorts(value); rp != nil {
			msg.ClientRTPPorts = rp
		}

	case FieldRoute:
		v := value
		msg.Route = &v

	case FieldI2C:
		if value == "none" {
			return
		}
		if v, ok := parseHexUint(value, 16); ok {
			v16 := uint16(v)
			msg.I2C = &v16
		}

	case FieldAVFormatChangeTiming:
		toks := fields(value)
		if len(toks) >= 2 {
			pts, ok1 := parseHexUint(toks[0], 64)
			dts, ok2 := parseHexUint(toks[1], 64)
			if ok1 && ok2 {
				msg.AVFormatChangeTiming = &AVFormatChangeTiming{PTS: pts, DTS: dts}
			}
		}

	case FieldPreferredDisplayMode:
		if v, ok := parseHexUint(value, 32); ok {
			v32 := uint32(v)
			msg.PreferredDisplayMode = &v32
		}

	case FieldStandbyResumeCapability:
		v := value == "1" || strings.EqualFold(value, "true")
		msg.StandbyResumeCapability = &v

	case FieldConnectorType:
		if v, ok := parseHexUint(value, 8); ok {
			v8 := uint8(v)
			msg.ConnectorType = &v8
		}

	case FieldUIBCCapability:
		v := value
		msg.UIBCCapability = &v

	case Field3DFormats:
		v := value
		msg.ThreeDFormats = &v
	}
}

func noneAsEmpty(tok string) string {
	if tok == "none" {
		return ""
	}
	return tok
}

func parseAudioCodecs(value string) []AudioCodec {
	var out []AudioCodec
	for _, entry := range strings.Split(value, ",") {
		toks := fields(entry)
		if len(toks) != 3 {
			continue
		}
		modes, ok1 := parseHexUint(toks[1], 32)
		latency, ok2 := parseHexUint(toks[2], 8)
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, AudioCodec{
			Format:  AudioFormat(toks[0]),
			Modes:   uint32(modes),
			Latency: uint8(latency),
		})
	}
	return out
}

func parseVideoFormats(value string) *VideoFormats {
	toks := fields(value)
	if len(toks) != 13 {
		return nil
	}

	native, ok := parseHexUint(toks[0], 8)
	if !ok {
		return nil
	}
	prefMode, ok := parseHexUint(toks[1], 8)
	if !ok {
		return nil
	}
	profile, ok := parseHexUint(toks[2], 8)
	if !ok {
		return nil
	}
	level, ok := parseHexUint(toks[3], 8)
	if !ok {
		return nil
	}
	cea, ok := parseHexUint(toks[4], 32)
	if !ok {
		return nil
	}
	vesa, ok := parseHexUint(toks[5], 32)
	if !ok {
		return nil
	}
	hh, ok := parseHexUint(toks[6], 32)
	if !ok {
		return nil
	}
	latency, ok := parseHexUint(toks[7], 8)
	if !ok {
		return nil
	}
	minSlice, ok := parseHexUint(toks[8], 16)
	if !ok {
		return nil
	}
	sliceEnc, ok := parseHexUint(toks[9], 16)
	if !ok {
		return nil
	}
	frameCtl, ok := parseHexUint(toks[10], 8)
	if !ok {
		return nil
	}

	var maxH, maxV *uint16
	if toks[11] != "none" {
		if v, ok := parseHexUint(toks[11], 16); ok {
			v16 := uint16(v)
			maxH = &v16
		}
	}
	if toks[12] != "none" {
		if v, ok := parseHexUint(toks[12], 16); ok {
			v16 := uint16(v)
			maxV = &v16
		}
	}

	return &VideoFormats{
		NativeFamily:         ResolutionFamily(native & 0x07),
		NativeIndex:          uint8(native >> 3),
		PreferredDisplayMode: uint8(prefMode),
		Profile:              uint8(profile),
		Level:                uint8(level),
		CEAResolutions:       uint32(cea),
		VESAResolutions:      uint32(vesa),
		HandheldResolutions:  uint32(hh),
		Latency:              uint8(latency),
		MinSliceSize:         uint16(minSlice),
		SliceEncParams:       uint16(sliceEnc),
		FrameRateCtrl:        uint8(frameCtl),
		MaxHRes:              maxH,
		MaxVRes:              maxV,
	}
}

func parseContentProtection(value string) *ContentProtection {
	if value == "none" {
		return &ContentProtection{HDCPVersion: HDCPNone}
	}

	toks := fields(value)
	if len(toks) != 2 {
		return nil
	}

	var ver HDCPVersion
	switch toks[0] {
	case "HDCP2.0":
		ver = HDCP20
	case "HDCP2.1":
		ver = HDCP21
	default:
		return nil
	}

	portStr, ok := strings.CutPrefix(toks[1], "port=")
	if !ok {
		return nil
	}
	port, ok := parseDecUint(portStr, 16)
	if !ok {
		return nil
	}

	return &ContentProtection{HDCPVersion: ver, TCPPort: uint16(port)}
}

func parseDisplayEDID(value string) *DisplayEDID {
	if value == "none" {
		return &DisplayEDID{Supported: false}
	}

	toks := fields(value)
	if len(toks) != 2 {
		return nil
	}

	blockCount, ok := parseHexUint(toks[0], 16)
	if !ok || blockCount < 1 || blockCount > 256 {
		return nil
	}

	payload := decodeHexPayloadLenient(toks[1])
	return &DisplayEDID{
		Supported:  true,
		BlockCount: int(blockCount),
		Payload:    payload,
	}
}

func parseCoupledSink(value string) *CoupledSink {
	if value == "none" {
		return &CoupledSink{}
	}
	toks := fields(value)
	if len(toks) != 2 {
		return nil
	}
	status, ok := parseHexUint(toks[0], 8)
	if !ok {
		return nil
	}
	return &CoupledSink{Status: uint8(status), Address: toks[1]}
}

func parseClientRTPPorts(value string) *ClientRTPPorts {
	toks := fields(value)
	if len(toks) != 4 {
		return nil
	}
	port0, ok1 := parseDecUint(toks[1], 32)
	port1, ok2 := parseDecUint(toks[2], 32)
	if !ok1 || !ok2 {
		return nil
	}
	return &ClientRTPPorts{
		Profile: toks[0],
		Port0:   int(port0),
		Port1:   int(port1),
		Mode:    toks[3],
	}
}
