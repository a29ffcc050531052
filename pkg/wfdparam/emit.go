package wfdparam

import (
	"fmt"
	"strconv"
	"strings"
)

func hex(v uint64, width int) string {
	return fmt.Sprintf("%0*x", width, v)
}

// EmitNames renders a parameter-names-only document: one line per key,
// no value - the body of the source's M3 probe request (spec §4.3).
func EmitNames(keys ...FieldKey) []byte {
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(string(k))
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}

// EmitFull renders every present field of m as a canonical "key: value"
// document, CR/LF terminated, with the exact token widths of spec §6.
// parse(EmitFull(m)) reproduces every field Parse recognizes (the
// round-trip law of spec §8); fields that were never set are omitted.
func EmitFull(m *Message) []byte {
	var b strings.Builder

	if len(m.AudioCodecs) > 0 {
		writeLine(&b, FieldAudioCodecs, emitAudioCodecs(m.AudioCodecs))
	}
	if m.VideoFormats != nil {
		writeLine(&b, FieldVideoFormats, emitVideoFormats(m.VideoFormats))
	}
	if m.ContentProtection != nil {
		writeLine(&b, FieldContentProtection, emitContentProtection(m.ContentProtection))
	}
	if m.DisplayEDID != nil {
		writeLine(&b, FieldDisplayEDID, emitDisplayEDID(m.DisplayEDID))
	}
	if m.CoupledSink != nil {
		writeLine(&b, FieldCoupledSink, emitCoupledSink(m.CoupledSink))
	}
	if m.TriggerMethod != nil {
		writeLine(&b, FieldTriggerMethod, string(*m.TriggerMethod))
	}
	if m.PresentationURL != nil {
		writeLine(&b, FieldPresentationURL, emitPresentationURL(m.PresentationURL))
	}
	if m.ClientRTPPorts != nil {
		writeLine(&b, FieldClientRTPPorts, emitClientRTPPorts(m.ClientRTPPorts))
	}
	if m.Route != nil {
		writeLine(&b, FieldRoute, *m.Route)
	}
	if m.I2C != nil {
		writeLine(&b, FieldI2C, hex(uint64(*m.I2C), 4))
	}
	if m.AVFormatChangeTiming != nil {
		writeLine(&b, FieldAVFormatChangeTiming,
			hex(m.AVFormatChangeTiming.PTS, 10)+" "+hex(m.AVFormatChangeTiming.DTS, 10))
	}
	if m.PreferredDisplayMode != nil {
		writeLine(&b, FieldPreferredDisplayMode, hex(uint64(*m.PreferredDisplayMode), 8))
	}
	if m.StandbyResumeCapability != nil {
		v := "0"
		if *m.StandbyResumeCapability {
			v = "1"
		}
		writeLine(&b, FieldStandbyResumeCapability, v)
	}
	if m.Standby {
		b.WriteString(string(FieldStandby))
		b.WriteString("\r\n")
	}
	if m.ConnectorType != nil {
		writeLine(&b, FieldConnectorType, hex(uint64(*m.ConnectorType), 2))
	}
	if m.IDRRequest {
		b.WriteString(string(FieldIDRRequest))
		b.WriteString("\r\n")
	}
	if m.UIBCCapability != nil {
		writeLine(&b, FieldUIBCCapability, *m.UIBCCapability)
	}
	if m.ThreeDFormats != nil {
		writeLine(&b, Field3DFormats, *m.ThreeDFormats)
	}

	return []byte(b.String())
}

func writeLine(b *strings.Builder, key FieldKey, value string) {
	b.WriteString(string(key))
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

func emitAudioCodecs(codecs []AudioCodec) string {
	parts := make([]string, len(codecs))
	for i, c := range codecs {
		parts[i] = string(c.Format) + " " + hex(uint64(c.Modes), 8) + " " + hex(uint64(c.Latency), 2)
	}
	return strings.Join(parts, ", ")
}

func emitVideoFormats(vf *VideoFormats) string {
	native := (uint64(vf.NativeIndex) << 3) | uint64(vf.NativeFamily&0x07)

	maxH := "none"
	if vf.MaxHRes != nil {
		maxH = hex(uint64(*vf.MaxHRes), 4)
	}
	maxV := "none"
	if vf.MaxVRes != nil {
		maxV = hex(uint64(*vf.MaxVRes), 4)
	}

	return strings.Join([]string{
		hex(native, 2),
		hex(uint64(vf.PreferredDisplayMode), 2),
		hex(uint64(vf.Profile), 2),
		hex(uint64(vf.Level), 2),
		hex(uint64(vf.CEAResolutions), 8),
		hex(uint64(vf.VESAResolutions), 8),
		hex(uint64(vf.HandheldResolutions), 8),
		hex(uint64(vf.Latency), 2),
		hex(uint64(vf.MinSliceSize), 4),
		hex(uint64(vf.SliceEncParams), 4),
		hex(uint64(vf.FrameRateCtrl), 2),
		maxH,
		maxV,
	}, " ")
}

func emitContentProtection(cp *ContentProtection) string {
	if cp.HDCPVersion == HDCPNone {
		return "none"
	}
	ver := "HDCP2.0"
	if cp.HDCPVersion == HDCP21 {
		ver = "HDCP2.1"
	}
	return ver + " port=" + strconv.Itoa(int(cp.TCPPort))
}

func emitDisplayEDID(e *DisplayEDID) string {
	if !e.Supported {
		return "none"
	}
	return hex(uint64(e.BlockCount), 4) + " " + encodeHexPayload(e.Payload)
}

func emitCoupledSink(cs *CoupledSink) string {
	if cs.Address == "" {
		return "none"
	}
	return hex(uint64(cs.Status), 2) + " " + cs.Address
}

func emitPresentationURL(p *PresentationURL) string {
	u0, u1 := p.URL0, p.URL1
	if u0 == "" {
		u0 = "none"
	}
	if u1 == "" {
		u1 = "none"
	}
	return u0 + " " + u1
}

func emitClientRTPPorts(p *ClientRTPPorts) string {
	return p.Profile + " " + strconv.Itoa(p.Port0) + " " + strconv.Itoa(p.Port1) + " " + p.Mode
}
