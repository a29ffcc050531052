// Package rtpmp2t payloads MPEG-TS packets into RTP packets per RFC2250,
// payload type 33 - the wire format a WFD sink expects to receive the
// muxed audio/video stream in.
//
// A single Payloader instance is shared across a hot-swap: its sequence
// counter is never reset mid-session, so a sink sees an unbroken sequence
// number run across a source substitution (spec §4.5).
package rtpmp2t

import (
	"crypto/rand"
	"fmt"

	"github.com/pion/rtp"
)

// MPEGTSPacketSize is the fixed size of one MPEG-TS packet.
const MPEGTSPacketSize = 188

// SyncByte is the fixed first byte of every MPEG-TS packet.
const SyncByte = 0x47

const (
	rtpVersion            = 2
	defaultPayloadMaxSize = 1316 // (7 x 188)
	payloadType           = 33
)

func ptrOf[T any](v T) *T {
	return &v
}

func randUint32() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// Payloader turns MPEG-TS packets into RTP/MP2T packets, keeping the
// sequence counter and SSRC stable across calls so a caller can hand it
// packets from any number of successive media sources.
type Payloader struct {
	// SSRC of packets (optional). Defaults to a random value.
	SSRC *uint32

	// InitialSequenceNumber of packets (optional). Defaults to a random
	// value.
	InitialSequenceNumber *uint16

	// PayloadMaxSize is the maximum size of a packet payload, a multiple
	// of MPEGTSPacketSize. Defaults to 1316.
	PayloadMaxSize int

	sequenceNumber uint16
	bytesSent      uint64
	packetsSent    uint64
}

// Init initializes the payloader, filling in any unset fields.
func (p *Payloader) Init() error {
	if p.SSRC == nil {
		v, err := randUint32()
		if err != nil {
			return err
		}
		p.SSRC = &v
	}
	if p.InitialSequenceNumber == nil {
		v, err := randUint32()
		if err != nil {
			return err
		}
		p.InitialSequenceNumber = ptrOf(uint16(v))
	}
	if p.PayloadMaxSize == 0 {
		p.PayloadMaxSize = defaultPayloadMaxSize
	}

	p.sequenceNumber = *p.InitialSequenceNumber
	return nil
}

// Payload packages a run of MPEG-TS packets into one or more RTP packets.
func (p *Payloader) Payload(tsPackets [][]byte) ([]*rtp.Packet, error) {
	for _, pkt := range tsPackets {
		if len(pkt) != MPEGTSPacketSize {
			return nil, fmt.Errorf("invalid MPEG-TS packet size: %d", len(pkt))
		}
	}

	tsPacketCount := len(tsPackets)
	maxTSPacketsPerRTPPacket := p.PayloadMaxSize / MPEGTSPacketSize
	rtpPacketCount := tsPacketCount / maxTSPacketsPerRTPPacket
	if tsPacketCount%maxTSPacketsPerRTPPacket != 0 {
		rtpPacketCount++
	}

	rets := make([]*rtp.Packet, rtpPacketCount)

	for i := 0; i < rtpPacketCount; i++ {
		count := maxTSPacketsPerRTPPacket
		if i == rtpPacketCount-1 {
			count = len(tsPackets)
		}

		payload := make([]byte, count*MPEGTSPacketSize)
		n := 0
		for j := 0; j < count; j++ {
			n += copy(payload[n:], tsPackets[0])
			tsPackets = tsPackets[1:]
		}

		rets[i] = &rtp.Packet{
			Header: rtp.Header{
				Version:        rtpVersion,
				PayloadType:    payloadType,
				SequenceNumber: p.sequenceNumber,
				SSRC:           *p.SSRC,
			},
			Payload: payload,
		}
		p.sequenceNumber++
		p.bytesSent += uint64(len(payload))
		p.packetsSent++
	}

	return rets, nil
}

// SequenceNumber returns the sequence number the next emitted packet will
// carry - what the RTP statistics aggregator (C6) samples to report
// continuity across a hot-swap.
func (p *Payloader) SequenceNumber() uint16 {
	return p.sequenceNumber
}

// BytesSent returns the cumulative payload byte count emitted so far.
func (p *Payloader) BytesSent() uint64 {
	return p.bytesSent
}

// PacketsSent returns the cumulative packet count emitted so far.
func (p *Payloader) PacketsSent() uint64 {
	return p.packetsSent
}
