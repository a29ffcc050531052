package wfdsource

import "time"

// Keepalive timing, spec §4.6: the source sends a GET_PARAMETER keepalive
// every KeepaliveInterval and tears the session down if no reply arrives
// within KeepaliveTimeout.
const (
	KeepaliveInterval = 55 * time.Second
	KeepaliveTimeout  = 5 * time.Second
)

// SessionIdleTimeout is the default window a session has to complete the
// M1-M4 handshake before the server reaps it - the supplemented
// idle-timeout feature (SPEC_FULL §7).
const SessionIdleTimeout = 60 * time.Second

// DefaultReadBufferSize is the default session buffer size. Nothing in
// this module reads it; pkg/rtsp.Conn uses its own 4096-byte read buffer.
const DefaultReadBufferSize = 0x80000

// KeepaliveURI is the literal request target the source uses for its
// M16 keepalive GET_PARAMETER.
const KeepaliveURI = "rtsp://localhost/wfd1.0"

// WFDRequireToken is the Require header value identifying WFD source
// sessions during the M1/M2 OPTIONS exchange.
const WFDRequireToken = "org.wfa.wfd1.0"

// StatsSampleInterval is how often the RTP statistics aggregator (C6)
// samples the outgoing stream.
const StatsSampleInterval = 2 * time.Second

// DefaultRTPPortLow/High bound the address pool's default UDP range.
const (
	DefaultRTPPortLow  = 19000
	DefaultRTPPortHigh = 19999
)
