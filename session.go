package wfdsource

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/go-wfd/wfdsource/pkg/capability"
	"github.com/go-wfd/wfdsource/pkg/hotswap"
	"github.com/go-wfd/wfdsource/pkg/mpegts"
	"github.com/go-wfd/wfdsource/pkg/pipeline"
	"github.com/go-wfd/wfdsource/pkg/rtpmp2t"
	"github.com/go-wfd/wfdsource/pkg/rtpstats"
	"github.com/go-wfd/wfdsource/pkg/rtsp"
	"github.com/go-wfd/wfdsource/pkg/wfdparam"
)

// pendingRequest records an outstanding source-initiated RTSP request
// this session is waiting on a reply for, keyed by CSeq.
type pendingRequest struct {
	messageID string // "M1", "M3", "M4" or "M16"
}

// Session is one sink connection's full handshake and streaming state.
// Every field guarded by a mutex is commented with which one.
type Session struct {
	ID string

	server     *Server
	conn       *rtsp.Conn
	remoteAddr net.Addr

	ctx       context.Context
	ctxCancel context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	// lock guards the fields below up to rtpConn, including cseq and
	// pending.
	lock    sync.Mutex
	state   State
	cseq    int
	pending map[int]pendingRequest

	doneM1 bool
	doneM3 bool
	doneM4 bool

	sourceCapability capability.Capability
	sinkCapability   capability.Capability
	negotiated       capability.NegotiatedConfig
	sinkRTPPorts     *wfdparam.ClientRTPPorts

	rtpPort  int
	rtcpPort int

	graph      *pipeline.Graph
	swapHandle *hotswap.Coordinator
	payloader  *rtpmp2t.Payloader
	muxer      *mpegts.Muxer
	rtpConn    *net.UDPConn

	// keepaliveLock guards the keepalive timer pair below.
	keepaliveLock      sync.Mutex
	keepaliveSendTimer *time.Timer
	keepaliveFailTimer *time.Timer
	keepaliveCSeq      int

	// statsLock guards stats.
	statsLock sync.Mutex
	stats     *rtpstats.Aggregator
}

// newSession allocates a Session bound to conn, owned by server.
// remoteAddr is the sink's transport address, used to direct outgoing RTP.
func newSession(server *Server, conn *rtsp.Conn, remoteAddr net.Addr) *Session {
	ctx, cancel := context.WithCancel(server.ctx)

	s := &Session{
		ID:         uuid.NewString(),
		server:     server,
		conn:       conn,
		remoteAddr: remoteAddr,
		ctx:        ctx,
		ctxCancel:  cancel,
		done:       make(chan struct{}),
		state:      StateInit,
		pending:    make(map[int]pendingRequest),
	}

	return s
}

// remoteIP returns the sink's IP address, or nil if remoteAddr carries
// none (e.g. in tests that don't dial a real socket).
func (s *Session) remoteIP() net.IP {
	switch addr := s.remoteAddr.(type) {
	case *net.TCPAddr:
		return addr.IP
	case *net.UDPAddr:
		return addr.IP
	default:
		return nil
	}
}

// nextCSeq allocates the next outgoing CSeq value, under lock.
func (s *Session) nextCSeq() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.cseq++
	return s.cseq
}

// setState advances the session's state, returning an error if the
// transition is illegal.
func (s *Session) setState(next State) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	cur, err := advance(s.state, next)
	if err != nil {
		return err
	}
	s.state = cur
	return nil
}

// State returns the session's current state.
func (s *Session) State() State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

// Negotiated returns the session's negotiated configuration. Only valid
// once the session has reached StateReady or later.
func (s *Session) Negotiated() capability.NegotiatedConfig {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.negotiated
}

// Close tears the session down: cancels its context (for a session
// accepted by Server, that closes the transport), stops its timers and
// statistics aggregator, closes its RTP socket and releases its port pair.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.ctxCancel()

		s.keepaliveLock.Lock()
		if s.keepaliveSendTimer != nil {
			s.keepaliveSendTimer.Stop()
		}
		if s.keepaliveFailTimer != nil {
			s.keepaliveFailTimer.Stop()
		}
		s.keepaliveLock.Unlock()

		s.statsLock.Lock()
		if s.stats != nil {
			s.stats.Close()
		}
		s.statsLock.Unlock()

		s.lock.Lock()
		rtpConn := s.rtpConn
		rtpPort := s.rtpPort
		s.lock.Unlock()

		if rtpConn != nil {
			rtpConn.Close()
		}
		if rtpPort != 0 {
			s.server.pool.Release(rtpPort)
		}

		close(s.done)
	})
}
