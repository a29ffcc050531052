package wfdsource

import (
	"strconv"
	"time"

	"github.com/go-wfd/wfdsource/pkg/liberrors"
	"github.com/go-wfd/wfdsource/pkg/rtsp"
)

// startKeepalive arms the session's M16 send timer. Called once on the
// sink's first PLAY, alongside the pipeline/stats timers (spec §4.3), and
// again by onKeepaliveReply to reschedule the next send.
func (s *Session) startKeepalive() {
	s.keepaliveLock.Lock()
	defer s.keepaliveLock.Unlock()
	s.keepaliveSendTimer = time.AfterFunc(KeepaliveInterval, s.sendKeepalive)
}

// sendKeepalive issues the M16 GET_PARAMETER and arms the fail timer.
// If the write itself fails, the session is torn down immediately as a
// transport failure rather than waiting out the fail timer.
func (s *Session) sendKeepalive() {
	cseq := s.nextCSeq()

	s.lock.Lock()
	s.pending[cseq] = pendingRequest{messageID: "M16"}
	s.lock.Unlock()

	// Armed before the write, so a reply that arrives before WriteRequest
	// returns still finds the CSeq and the timer to cancel.
	s.keepaliveLock.Lock()
	s.keepaliveCSeq = cseq
	s.keepaliveFailTimer = time.AfterFunc(KeepaliveTimeout, s.onKeepaliveTimeout)
	s.keepaliveLock.Unlock()

	req := &rtsp.Request{
		Method: rtsp.GetParameter,
		URL:    KeepaliveURI,
		Header: rtsp.Header{
			"CSeq": rtsp.HeaderValue{strconv.Itoa(cseq)},
		},
	}

	if err := s.conn.WriteRequest(req); err != nil {
		s.keepaliveLock.Lock()
		s.keepaliveFailTimer.Stop()
		s.keepaliveLock.Unlock()
		s.emitKeepaliveFail(liberrors.ErrTransportFailure{Err: err})
		return
	}
}

// onKeepaliveTimeout fires KeepaliveTimeout after an M16 send with no
// reply observed; it is canceled by onKeepaliveReply if the reply arrives
// in time.
func (s *Session) onKeepaliveTimeout() {
	s.emitKeepaliveFail(liberrors.ErrKeepaliveTimeout{SessionID: s.ID})
}

func (s *Session) emitKeepaliveFail(err error) {
	if h, ok := s.server.handler.(HandlerOnKeepaliveFail); ok {
		h.OnKeepaliveFail(&OnKeepaliveFailCtx{Session: s, Error: err})
	}
	s.Close()
}

// onKeepaliveReply is called from the session's read loop when a
// response matching the pending M16 CSeq arrives. It cancels the fail
// timer and reschedules the next send.
func (s *Session) onKeepaliveReply(cseq int) {
	s.keepaliveLock.Lock()
	if cseq != s.keepaliveCSeq {
		s.keepaliveLock.Unlock()
		return
	}
	if s.keepaliveFailTimer != nil {
		s.keepaliveFailTimer.Stop()
	}
	s.keepaliveLock.Unlock()

	s.startKeepalive()
}
